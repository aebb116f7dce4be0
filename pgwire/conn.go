package pgwire

import (
	"bufio"
	"fmt"
	"log"
	"net"

	"github.com/lib/pq/oid"
	"golang.org/x/net/context"

	"github.com/alex-dukhno/isomorphicdb/session"
	"github.com/alex-dukhno/isomorphicdb/sql/exec"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

const (
	CodeInternalError = "XX000"
)

// sqlStater is implemented by every SQLSTATE-carrying error type across
// catalog, analyzer, types, exec and session.
type sqlStater interface {
	SQLState() string
}

func sqlState(err error) string {
	if s, ok := err.(sqlStater); ok {
		return s.SQLState()
	}
	return CodeInternalError
}

// conn is one client connection: it owns the wire buffers and a
// *session.Session, and translates between wire messages and Session
// calls.
type conn struct {
	c net.Conn

	r        *bufio.Reader
	w        *bufio.Writer
	readBuf  readBuffer
	writeBuf writeBuffer
	tagBuf   [64]byte

	sess *session.Session

	// formatCodes tracks the result-column format codes bound to a
	// portal; the Session itself has no notion of wire format.
	formatCodes map[string][]formatCode

	extendedQuery, ignoreTillSync bool
}

func newConn(c net.Conn, sessionArgs session.ConnectionArgs, sess *session.Session) *conn {
	return &conn{
		c:           c,
		r:           bufio.NewReader(c),
		w:           bufio.NewWriter(c),
		sess:        sess,
		formatCodes: make(map[string][]formatCode),
	}
}

func (c *conn) close() {
	if err := c.w.Flush(); err != nil {
		log.Println(err.Error())
	}
	_ = c.c.Close()
}

// parseOptions reads the key/value pairs the startup message carries.
func parseOptions(data []byte) (session.ConnectionArgs, error) {
	args := session.ConnectionArgs{}
	buf := readBuffer{msg: data}

	for {
		key, err := buf.getString()
		if err != nil {
			return args, fmt.Errorf("error reading option key: %s", err)
		}
		if len(key) == 0 {
			break
		}
		value, err := buf.getString()
		if err != nil {
			return args, fmt.Errorf("error reading option value: %s", err)
		}

		switch key {
		case "database":
			args.Database = value
		case "user":
			args.User = value
		default:
			log.Printf("unrecognized connection parameter %q", key)
		}
	}

	return args, nil
}

// serve drives the connection's main loop: ReadyForQuery, then one
// message at a time, until Terminate or an I/O error.
func (c *conn) serve(ctx context.Context) error {
	c.writeBuf.initMsg(ServerMsgAuth)
	c.writeBuf.putInt32(AuthOK)
	if err := c.writeBuf.finishMsg(c.w); err != nil {
		return err
	}

	for key, value := range map[string]string{
		"client_encoding": "UTF8",
		"server_version":  "0.0.0",
	} {
		c.writeBuf.initMsg(ServerMsgParameterStatus)
		for _, s := range [...]string{key, value} {
			if err := c.writeBuf.writeString(s); err != nil {
				return err
			}
		}
		if err := c.writeBuf.finishMsg(c.w); err != nil {
			return err
		}
	}
	if err := c.w.Flush(); err != nil {
		return err
	}

	for {
		if !c.extendedQuery {
			c.writeBuf.initMsg(ServerMsgReady)
			c.writeBuf.WriteByte(byte(c.sess.Status()))
			if err := c.writeBuf.finishMsg(c.w); err != nil {
				return err
			}
			if err := c.w.Flush(); err != nil {
				return err
			}
		}

		typ, _, err := c.readBuf.readTypedMsg(c.r)
		if err != nil {
			return err
		}

		if c.ignoreTillSync && typ != ClientMsgSync {
			continue
		}

		switch typ {
		case ClientMsgSync:
			c.extendedQuery = false
			c.ignoreTillSync = false

		case ClientMsgSimpleQuery:
			c.extendedQuery = false
			err = c.handleSimpleQuery(ctx, &c.readBuf)

		case ClientMsgTerminate:
			return nil

		case ClientMsgParse:
			c.extendedQuery = true
			err = c.handleParse(&c.readBuf)

		case ClientMsgDescribe:
			c.extendedQuery = true
			err = c.handleDescribe(&c.readBuf)

		case ClientMsgClose:
			c.extendedQuery = true
			err = c.handleClose(&c.readBuf)

		case ClientMsgBind:
			c.extendedQuery = true
			err = c.handleBind(&c.readBuf)

		case ClientMsgExecute:
			c.extendedQuery = true
			err = c.handleExecute(ctx, &c.readBuf)

		case ClientMsgFlush:
			c.extendedQuery = true
			err = c.w.Flush()

		default:
			err = c.sendError(CodeInternalError, fmt.Sprintf("unknown client message type: %c", typ))
		}

		if err != nil {
			return err
		}
	}
}

func (c *conn) handleSimpleQuery(ctx context.Context, buf *readBuffer) error {
	query, err := buf.getString()
	if err != nil {
		return err
	}

	results, runErr := c.sess.SimpleQuery(query)
	if len(results) == 0 && runErr == nil {
		c.writeBuf.initMsg(ServerMsgEmptyQuery)
		return c.writeBuf.finishMsg(c.w)
	}
	if err := c.sendResults(results, nil, true, 0); err != nil {
		return err
	}
	if runErr != nil {
		return c.sendError(sqlState(runErr), runErr.Error())
	}
	return nil
}

func (c *conn) handleParse(buf *readBuffer) error {
	name, err := buf.getString()
	if err != nil {
		return err
	}

	query, err := buf.getString()
	if err != nil {
		return err
	}

	numParamTypes, err := buf.getInt16()
	if err != nil {
		return err
	}

	declared := make(map[int]types.Type)
	for i := 0; i < int(numParamTypes); i++ {
		t, err := buf.getInt32()
		if err != nil {
			return err
		}
		if t == 0 {
			continue
		}
		if typ, ok := types.FromOID(oid.Oid(t)); ok {
			declared[i+1] = typ
		}
	}

	if _, err := c.sess.Parse(name, query, declared); err != nil {
		return c.sendError(sqlState(err), err.Error())
	}

	c.writeBuf.initMsg(ServerMsgParseComplete)
	return c.writeBuf.finishMsg(c.w)
}

func (c *conn) handleDescribe(buf *readBuffer) error {
	typ, err := buf.getPrepareType()
	if err != nil {
		return c.sendError(CodeInternalError, err.Error())
	}

	name, err := buf.getString()
	if err != nil {
		return err
	}

	switch typ {
	case PrepareStatement:
		ps, err := c.sess.Statement(name)
		if err != nil {
			return c.sendError(sqlState(err), err.Error())
		}

		c.writeBuf.initMsg(ServerMsgParameterDescription)
		c.writeBuf.putInt16(int16(len(ps.ParamTypes)))
		for _, t := range ps.ParamTypes {
			c.writeBuf.putInt32(int32(t.OID()))
		}
		if err := c.writeBuf.finishMsg(c.w); err != nil {
			return err
		}
		return c.sendRowDescription(ps.Columns, nil)

	case PreparePortal:
		portal, err := c.sess.PortalByName(name)
		if err != nil {
			return c.sendError(sqlState(err), err.Error())
		}
		return c.sendRowDescription(portal.Statement.Columns, c.formatCodes[name])

	default:
		return fmt.Errorf("unknown describe type: %c", typ)
	}
}

func (c *conn) handleClose(buf *readBuffer) error {
	typ, err := buf.getPrepareType()
	if err != nil {
		return c.sendError(CodeInternalError, err.Error())
	}

	name, err := buf.getString()
	if err != nil {
		return err
	}

	switch typ {
	case PrepareStatement:
		c.sess.CloseStatement(name)
	case PreparePortal:
		c.sess.ClosePortal(name)
		delete(c.formatCodes, name)
	default:
		return fmt.Errorf("unknown close type: %c", typ)
	}

	c.writeBuf.initMsg(ServerMsgCloseComplete)
	return c.writeBuf.finishMsg(c.w)
}

func (c *conn) handleBind(buf *readBuffer) error {
	portalName, err := buf.getString()
	if err != nil {
		return err
	}

	stmtName, err := buf.getString()
	if err != nil {
		return err
	}

	ps, err := c.sess.Statement(stmtName)
	if err != nil {
		return c.sendError(sqlState(err), err.Error())
	}

	numParams := int16(len(ps.ParamTypes))
	paramFormatCodes := make([]formatCode, numParams)

	numParamFormatCodes, err := buf.getInt16()
	if err != nil {
		return err
	}
	switch numParamFormatCodes {
	case 0:
	case 1:
		fc, err := buf.getInt16()
		if err != nil {
			return err
		}
		for i := range paramFormatCodes {
			paramFormatCodes[i] = formatCode(fc)
		}
	case numParams:
		for i := range paramFormatCodes {
			fc, err := buf.getInt16()
			if err != nil {
				return err
			}
			paramFormatCodes[i] = formatCode(fc)
		}
	default:
		return c.sendError(CodeInternalError, fmt.Sprintf("wrong number of format codes: %d for %d parameters", numParamFormatCodes, numParams))
	}

	numValues, err := buf.getInt16()
	if err != nil {
		return err
	}
	if numValues != numParams {
		return c.sendError(CodeInternalError, fmt.Sprintf("expected %d parameters, got %d", numParams, numValues))
	}

	params := make([]parser.Datum, numParams)
	for i, t := range ps.ParamTypes {
		plen, err := buf.getInt32()
		if err != nil {
			return err
		}
		if plen == -1 {
			params[i] = parser.DNull
			continue
		}
		b, err := buf.getBytes(int(plen))
		if err != nil {
			return err
		}
		d, err := decodeOidDatum(t.OID(), paramFormatCodes[i], b)
		if err != nil {
			return c.sendError(CodeInternalError, fmt.Sprintf("param $%d: %s", i+1, err))
		}
		params[i] = d
	}

	numColumns := int16(len(ps.Columns))
	columnFormatCodes := make([]formatCode, numColumns)

	numColumnFormatCodes, err := buf.getInt16()
	if err != nil {
		return err
	}
	switch numColumnFormatCodes {
	case 0:
	case 1:
		fc, err := buf.getInt16()
		if err != nil {
			return err
		}
		for i := range columnFormatCodes {
			columnFormatCodes[i] = formatCode(fc)
		}
	case numColumns:
		for i := range columnFormatCodes {
			fc, err := buf.getInt16()
			if err != nil {
				return err
			}
			columnFormatCodes[i] = formatCode(fc)
		}
	default:
		return c.sendError(CodeInternalError, fmt.Sprintf("expected 0, 1, or %d format codes, got %d", numColumns, numColumnFormatCodes))
	}

	if _, err := c.sess.Bind(portalName, stmtName, params); err != nil {
		return c.sendError(sqlState(err), err.Error())
	}
	c.formatCodes[portalName] = columnFormatCodes

	c.writeBuf.initMsg(ServerMsgBindComplete)
	return c.writeBuf.finishMsg(c.w)
}

func (c *conn) handleExecute(ctx context.Context, buf *readBuffer) error {
	portalName, err := buf.getString()
	if err != nil {
		return err
	}
	maxRows, err := buf.getInt32()
	if err != nil {
		return err
	}

	result, suspended, err := c.sess.Execute(portalName, int(maxRows))
	if err != nil {
		return c.sendError(sqlState(err), err.Error())
	}

	if result.Type == exec.Rows {
		if err := c.sendDataRows(result.Rows, c.formatCodes[portalName]); err != nil {
			return err
		}
		if suspended {
			c.writeBuf.initMsg(ServerMsgPortalSuspended)
			return c.writeBuf.finishMsg(c.w)
		}
		return c.sendCommandComplete(append(c.tagBuf[:0], result.PGTag...))
	}

	return c.sendResults([]*exec.Result{result}, c.formatCodes[portalName], false, 0)
}

func (c *conn) sendDataRows(rows []exec.ResultRow, formatCodes []formatCode) error {
	for _, row := range rows {
		c.writeBuf.initMsg(ServerMsgDataRow)
		c.writeBuf.putInt16(int16(len(row.Values)))
		for i, v := range row.Values {
			fc := formatText
			if formatCodes != nil {
				fc = formatCodes[i]
			}
			var err error
			switch fc {
			case formatText:
				err = c.writeBuf.writeTextDatum(v)
			case formatBinary:
				err = c.writeBuf.writeBinaryDatum(v)
			default:
				err = fmt.Errorf("unsupported format code %d", fc)
			}
			if err != nil {
				return err
			}
		}
		if err := c.writeBuf.finishMsg(c.w); err != nil {
			return err
		}
	}
	return nil
}

func (c *conn) sendCommandComplete(tag []byte) error {
	c.writeBuf.initMsg(ServerMsgCommandComplete)
	c.writeBuf.Write(tag)
	c.writeBuf.WriteByte(0)
	return c.writeBuf.finishMsg(c.w)
}

func (c *conn) sendResults(results []*exec.Result, formatCodes []formatCode, sendDescription bool, limit int32) error {
	if len(results) == 0 {
		return c.sendCommandComplete(nil)
	}

	for _, result := range results {
		tag := append(c.tagBuf[:0], result.PGTag...)

		switch result.Type {
		case exec.RowsAffected:
			if err := c.sendCommandComplete(tag); err != nil {
				return err
			}

		case exec.Rows:
			if sendDescription {
				if err := c.sendRowDescriptionFromResult(result.Columns, formatCodes); err != nil {
					return err
				}
			}
			if err := c.sendDataRows(result.Rows, formatCodes); err != nil {
				return err
			}
			if err := c.sendCommandComplete(tag); err != nil {
				return err
			}

		default: // Ack: BEGIN/COMMIT/ROLLBACK/DDL
			if err := c.sendCommandComplete(tag); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *conn) sendRowDescriptionFromResult(columns []exec.ResultColumn, formatCodes []formatCode) error {
	if len(columns) == 0 {
		c.writeBuf.initMsg(ServerMsgNoData)
		return c.writeBuf.finishMsg(c.w)
	}

	c.writeBuf.initMsg(ServerMsgRowDescription)
	c.writeBuf.putInt16(int16(len(columns)))

	for i, col := range columns {
		if err := c.writeBuf.writeString(col.Name); err != nil {
			return err
		}
		c.writeBuf.putInt32(0)
		c.writeBuf.putInt16(0)
		c.writeBuf.putInt32(int32(col.Typ.OID()))
		c.writeBuf.putInt16(-1)
		c.writeBuf.putInt32(0)
		if formatCodes == nil {
			c.writeBuf.putInt16(int16(formatText))
		} else {
			c.writeBuf.putInt16(int16(formatCodes[i]))
		}
	}

	return c.writeBuf.finishMsg(c.w)
}

// sendRowDescription is Describe's variant, reporting declared column
// types from session.ResultColumn before the statement has run, the
// same way sendRowDescriptionFromResult reports them afterward.
func (c *conn) sendRowDescription(columns []session.ResultColumn, formatCodes []formatCode) error {
	if len(columns) == 0 {
		c.writeBuf.initMsg(ServerMsgNoData)
		return c.writeBuf.finishMsg(c.w)
	}

	c.writeBuf.initMsg(ServerMsgRowDescription)
	c.writeBuf.putInt16(int16(len(columns)))

	for i, col := range columns {
		if err := c.writeBuf.writeString(col.Name); err != nil {
			return err
		}
		c.writeBuf.putInt32(0)
		c.writeBuf.putInt16(0)
		c.writeBuf.putInt32(int32(col.Typ.OID()))
		c.writeBuf.putInt16(-1)
		c.writeBuf.putInt32(0)
		if formatCodes == nil {
			c.writeBuf.putInt16(int16(formatText))
		} else {
			c.writeBuf.putInt16(int16(formatCodes[i]))
		}
	}

	return c.writeBuf.finishMsg(c.w)
}

func (c *conn) sendError(errCode, errToSend string) error {
	if c.extendedQuery {
		c.ignoreTillSync = true
	}

	c.writeBuf.initMsg(ServerMsgErrorResponse)
	if err := c.writeBuf.WriteByte('S'); err != nil {
		return err
	}
	if err := c.writeBuf.writeString("ERROR"); err != nil {
		return err
	}
	if err := c.writeBuf.WriteByte('C'); err != nil {
		return err
	}
	if err := c.writeBuf.writeString(errCode); err != nil {
		return err
	}
	if err := c.writeBuf.WriteByte('M'); err != nil {
		return err
	}
	if err := c.writeBuf.writeString(errToSend); err != nil {
		return err
	}
	if err := c.writeBuf.WriteByte(0); err != nil {
		return err
	}
	if err := c.writeBuf.finishMsg(c.w); err != nil {
		return err
	}
	return c.w.Flush()
}
