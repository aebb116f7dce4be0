package pgwire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"unsafe"

	"github.com/alex-dukhno/isomorphicdb/sql/parser"
)

const maxMessageSize = 1 << 24

// readBuffer holds one message body at a time: readUntypedMsg/
// readTypedMsg fill it from the wire, the getX methods consume it
// front-to-back.
type readBuffer struct {
	msg []byte
	tmp [4]byte
}

func (b *readBuffer) reset(size int) {
	if b.msg != nil {
		b.msg = b.msg[len(b.msg):]
	}

	if cap(b.msg) >= size {
		b.msg = b.msg[:size]
		return
	}

	allocSize := size
	if allocSize < 4096 {
		allocSize = 4096
	}
	b.msg = make([]byte, size, allocSize)
}

// readUntypedMsg reads a length-prefixed message body, used only during
// the startup handshake before any message type byte is sent.
func (b *readBuffer) readUntypedMsg(rd io.Reader) (int, error) {
	nread, err := io.ReadFull(rd, b.tmp[:])
	if err != nil {
		return nread, err
	}
	size := int(binary.BigEndian.Uint32(b.tmp[:]))
	size -= 4 // size includes itself.
	if size > maxMessageSize || size < 0 {
		return nread, fmt.Errorf("message size %d out of bounds (0..%d)", size, maxMessageSize)
	}

	b.reset(size)
	n, err := io.ReadFull(rd, b.msg)
	return nread + n, err
}

// readTypedMsg reads a message type byte followed by its length-prefixed
// body, the framing used for every message after startup.
func (b *readBuffer) readTypedMsg(rd *bufio.Reader) (ClientMessageType, int, error) {
	typ, err := rd.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	n, err := b.readUntypedMsg(rd)
	return ClientMessageType(typ), n, err
}

// getString reads a null-terminated string.
func (b *readBuffer) getString() (string, error) {
	pos := bytes.IndexByte(b.msg, 0)
	if pos == -1 {
		return "", fmt.Errorf("NUL terminator not found")
	}
	s := b.msg[:pos]
	b.msg = b.msg[pos+1:]
	return *((*string)(unsafe.Pointer(&s))), nil
}

func (b *readBuffer) getPrepareType() (PrepareType, error) {
	v, err := b.getBytes(1)
	if err != nil {
		return 0, err
	}
	return PrepareType(v[0]), nil
}

func (b *readBuffer) getBytes(n int) ([]byte, error) {
	if len(b.msg) < n {
		return nil, fmt.Errorf("insufficient data: %d", len(b.msg))
	}
	v := b.msg[:n]
	b.msg = b.msg[n:]
	return v, nil
}

func (b *readBuffer) getInt16() (int16, error) {
	if len(b.msg) < 2 {
		return 0, fmt.Errorf("insufficient data: %d", len(b.msg))
	}
	v := int16(binary.BigEndian.Uint16(b.msg[:2]))
	b.msg = b.msg[2:]
	return v, nil
}

func (b *readBuffer) getInt32() (int32, error) {
	if len(b.msg) < 4 {
		return 0, fmt.Errorf("insufficient data: %d", len(b.msg))
	}
	v := int32(binary.BigEndian.Uint32(b.msg[:4]))
	b.msg = b.msg[4:]
	return v, nil
}

type writeBuffer struct {
	bytes.Buffer
	putbuf [64]byte
}

// writeString writes a null-terminated string.
func (b *writeBuffer) writeString(s string) error {
	if _, err := b.WriteString(s); err != nil {
		return err
	}
	return b.WriteByte(0)
}

func (b *writeBuffer) putInt16(v int16) {
	binary.BigEndian.PutUint16(b.putbuf[:], uint16(v))
	b.Write(b.putbuf[:2])
}

func (b *writeBuffer) putInt32(v int32) {
	binary.BigEndian.PutUint32(b.putbuf[:], uint32(v))
	b.Write(b.putbuf[:4])
}

func (b *writeBuffer) putInt64(v int64) {
	binary.BigEndian.PutUint64(b.putbuf[:], uint64(v))
	b.Write(b.putbuf[:8])
}

func (b *writeBuffer) initMsg(typ ServerMessageType) {
	b.Reset()
	b.putbuf[0] = byte(typ)
	b.Write(b.putbuf[:5]) // message type + message length
}

func (b *writeBuffer) finishMsg(w io.Writer) error {
	bs := b.Bytes()
	binary.BigEndian.PutUint32(bs[1:5], uint32(b.Len()-1))
	_, err := w.Write(bs)
	b.Reset()
	return err
}

// writeTextDatum writes d in text format, the default wire
// representation for every format code a client doesn't override.
func (b *writeBuffer) writeTextDatum(d parser.Datum) error {
	if d == parser.DNull {
		b.putInt32(-1) // NULL is encoded as a -1 length, no bytes follow.
		return nil
	}

	switch v := d.(type) {
	case parser.DBool:
		b.putInt32(1)
		if v {
			return b.WriteByte('t')
		}
		return b.WriteByte('f')

	case parser.DInt:
		s := strconv.AppendInt(b.putbuf[4:4], int64(v), 10)
		b.putInt32(int32(len(s)))
		_, err := b.Write(s)
		return err

	case parser.DFloat:
		s := strconv.AppendFloat(b.putbuf[4:4], float64(v), 'f', -1, 64)
		b.putInt32(int32(len(s)))
		_, err := b.Write(s)
		return err

	case *parser.DDecimal:
		s := v.Dec.String()
		b.putInt32(int32(len(s)))
		_, err := b.WriteString(s)
		return err

	case parser.DString:
		b.putInt32(int32(len(v)))
		_, err := b.WriteString(string(v))
		return err

	default:
		return fmt.Errorf("unsupported type %T", d)
	}
}

func (b *writeBuffer) writeBinaryDatum(d parser.Datum) error {
	if d == parser.DNull {
		b.putInt32(-1)
		return nil
	}

	switch v := d.(type) {
	case parser.DBool:
		b.putInt32(1)
		if v {
			return b.WriteByte(1)
		}
		return b.WriteByte(0)

	case parser.DInt:
		b.putInt32(8)
		b.putInt64(int64(v))
		return nil

	case parser.DFloat:
		b.putInt32(8)
		binary.BigEndian.PutUint64(b.putbuf[:8], math.Float64bits(float64(v)))
		b.Write(b.putbuf[:8])
		return nil

	case *parser.DDecimal:
		s := v.Dec.String()
		b.putInt32(int32(len(s)))
		_, err := b.WriteString(s)
		return err

	case parser.DString:
		b.putInt32(int32(len(v)))
		_, err := b.WriteString(string(v))
		return err

	default:
		return fmt.Errorf("unsupported binary-format type %T", d)
	}
}
