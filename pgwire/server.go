package pgwire

import (
	"fmt"
	"io"
	"log"
	"net"

	"golang.org/x/net/context"

	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/session"
)

// Server accepts PostgreSQL wire-protocol connections against a shared
// catalog; every connection gets its own *session.Session.
type Server struct {
	cat *catalog.Catalog
}

func NewServer(cat *catalog.Catalog) *Server {
	return &Server{cat: cat}
}

// IsPQConnection peeks at rd's startup message to tell a Postgres wire
// client apart from some other kind of connection.
func IsPQConnection(rd io.Reader) bool {
	var buf readBuffer
	if _, err := buf.readUntypedMsg(rd); err != nil {
		return false
	}
	version, err := buf.getInt32()
	if err != nil {
		return false
	}
	return version == version30 || version == versionSSL
}

// Serve drives one accepted connection through the startup handshake
// and then the main protocol loop until the client disconnects.
func (s *Server) Serve(c net.Conn) error {
	var buf readBuffer
	if _, err := buf.readUntypedMsg(c); err != nil {
		return err
	}

	version, err := buf.getInt32()
	if err != nil {
		return err
	}

	if version != version30 {
		return fmt.Errorf("unsupported protocol version %d", version)
	}

	sessionArgs, argsErr := parseOptions(buf.msg)
	sess := session.NewSession(sessionArgs, s.cat)
	conn := newConn(c, sessionArgs, sess)
	defer conn.close()

	if argsErr != nil {
		return conn.sendError(CodeInternalError, argsErr.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return conn.serve(ctx)
}

// ListenAndServe binds addr and serves every accepted connection on
// its own goroutine until the listener is closed or an error occurs.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	log.Printf("isomorphicdb listening on %s", addr)

	for {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		go func(c net.Conn) {
			if err := s.Serve(c); err != nil && err != io.EOF {
				log.Printf("connection %s: %v", c.RemoteAddr(), err)
			}
		}(c)
	}
}
