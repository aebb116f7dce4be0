package pgwire

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func startupPacket(version int32) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, uint32(version))
	body = append(body, 0) // empty key/value list terminator

	pkt := make([]byte, 4)
	binary.BigEndian.PutUint32(pkt, uint32(4+len(body)))
	return append(pkt, body...)
}

func TestIsPQConnectionRecognizesStartupPacket(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go client.Write(startupPacket(version30))

	assert.True(t, IsPQConnection(server))
}

func TestIsPQConnectionRejectsGarbage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go client.Write([]byte("GET / HTTP/1.1\r\n\r\n"))

	assert.False(t, IsPQConnection(server))
}
