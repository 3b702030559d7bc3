package irc

import (
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	irclib "gopkg.in/irc.v4"
)

// lineConn carries IRC messages over some byte stream.
type lineConn interface {
	ReadMessage() (*irclib.Message, error)
	WriteMessage(m *irclib.Message) error
	SetDeadline(t time.Time) error
	Close() error
}

// tcpConn speaks CRLF framed IRC over a plain or TLS socket.
type tcpConn struct {
	raw  net.Conn
	conn *irclib.Conn
}

func newTCPConn(raw net.Conn) *tcpConn {
	return &tcpConn{raw: raw, conn: irclib.NewConn(raw)}
}

func (c *tcpConn) ReadMessage() (*irclib.Message, error) {
	return c.conn.ReadMessage()
}

func (c *tcpConn) WriteMessage(m *irclib.Message) error {
	return c.conn.WriteMessage(m)
}

func (c *tcpConn) SetDeadline(t time.Time) error {
	return c.raw.SetDeadline(t)
}

func (c *tcpConn) Close() error {
	return c.raw.Close()
}

// wsConn speaks IRC over WebSocket: one message per text frame, no CRLF.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() (*irclib.Message, error) {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		line := strings.TrimRight(string(data), "\r\n")
		if line == "" {
			continue
		}
		return irclib.ParseMessage(line)
	}
}

func (c *wsConn) WriteMessage(m *irclib.Message) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(m.String()))
}

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.conn.SetReadDeadline(t); err != nil {
		return err
	}
	return c.conn.SetWriteDeadline(t)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
