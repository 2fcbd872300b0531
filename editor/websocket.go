package editor

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is the transport a client talks through.
type Connection interface {
	Close(code string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

const (
	pongWait   = time.Minute
	writeWait  = 10 * time.Second
	closeGrace = 5 * time.Second
)

type websocketConnection struct {
	socket *websocket.Conn
}

func (wc *websocketConnection) Write(data []byte) error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Close(code string) {
	wc.socket.SetWriteDeadline(time.Now().Add(closeGrace))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, code))
	wc.socket.Close()
}

func NewWebsocketConnection(conn *websocket.Conn, maxMessageBytes int64) *websocketConnection {
	conn.SetReadLimit(maxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return &websocketConnection{conn}
}
