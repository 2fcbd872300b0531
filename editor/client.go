package editor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Close codes sent when the server ends a session.
const (
	CloseShutdown = "server-shutdown"
	ClosePingLost = "ping-failed"
)

// Client pumps frames between a connection and the session it drives. The
// session is only touched from Run.
type Client struct {
	session   *Session
	userId    string
	conn      Connection
	limiter   *rate.Limiter
	inbox     chan []byte
	done      chan struct{}
	pingEvery time.Duration
}

func NewClient(session *Session, conn Connection, limiter *rate.Limiter, pingEvery time.Duration) *Client {
	return &Client{
		session:   session,
		userId:    session.userId,
		conn:      conn,
		limiter:   limiter,
		inbox:     make(chan []byte, 256),
		done:      make(chan struct{}),
		pingEvery: pingEvery,
	}
}

// ReadPump forwards frames from the connection to the inbox until the
// connection fails, then closes the inbox. Frames above the rate budget are
// dropped.
func (c *Client) ReadPump() {
	defer close(c.inbox)
	for {
		data, err := c.conn.Read()
		if err != nil {
			return
		}
		if c.limiter != nil && !c.limiter.Allow() {
			log.Debug().Str("user_id", c.userId).Msg("editor frame dropped by rate limiter")
			continue
		}
		select {
		case c.inbox <- data:
		case <-c.done:
			return
		}
	}
}

func (c *Client) send(env Envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("type", env.T).Msg("encode editor reply")
		return true
	}
	return c.conn.Write(data) == nil
}

// Run sends the initial state and then handles frames one at a time until
// the connection drops or ctx ends.
func (c *Client) Run(ctx context.Context) {
	defer close(c.done)
	go c.ReadPump()

	ticker := time.NewTicker(c.pingEvery)
	defer ticker.Stop()

	if !c.send(c.session.stateReply()) {
		c.conn.Close(ClosePingLost)
		return
	}

	for {
		select {
		case data, ok := <-c.inbox:
			if !ok {
				c.conn.Close("")
				return
			}
			env, err := DecodeEnvelope(data)
			if err != nil {
				if !c.send(errorReply(ErrBadPayload)) {
					c.conn.Close("")
					return
				}
				continue
			}
			out, ok := c.session.Handle(ctx, env)
			if ok && !c.send(out) {
				c.conn.Close("")
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				c.conn.Close(ClosePingLost)
				return
			}
		case <-ctx.Done():
			c.conn.Close(CloseShutdown)
			return
		}
	}
}
