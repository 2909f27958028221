package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"nothuman/internal/canvas"
	"nothuman/internal/game"
)

// SocketConfig holds configuration for board WebSocket connections.
type SocketConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultSocketConfig returns the board socket defaults. Origins other than
// the serving host are refused.
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin:     OriginChecker(nil),
	}
}

// OriginChecker accepts requests without an Origin header, from the serving
// host, or from one of allowed ("*" allows any).
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// Board socket command types.
const (
	cmdPointer = "pointer"
	cmdColor   = "color"
	cmdWidth   = "width"
	cmdEraser  = "eraser"
	cmdClear   = "clear"
)

// boardCommand is one message from the view. Commands on a socket are
// applied in the order received and each is acknowledged by Seq.
type boardCommand struct {
	Seq     uint64               `json:"seq"`
	Type    string               `json:"type"`
	Pointer *canvas.PointerEvent `json:"pointer,omitempty"`
	Color   string               `json:"color,omitempty"`
	Width   int                  `json:"width,omitempty"`
}

// boardReply acknowledges a command ("ack") or pushes a round change
// ("state").
type boardReply struct {
	Type    string       `json:"type"`
	Seq     uint64       `json:"seq,omitempty"`
	OK      bool         `json:"ok"`
	Error   string       `json:"error,omitempty"`
	Brush   canvas.Brush `json:"brush"`
	Enabled bool         `json:"enabled"`
	Drawing bool         `json:"drawing"`
}

// boardConn is one board WebSocket.
type boardConn struct {
	id     string
	view   *game.View
	conn   *websocket.Conn
	send   chan boardReply
	conf   SocketConfig
	logger zerolog.Logger
}

func (h *BoardHandler) socket(w http.ResponseWriter, r *http.Request) {
	view, ok := h.drawView(w, r)
	if !ok {
		return
	}
	events, unsubscribe, err := h.store.Subscribe(view.ID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		unsubscribe()
		hlog.FromRequest(r).Error().Err(err).Msg("failed to upgrade board socket")
		return
	}

	c := &boardConn{
		id:   uuid.NewString(),
		view: view,
		conn: conn,
		send: make(chan boardReply, h.conf.SendBuffer),
		conf: h.conf,
	}
	c.logger = hlog.FromRequest(r).With().
		Str("connection_id", c.id).
		Str("view_id", view.ID).
		Logger()
	c.logger.Info().Msg("board socket established")

	go c.writePump(events, unsubscribe)
	c.readPump()
}

// apply runs one command against the board.
func (c *boardConn) apply(cmd boardCommand) boardReply {
	board := c.view.Board
	reply := boardReply{Type: "ack", Seq: cmd.Seq}
	switch cmd.Type {
	case cmdPointer:
		if cmd.Pointer == nil {
			reply.Error = "missing pointer"
			break
		}
		reply.OK = board.HandlePointer(*cmd.Pointer)
	case cmdColor:
		if err := board.SetColor(cmd.Color); err != nil {
			reply.Error = err.Error()
			break
		}
		reply.OK = true
	case cmdWidth:
		board.SetWidth(cmd.Width)
		reply.OK = true
	case cmdEraser:
		board.ToggleEraser()
		reply.OK = true
	case cmdClear:
		board.Clear()
		reply.OK = true
	default:
		reply.Error = "unknown command " + strconv.Quote(cmd.Type)
	}
	c.fill(&reply)
	return reply
}

func (c *boardConn) fill(reply *boardReply) {
	reply.Brush = c.view.Board.Brush()
	reply.Enabled = c.view.Board.Enabled()
	reply.Drawing = c.view.Board.Drawing()
}

// readPump applies commands until the socket fails or closes. It owns the
// send channel and closes it on return.
func (c *boardConn) readPump() {
	defer func() {
		close(c.send)
		c.view.Board.End()
		c.logger.Info().Msg("board socket closed")
	}()

	c.conn.SetReadLimit(c.conf.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.conf.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.conf.ReadTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("board socket read failed")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.conf.ReadTimeout))

		var cmd boardCommand
		var reply boardReply
		if err := json.Unmarshal(data, &cmd); err != nil {
			reply = boardReply{Type: "ack", Error: "invalid message"}
			c.fill(&reply)
		} else {
			reply = c.apply(cmd)
		}

		select {
		case c.send <- reply:
		default:
			c.logger.Warn().Msg("board socket send buffer full, closing")
			return
		}
	}
}

// writePump writes replies and round changes, and keeps the socket alive
// with pings. It ends when the reader is done or the view is unmounted.
func (c *boardConn) writePump(events <-chan string, unsubscribe func()) {
	ticker := time.NewTicker(c.conf.PingInterval)
	defer func() {
		ticker.Stop()
		unsubscribe()
		c.conn.Close()
	}()

	for {
		select {
		case reply, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.conf.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(reply); err != nil {
				c.logger.Error().Err(err).Msg("failed to write board reply")
				return
			}

		case event, ok := <-events:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.conf.WriteTimeout))
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "view unmounted")
				_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
				return
			}
			if event != game.EventRound {
				continue
			}
			state := boardReply{Type: "state", OK: true}
			c.fill(&state)
			if err := c.conn.WriteJSON(state); err != nil {
				c.logger.Error().Err(err).Msg("failed to write board state")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.conf.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("failed to send ping")
				return
			}
		}
	}
}
