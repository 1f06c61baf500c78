package livehub

import (
	"log/slog"
	"sync"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	sendBuffer = 64
)

// Frame types written to WebSocket clients.
const (
	FrameChange = "change"
	FrameResync = "RESYNC"
	FramePage   = "page"
)

// Frame є одним JSON-кадром, що надсилається клієнту.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// WSSubscriber реалізує інтерфейс Subscriber для WebSocket-з'єднання.
type WSSubscriber struct {
	ID             string
	Principal      models.Principal
	Filters        []Filter
	Conn           *websocket.Conn
	Hub            *Hub
	Send           chan models.ChangeEvent
	ResyncInterval time.Duration

	closeOnce sync.Once
}

func NewWSSubscriber(hub *Hub, conn *websocket.Conn, p models.Principal, filters []Filter, resync time.Duration) *WSSubscriber {
	return &WSSubscriber{
		ID:             uuid.NewString(),
		Principal:      p,
		Filters:        filters,
		Conn:           conn,
		Hub:            hub,
		Send:           make(chan models.ChangeEvent, sendBuffer),
		ResyncInterval: resync,
	}
}

func (s *WSSubscriber) GetID() string                             { return s.ID }
func (s *WSSubscriber) GetFilters() []Filter                      { return s.Filters }
func (s *WSSubscriber) GetSendChannel() chan<- models.ChangeEvent { return s.Send }

// Run запускає 'pumps' для WebSocket.
func (s *WSSubscriber) Run() {
	go writePump[models.ChangeEvent](s.Conn, s.Send, FrameChange, s.ResyncInterval)
	go func() {
		readPump(s.Conn)
		s.Hub.Unregister(s)
	}()
}

// Close закриває Send канал, що зупинить writePump.
func (s *WSSubscriber) Close() {
	s.closeOnce.Do(func() { close(s.Send) })
}

// ServeStream pumps an arbitrary stream to conn and blocks until the peer goes
// away. stop is called once the read side ends.
func ServeStream[T any](conn *websocket.Conn, src <-chan T, kind string, resync time.Duration, stop func()) {
	go writePump[T](conn, src, kind, resync)
	readPump(conn)
	stop()
}

// readPump discards client frames, keeps the read deadline fresh and returns
// when the connection breaks.
func readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

// writePump читає значення з src і записує їх у WebSocket як кадри kind.
// resync > 0 додає періодичний кадр RESYNC.
func writePump[T any](conn *websocket.Conn, src <-chan T, kind string, resync time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	var resyncC <-chan time.Time
	if resync > 0 {
		rt := time.NewTicker(resync)
		defer rt.Stop()
		resyncC = rt.C
	}

	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case v, ok := <-src:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрито хабом, закриваємо з'єднання WS
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(Frame{Type: kind, Data: v}); err != nil {
				return
			}

		case <-resyncC:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Frame{Type: FrameResync}); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
