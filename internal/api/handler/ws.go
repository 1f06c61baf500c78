package handler

import (
	"net/http"

	"complaintdesk/backend/internal/livehub"
	"complaintdesk/backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by CORS and the bearer token, not here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeLive оновлює з'єднання до WebSocket і підписує його на зміни рядків
// за фільтром ?table=&column=&value=.
func (h *Handler) ServeLive(c *gin.Context) {
	p := principal(c)
	f, err := livehub.ParseFilter(c.Query("table"), c.Query("column"), c.Query("value"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := livehub.Authorize(c.Request.Context(), p, f, h.Lookup); err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		return
	}

	sub := livehub.NewWSSubscriber(h.Hub, conn, p, []livehub.Filter{f}, h.ResyncInterval)
	if !h.Hub.Register(sub) {
		_ = conn.Close()
		return
	}
	sub.Run()
}

// ServeNotificationFeed streams the caller's notification page, one frame per change.
func (h *Handler) ServeNotificationFeed(c *gin.Context) {
	p := principal(c)
	if _, err := h.Notifications.Unread(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	feed := notify.NewFeed(c.Request.Context(), h.Notifications, p, h.ResyncInterval)
	if !h.Hub.Register(feed) {
		_ = conn.Close()
		return
	}
	feed.Run()
	livehub.ServeStream(conn, feed.Updates(), livehub.FramePage, 0, func() { h.Hub.Unregister(feed) })
}
