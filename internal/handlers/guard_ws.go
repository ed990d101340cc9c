package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/deviceguard"
	guardmw "github.com/NehaTanti-afk/Neha-Notes/middleware/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	maxFrameSize = 512
)

type clientFrame struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type kickedFrame struct {
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	Redirect string `json:"redirect"`
}

// guardConn is the auth provider and note sink of one tab's guard. The
// logout reason reaches the tab as a kicked frame.
type guardConn struct {
	conn       *websocket.Conn
	writeMu    sync.Mutex
	stored     *session.Stored
	identities chan deviceguard.Identity
	kicked     chan struct{}
	kickOnce   sync.Once
	loginURL   string
}

func (g *guardConn) Identities() <-chan deviceguard.Identity {
	return g.identities
}

func (g *guardConn) SignOut(ctx context.Context) error {
	err := g.stored.SignOut(ctx)
	g.kickOnce.Do(func() { close(g.kicked) })
	return err
}

func (g *guardConn) Put(_ context.Context, key, value string) error {
	if key != deviceguard.LogoutReasonKey {
		return nil
	}
	return g.writeJSON(kickedFrame{
		Type:     "kicked",
		Reason:   value,
		Redirect: guardmw.KickedURL(g.loginURL),
	})
}

func (g *guardConn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	_ = g.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return g.conn.WriteMessage(websocket.TextMessage, data)
}

func (g *guardConn) close(code int, text string) {
	_ = g.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text),
		time.Now().Add(writeWait))
}

// readPump feeds visibility frames to the guard until the client goes away.
func (g *guardConn) readPump(ctx context.Context, cancel context.CancelFunc, visibility chan<- deviceguard.Visibility) {
	defer cancel()

	g.conn.SetReadLimit(maxFrameSize)
	_ = g.conn.SetReadDeadline(time.Now().Add(pongWait))
	g.conn.SetPongHandler(func(string) error {
		return g.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := g.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = g.conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame clientFrame
		if json.Unmarshal(data, &frame) != nil || frame.Type != "visibility" {
			continue
		}

		v := deviceguard.Hidden
		if frame.State == "visible" {
			v = deviceguard.Visible
		}

		select {
		case visibility <- v:
		case <-ctx.Done():
			return
		}
	}
}

// GuardSocket runs a device guard for one open tab. The tab reports
// visibility changes and is told when another device took over, after which
// its session is gone and the socket closes. The socket also closes once the
// session is signed out elsewhere.
func (h *Handlers) GuardSocket(c echo.Context) error {
	cookie, err := c.Cookie(h.manager.Cookie.Name)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	stored := h.manager.Stored(cookie.Value)
	accountID, err := stored.AccountID(ctx)
	if err != nil {
		h.logger.Error("failed to load session for guard socket", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}
	if accountID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Debug("guard socket upgrade failed", zap.Error(err))
		return nil
	}
	defer conn.Close()

	gc := &guardConn{
		conn:       conn,
		stored:     stored,
		identities: make(chan deviceguard.Identity, 1),
		kicked:     make(chan struct{}),
		loginURL:   h.config.Guard.LoginURL,
	}
	visibility := make(chan deviceguard.Visibility)

	guard, err := deviceguard.New(deviceguard.Options{
		Auth:       gc,
		Records:    h.records,
		Cache:      stored,
		Notes:      gc,
		Clock:      h.clock,
		Interval:   h.config.Guard.Interval,
		Visibility: visibility,
		Logger:     h.logger,
		Metrics:    h.metrics,
	})
	if err != nil {
		h.logger.Error("failed to start device guard", zap.Error(err))
		gc.close(websocket.CloseInternalServerErr, "guard unavailable")
		return nil
	}

	gc.identities <- deviceguard.Identity{ID: accountID}

	done := make(chan error, 1)
	go func() { done <- guard.Run(ctx) }()
	go gc.readPump(ctx, cancel, visibility)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	stop := func() {
		cancel()
		<-done
	}

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil

		case <-gc.kicked:
			gc.close(websocket.CloseNormalClosure, "signed in on another device")
			stop()
			return nil

		case <-ticker.C:
			if id, err := stored.AccountID(ctx); err == nil && id != accountID {
				gc.close(websocket.CloseNormalClosure, "signed out")
				stop()
				return nil
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				stop()
				return nil
			}
		}
	}
}
