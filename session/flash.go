package session

import (
	"context"

	"github.com/labstack/echo/v4"
)

const (
	FlashKey     = "_flash"
	FlashTypeKey = "_flash_type"
)

type FlashType string

const (
	FlashSuccess FlashType = "success"
	FlashError   FlashType = "error"
	FlashWarning FlashType = "warning"
	FlashInfo    FlashType = "info"
)

type FlashMessage struct {
	Message string    `json:"message"`
	Type    FlashType `json:"type"`
}

func SetFlashWithType(c echo.Context, message string, flashType FlashType) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	ctx := c.Request().Context()
	manager.Put(ctx, FlashKey, message)
	manager.Put(ctx, FlashTypeKey, string(flashType))
}

func SetFlashSuccess(c echo.Context, message string) {
	SetFlashWithType(c, message, FlashSuccess)
}

func SetFlashError(c echo.Context, message string) {
	SetFlashWithType(c, message, FlashError)
}

func SetFlashWarning(c echo.Context, message string) {
	SetFlashWithType(c, message, FlashWarning)
}

// PopFlash returns and clears the pending flash, or nil when there is none.
func PopFlash(c echo.Context) *FlashMessage {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	ctx := c.Request().Context()
	msg := manager.PopString(ctx, FlashKey)
	flashType := manager.PopString(ctx, FlashTypeKey)
	if msg == "" {
		return nil
	}
	if flashType == "" {
		flashType = string(FlashError)
	}
	return &FlashMessage{Message: msg, Type: FlashType(flashType)}
}

// PopNote returns and clears a one-shot note stored under key.
func PopNote(c echo.Context, key string) string {
	manager := GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.PopString(c.Request().Context(), key)
}

// FlashNotes stores per-tab notes in the request's session so they are shown
// on the next page load only.
type FlashNotes struct {
	manager *Manager
}

func NewFlashNotes(manager *Manager) *FlashNotes {
	return &FlashNotes{manager: manager}
}

func (n *FlashNotes) Put(ctx context.Context, key, value string) error {
	n.manager.Put(ctx, key, value)
	return nil
}
