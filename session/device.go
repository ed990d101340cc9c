package session

import (
	"context"
	"fmt"

	"github.com/mileusna/useragent"
)

// DeviceCache keeps the device token in the session of the request being
// served. ctx must carry loaded session data.
type DeviceCache struct {
	manager *Manager
}

func NewDeviceCache(manager *Manager) *DeviceCache {
	return &DeviceCache{manager: manager}
}

func (d *DeviceCache) Get(ctx context.Context, key string) (string, bool) {
	value := d.manager.GetString(ctx, key)
	return value, value != ""
}

func (d *DeviceCache) Set(ctx context.Context, key, value string) error {
	d.manager.Put(ctx, key, value)
	return nil
}

func (d *DeviceCache) Delete(ctx context.Context, key string) error {
	d.manager.Remove(ctx, key)
	return nil
}

// Stored addresses one session by its token outside of a request, such as
// from a long-lived websocket. Every call reloads the session from the store
// so it sees writes made by other requests of the same browser. The ctx passed
// in must not already carry session data.
type Stored struct {
	manager *Manager
	token   string
}

func (m *Manager) Stored(token string) *Stored {
	return &Stored{manager: m, token: token}
}

func (s *Stored) load(ctx context.Context) (context.Context, error) {
	loaded, err := s.manager.Load(ctx, s.token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return loaded, nil
}

// AccountID returns the signed-in account of the session, or "" when the
// session is gone or anonymous.
func (s *Stored) AccountID(ctx context.Context) (string, error) {
	loaded, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if !s.manager.GetBool(loaded, AuthenticatedKey) {
		return "", nil
	}
	return s.manager.GetString(loaded, UserIDKey), nil
}

func (s *Stored) Get(ctx context.Context, key string) (string, bool) {
	loaded, err := s.load(ctx)
	if err != nil {
		return "", false
	}
	value := s.manager.GetString(loaded, key)
	return value, value != ""
}

func (s *Stored) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, func(loaded context.Context) { s.manager.Put(loaded, key, value) })
}

func (s *Stored) Delete(ctx context.Context, key string) error {
	return s.write(ctx, func(loaded context.Context) { s.manager.Remove(loaded, key) })
}

func (s *Stored) write(ctx context.Context, mutate func(context.Context)) error {
	loaded, err := s.load(ctx)
	if err != nil {
		return err
	}
	if s.manager.Token(loaded) == "" {
		// Session already destroyed; committing would mint a new one.
		return nil
	}
	mutate(loaded)
	if _, _, err := s.manager.Commit(loaded); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// SignOut destroys the stored session.
func (s *Stored) SignOut(ctx context.Context) error {
	loaded, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.manager.Destroy(loaded)
}

// DeviceLabel describes the browser and OS of a user agent, e.g.
// "Chrome on Windows".
func DeviceLabel(userAgent string) string {
	if userAgent == "" {
		return "Unknown device"
	}

	ua := useragent.Parse(userAgent)

	browser := ua.Name
	if browser == "" {
		browser = "Unknown browser"
	}

	switch {
	case ua.OS != "":
		return browser + " on " + ua.OS
	case ua.Mobile:
		return browser + " on mobile"
	default:
		return browser
	}
}
