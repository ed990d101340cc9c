// Package deviceguard enforces a single active browser session per account by
// comparing a locally cached device token with the one held on the account.
package deviceguard

import "context"

const (
	// DeviceTokenKey names the Local Token Cache entry.
	DeviceTokenKey = "examprep_device_token"
	// LogoutReasonKey names the per-tab note read once by the sign-in page.
	LogoutReasonKey = "logout_reason"
	// ReasonDevice is recorded when another device superseded this session.
	ReasonDevice = "device"
)

// Identity is what the auth provider knows about the current user. An empty
// ID means nobody is signed in.
type Identity struct {
	ID      string
	Loading bool
}

func (i Identity) ready() bool {
	return !i.Loading && i.ID != ""
}

type SignOuter interface {
	SignOut(ctx context.Context) error
}

// AuthProvider reports identity changes and can end the authenticated session.
// Identities is read until it is closed.
type AuthProvider interface {
	SignOuter
	Identities() <-chan Identity
}

// RecordStore reads and writes the active_device_token field of an account.
// A nil token means the field is cleared.
type RecordStore interface {
	GetActiveDeviceToken(ctx context.Context, accountID string) (*string, error)
	SetActiveDeviceToken(ctx context.Context, accountID, token string) error
}

// Cache is the client-side key/value storage holding the device token.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Notes holds short-lived per-tab messages such as the logout reason.
type Notes interface {
	Put(ctx context.Context, key, value string) error
}
