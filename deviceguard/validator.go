package deviceguard

import "crypto/subtle"

type Decision int

const (
	Keep Decision = iota
	Kick
)

func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case Kick:
		return "kick"
	default:
		return "unknown"
	}
}

// Validate decides whether the local session is still the authoritative one.
//
//	local absent              -> Keep (this browser never claimed a guarded session)
//	remote nil or empty       -> Kick (token cleared on the account)
//	remote == local           -> Keep
//	remote != local           -> Kick (superseded by another login)
func Validate(remote *string, local string) Decision {
	if local == "" {
		return Keep
	}
	if remote == nil || *remote == "" {
		return Kick
	}
	if subtle.ConstantTimeCompare([]byte(*remote), []byte(local)) != 1 {
		return Kick
	}
	return Keep
}
