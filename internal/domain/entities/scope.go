package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ScopeMode selects how a snapshot request resolves to wallet addresses
type ScopeMode string

const (
	// ScopeSingle covers exactly one wallet address
	ScopeSingle ScopeMode = "single"
	// ScopeAll covers every wallet registered by a user
	ScopeAll ScopeMode = "all"
)

// WalletScope is the immutable input to a snapshot request
type WalletScope struct {
	Mode    ScopeMode `json:"mode"`
	Address string    `json:"address,omitempty"`
	UserID  string    `json:"user_id,omitempty"`
}

// Key returns the cache/coalescing key for this scope
func (s WalletScope) Key() string {
	if s.Mode == ScopeSingle {
		return "single:" + strings.ToLower(s.Address)
	}
	return "all:" + s.UserID
}

// ResolvedAddressSet is an ordered list of unique lowercase addresses
// derived from a WalletScope. It lives only for the request.
type ResolvedAddressSet []string

// Hash returns a short stable digest of the address set, used to key
// cache entries so a changed wallet registry invalidates naturally.
func (r ResolvedAddressSet) Hash() string {
	h := sha256.New()
	for _, addr := range r {
		h.Write([]byte(addr))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
