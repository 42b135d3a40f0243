// Package tokenstore persists the short-lived access token. The refresh
// credential is an http-only cookie the backend manages; it never appears here.
package tokenstore

import "sync"

// AccessTokenKey is the single well-known key the token lives under.
const AccessTokenKey = "otolor_access_token"

// Store holds at most one current access token. Set overwrites
// unconditionally, Clear is idempotent, and no expiry validation happens here:
// an expired token is discovered only by a failed request.
type Store interface {
	Get() (string, bool)
	Set(token string)
	Clear()
	IsPresent() bool
}

// Memory keeps the token in process memory. Used for gateway per-browser
// session slots and tests.
type Memory struct {
	mu    sync.RWMutex
	token string
	set   bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return "", false
	}
	return m.token, true
}

func (m *Memory) Set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = true
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
}

func (m *Memory) IsPresent() bool {
	_, ok := m.Get()
	return ok
}
