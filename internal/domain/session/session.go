package session

import (
	"sync"
	"time"

	"github.com/opencua/gateway/internal/providers/scrapybara"
	"github.com/opencua/gateway/internal/shared/types"
)

// Session is a live binding between a caller and one provisioned remote
// instance. The instance handle is owned exclusively by the session and
// released exactly once, on delete.
type Session struct {
	ID        string
	Computer  types.ComputerType
	CreatedAt time.Time
	StreamURL string
	Debug     bool
	Show      bool

	instance scrapybara.Instance

	// opMu serializes interact/action/screenshot/delete on this
	// session so a delete cannot race an in-flight operation into a
	// dangling instance handle.
	opMu   sync.Mutex
	closed bool

	// histMu guards history on its own so inspection reads do not
	// have to wait behind an in-flight interaction holding opMu.
	histMu  sync.Mutex
	history []types.Item
}

// Instance returns the session's provider handle.
func (s *Session) Instance() scrapybara.Instance {
	return s.instance
}

// ComputerType returns the environment kind the session backs.
func (s *Session) ComputerType() types.ComputerType {
	return s.Computer
}

// IsBrowser reports whether the session backs a browser environment.
func (s *Session) IsBrowser() bool {
	return s.Computer.IsBrowser()
}

// History returns a copy of the conversation history.
func (s *Session) History() []types.Item {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	out := make([]types.Item, len(s.history))
	copy(out, s.history)
	return out
}

// Append adds items to the conversation history. History is append-only.
func (s *Session) Append(items ...types.Item) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.history = append(s.history, items...)
}

// HistoryLen returns the number of history items.
func (s *Session) HistoryLen() int {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	return len(s.history)
}

// Metadata returns the session's listing view.
func (s *Session) Metadata() types.SessionMetadata {
	return types.SessionMetadata{
		ComputerType: s.Computer,
		CreatedAt:    s.CreatedAt,
		StreamURL:    s.StreamURL,
	}
}
