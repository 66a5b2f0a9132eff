package types

import "time"

// ComputerType identifies the remote environment backing a session.
type ComputerType string

const (
	// ComputerBrowser is a hosted Chromium instance.
	ComputerBrowser ComputerType = "scrapybara-browser"
	// ComputerDesktop is a full Ubuntu desktop instance.
	ComputerDesktop ComputerType = "scrapybara-ubuntu"
)

// IsBrowser reports whether the environment supports browser-only
// operations (navigation, current URL).
func (c ComputerType) IsBrowser() bool {
	return c == ComputerBrowser
}

// Valid reports whether the value is one of the supported environments.
func (c ComputerType) Valid() bool {
	return c == ComputerBrowser || c == ComputerDesktop
}

// SessionMetadata is the read-only listing view of a session.
type SessionMetadata struct {
	ComputerType ComputerType `json:"computer_type"`
	CreatedAt    time.Time    `json:"created_at"`
	StreamURL    string       `json:"stream_url,omitempty"`
}

// CreateParams carries the options for provisioning a new session.
type CreateParams struct {
	ComputerType ComputerType
	StartURL     string
	Debug        bool
	Show         bool
}
