// Package types provides shared data structures for the gateway.
//
// This package defines the data-only types that cross package
// boundaries, keeping domain packages free of each other's imports.
//
// Core Types:
//   - ComputerType: supported remote environments (browser, desktop)
//   - Item: one conversation history entry (message or action request)
//   - SessionMetadata: read-only session listing view
//   - CreateParams: options for provisioning a session
//
// Example Usage:
//
//	item := types.UserMessage("open the news site")
//	meta := types.SessionMetadata{
//	    ComputerType: types.ComputerBrowser,
//	    CreatedAt:    time.Now(),
//	}
package types
