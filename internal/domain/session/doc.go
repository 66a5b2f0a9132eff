// Package session is the registry of live remote sessions.
//
// Every session owns exactly one provisioned instance. The Manager maps
// session ids to sessions and funnels all instance access through a
// per-session operation lock, so interactions, direct actions,
// screenshots and deletion of the same session never overlap and the
// instance handle is released exactly once.
package session
