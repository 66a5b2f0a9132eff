// Package http exposes the gateway's REST surface: session lifecycle,
// agent interaction, direct actions and screenshots, plus service
// status endpoints. Handlers bind requests, delegate to the session
// registry and translate the domain error taxonomy to status codes.
package http
