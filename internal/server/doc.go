// Package server assembles the gateway: configuration, logging,
// metrics, the automation provider client, the agent loop, the session
// registry and the HTTP surface, in that order. It owns the listener
// lifecycle including graceful shutdown, which releases every live
// remote instance before the process exits.
package server
