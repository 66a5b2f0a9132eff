// Package agent drives the external computer-use reasoning model over a
// session.
//
// The reasoning itself is external: a Stepper turns conversation
// history plus the current screenshot into response items. The Loop
// owns the bounded auto-execution policy around it: every
// action-request item is validated, dispatched to the provider, and the
// resulting screenshot becomes the next step's visual context. The loop
// terminates when a step returns no action requests, and fails with
// *errdefs.TurnLimitError once the configured turn budget is spent.
package agent
