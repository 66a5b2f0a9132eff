// Package action validates typed input-injection payloads and routes
// them to provider operations.
//
// The action vocabulary is closed: click, double_click, scroll, type,
// wait, move, keypress, goto. Payloads are decoded at the boundary into
// a strongly-typed Action; anything outside the vocabulary, missing a
// required field, or carrying a mistyped field is rejected with
// *errdefs.InvalidActionError before any provider call. Dispatch then
// performs exactly one provider call per action.
package action
