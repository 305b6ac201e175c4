// Package events defines the board events emitted on the event bus.
//
// A BoardEvent is published after the schedule tree has changed, never
// before, so subscribers always observe the reconciled state.
package events
