// Package game holds the core rules of the platform: the schedule and game
// state machines, end-of-game scoring, storage patching, and team
// auto-assignment. Everything in this package is pure — it operates on model
// values and returns errors; persistence and transactions stay with the
// callers in the handlers package.
package game

import "errors"

// Precondition failures surfaced to callers as 400-class errors. The strings
// double as the client-facing reason and are stable — tests and clients match
// on them.
var (
	ErrScheduleNotScheduled       = errors.New("schedule cannot be activated since its not in a scheduled state")
	ErrScheduleHasGame            = errors.New("schedule cannot be activated since game already exists")
	ErrScheduleNotActive          = errors.New("schedule cannot be ended since its not in a active state")
	ErrScheduleDeleteNotScheduled = errors.New("schedule cannot be deleted since its not in a scheduled state")
	ErrScheduleDeleteHasGame      = errors.New("schedule cannot be deleted since it has a related game")

	ErrGameNotActive         = errors.New("you cannot balance a game that is not active")
	ErrGameEndNotActive      = errors.New("the game cannot be ended since its not in a active state")
	ErrCreateScheduleNotOpen = errors.New("a game can only be created for an active schedule")
	ErrGameMissingSchedule   = errors.New("the game does not have a corresponding game schedule")
	ErrAlreadyAssigned       = errors.New("the game already has assigned players, auto-assignment cannot occur")
)
