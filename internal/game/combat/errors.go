package combat

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCombatant is wrapped when a side's snapshot could not be resolved.
	ErrMissingCombatant = errors.New("combatant snapshot missing")
	// ErrNoActions is wrapped when a side has nothing to act with.
	ErrNoActions = errors.New("combatant has no actions")
	// ErrInvalidAction is wrapped when an action's timing or item data is unusable.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidCombatant is wrapped when a side's stats are unusable.
	ErrInvalidCombatant = errors.New("invalid combatant")
)

// SetupError reports a duel that was rejected before the first tick.
// Nothing has been mutated when a SetupError is returned.
type SetupError struct {
	// Side is "attacker" or "defender".
	Side string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("combat setup (%s): %v", e.Side, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

func setupErr(side string, err error) *SetupError {
	return &SetupError{Side: side, Err: err}
}
