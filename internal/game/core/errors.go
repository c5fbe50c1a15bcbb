package core

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds      = errors.New("destination is off the board")
	ErrCellOccupied     = errors.New("destination cell is occupied")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrUnknownUnit      = errors.New("unknown unit")
	ErrUnitDead         = errors.New("unit is dead")
	ErrWrongSide        = errors.New("unit does not belong to the side to move")
	ErrTargetDead       = errors.New("target is dead")
	ErrTargetOutOfRange = errors.New("target is out of range")
	ErrFriendlyTarget   = errors.New("target is on the same side")
	ErrInvalidAction    = errors.New("invalid action type")
	ErrInvalidSnapshot  = errors.New("invalid snapshot")
)

// WrapActionError adds the acting unit and action to an error.
// Returns nil for a nil error.
func WrapActionError(action Action, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, err)
}

// WrapSnapshotError marks err as a snapshot validation failure with detail
func WrapSnapshotError(detail string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, detail)
	}
	return fmt.Errorf("%w: %s: %w", ErrInvalidSnapshot, detail, err)
}
