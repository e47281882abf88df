package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTrade matches every *InvalidTradeError.
	ErrInvalidTrade = errors.New("invalid trade")
	// ErrInvalidInput matches every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound is returned for a journal session with no stored trades.
	ErrSessionNotFound = errors.New("session not found")
)

// InvalidTradeError reports a trade that fails the evaluator's preconditions.
type InvalidTradeError struct {
	Field  string
	Reason string
}

func (e *InvalidTradeError) Error() string {
	return fmt.Sprintf("invalid trade: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidTrade.
func (e *InvalidTradeError) Is(target error) bool {
	return target == ErrInvalidTrade
}

// InvalidInputError reports a session payload that is not a list of trades.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
