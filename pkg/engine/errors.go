package engine

import "fmt"

// ErrorCode is the typed error taxonomy from spec.md §7. Callers branch on
// Code via errors.As(err, &tableErr) rather than string matching.
type ErrorCode string

const (
	ErrInvalidAction      ErrorCode = "InvalidAction"
	ErrInvalidBetAmount   ErrorCode = "InvalidBetAmount"
	ErrInvalidRaiseAmount ErrorCode = "InvalidRaiseAmount"
	ErrInsufficientStack  ErrorCode = "InsufficientStack"
	ErrInvalidState       ErrorCode = "InvalidState"
	ErrPlayerNotFound     ErrorCode = "PlayerNotFound"
	ErrNotPlayerTurn      ErrorCode = "NotPlayerTurn"
	ErrTableFull          ErrorCode = "TableFull"
	ErrTableEmpty         ErrorCode = "TableEmpty"
	ErrSeatOccupied       ErrorCode = "SeatOccupied"
	ErrInvalidSeat        ErrorCode = "InvalidSeat"
	ErrGameAlreadyStarted ErrorCode = "GameAlreadyStarted"
	ErrGameNotStarted     ErrorCode = "GameNotStarted"
	ErrNotEnoughPlayers   ErrorCode = "NotEnoughPlayers"
	ErrInvalidCard        ErrorCode = "InvalidCard"
	ErrInternalError      ErrorCode = "InternalError"
)

// TableError is the engine's single error type. Details carries optional
// structured context (e.g. {"callAmount": "40"}) for callers that want
// more than the message.
type TableError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newErr(code ErrorCode, format string, args ...any) *TableError {
	return &TableError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func newErrDetails(code ErrorCode, details map[string]any, format string, args ...any) *TableError {
	e := newErr(code, format, args...)
	e.Details = details
	return e
}

// AsTableError unwraps err into a *TableError, if it is one.
func AsTableError(err error) (*TableError, bool) {
	te, ok := err.(*TableError)
	return te, ok
}

// guardPanic recovers a panic raised while *st/*err's caller held t.mu,
// converting it into a TableError{Code: InternalError} instead of letting
// it cross the public API and crash the host process (spec.md §7: an
// invariant violation inside the engine must surface as InternalError at
// the boundary, not panic). Deferred first, immediately after t.mu.Lock(),
// by every public Table method that mutates state or walks pot/money math.
func (t *Table) guardPanic(st *TableState, err *error) {
	if r := recover(); r != nil {
		*err = newErr(ErrInternalError, "internal invariant violation: %v", r)
		*st = t.safeSnapshot()
	}
}

// safeSnapshot returns snapshot(), falling back to a zero-value TableState
// if building the snapshot itself panics (state already corrupted enough
// that even a read fails).
func (t *Table) safeSnapshot() (st TableState) {
	defer func() {
		if recover() != nil {
			st = TableState{}
		}
	}()
	return t.snapshot()
}
