package sqlq

import (
	"errors"
	"fmt"
)

// Sentinel errors for the sqlq package.
var (
	// ErrEmptyIdentifier is returned when a table or column name is empty.
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrUnknownColumn is returned when a requested column is not in the allow-list.
	ErrUnknownColumn = errors.New("unknown column")
)

// UnknownColumnError names the column rejected by a ColumnSet.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Column)
}

// Unwrap lets errors.Is match ErrUnknownColumn.
func (e *UnknownColumnError) Unwrap() error {
	return ErrUnknownColumn
}
