package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput means there were no headlines left to score.
	ErrEmptyInput = errors.New("no headlines to score")
	// ErrInsufficientData means the classifier got no usable bars.
	ErrInsufficientData = errors.New("insufficient price data")
	// ErrParse marks a malformed snapshot line.
	ErrParse = errors.New("malformed snapshot line")
	// ErrProtocol marks a snapshot that violates the file layout.
	ErrProtocol = errors.New("snapshot protocol violation")
	// ErrIO marks a snapshot or result file that could not be read.
	ErrIO = errors.New("snapshot io failure")
	// ErrWrite marks a snapshot or result file that could not be written.
	ErrWrite = errors.New("snapshot write failure")
)

// ParseError describes a single malformed snapshot line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
