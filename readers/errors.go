package readers

import (
	"errors"
	"fmt"

	"essdump/types"
)

var (
	ErrOutOfBounds    = errors.New("read out of bounds")
	ErrNegativeLength = errors.New("negative length prefix")
	ErrUnknownLayout  = errors.New("unknown layout")
	ErrNoDetails      = errors.New("record has no header details")
	ErrDecompress     = errors.New("cannot decompress save body")
)

// OutOfBoundsError is returned when a read would run past the end of the buffer.
type OutOfBoundsError struct {
	Offset int // where the read started
	Want   int // bytes requested
	Have   int // bytes left at Offset
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read of %v bytes at offset %v out of bounds (%v left)", e.Want, e.Offset, e.Have)
}

func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// NegativeLengthError is returned when a length prefix decodes to a negative number.
type NegativeLengthError struct {
	Offset int // offset of the prefix itself
	Length int16
}

func (e *NegativeLengthError) Error() string {
	return fmt.Sprintf("negative length prefix %v at offset %v", e.Length, e.Offset)
}

func (e *NegativeLengthError) Is(target error) bool {
	return target == ErrNegativeLength
}

// FieldError ties a read failure to the field being decoded.
type FieldError struct {
	Field  types.Field
	Offset int // offset the field started at
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %v at offset %v: %v", e.Field, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// IOError is returned when a save file could not be read at all.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %v: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
