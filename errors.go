package batbit

import (
	"errors"
	"fmt"

	"github.com/hupe1980/batbit/internal/arena"
	"github.com/hupe1980/batbit/internal/bitset"
	"github.com/hupe1980/batbit/internal/columnar"
	"github.com/hupe1980/batbit/internal/conv"
	"github.com/hupe1980/batbit/internal/hashmap"
	"github.com/hupe1980/batbit/internal/mem"
	"github.com/hupe1980/batbit/internal/vector"
	"github.com/hupe1980/batbit/resource"
)

var (
	// ErrNotFound is returned for absent keys, unknown columns, unallocated
	// rows and unwritten cells.
	ErrNotFound = errors.New("not found")
	// ErrOutOfDomain is returned for bitset values >= DomainMax.
	ErrOutOfDomain = errors.New("value out of domain")
	// ErrIndexOutOfRange is returned for vector indexes outside [0, Len).
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrWrongType is returned when a column is accessed as the wrong type.
	ErrWrongType = errors.New("wrong column type")
	// ErrLengthMismatch is returned when paired batch inputs differ in length.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrAllocationFailed is returned when memory for a container could not be reserved.
	ErrAllocationFailed = errors.New("allocation failed")
	// ErrColumnExists is returned when a column name is already taken.
	ErrColumnExists = errors.New("column already exists")
	// ErrInvalidColumnName is returned for empty column names.
	ErrInvalidColumnName = errors.New("invalid column name")
	// ErrInvalidOption is returned by constructors for unsupported option values.
	ErrInvalidOption = errors.New("invalid option")
	// ErrRowsExhausted is returned when a BatStore cannot allocate more row ids.
	ErrRowsExhausted = errors.New("row ids exhausted")
)

// ErrDomain indicates a value outside the bitset domain.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDomain struct {
	Value     uint64
	DomainMax uint64
	cause     error
}

func (e *ErrDomain) Error() string {
	return fmt.Sprintf("value %d out of domain [0, %d)", e.Value, e.DomainMax)
}

func (e *ErrDomain) Unwrap() error { return e.cause }

// ErrBatch indicates which element of a batch was rejected.
// Nothing from the batch was applied.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrBatch struct {
	Index int
	cause error
}

func (e *ErrBatch) Error() string {
	return fmt.Sprintf("batch element %d rejected: %v", e.Index, e.cause)
}

func (e *ErrBatch) Unwrap() error { return e.cause }

// ErrTypeMismatch indicates a column accessed with the wrong type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrTypeMismatch struct {
	Column   string
	Expected string
	Actual   string
	cause    error
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch on column %q: expected %s, got %s", e.Column, e.Expected, e.Actual)
}

func (e *ErrTypeMismatch) Unwrap() error { return e.cause }

// ErrSizeMismatch indicates keys and values of a batch differ in length.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrSizeMismatch struct {
	Keys   int
	Values int
	cause  error
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("size mismatch: %d keys, %d values", e.Keys, e.Values)
}

func (e *ErrSizeMismatch) Unwrap() error { return e.cause }

// translateNewError is translateError for constructors: an initial capacity
// that can never be allocated is an invalid option.
func translateNewError(err error) error {
	if errors.Is(err, mem.ErrTooLarge) {
		return fmt.Errorf("%w: initial capacity: %w", ErrInvalidOption, err)
	}
	return translateError(err)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Allocation failures first: they may wrap any engine error.
	if errors.Is(err, resource.ErrMemoryLimitExceeded) ||
		errors.Is(err, mem.ErrTooLarge) ||
		errors.Is(err, conv.ErrOverflow) {
		return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}

	// Domain errors carry the batch index when they come from a batch.
	var de *bitset.DomainError
	if errors.As(err, &de) {
		domain := &ErrDomain{
			Value:     de.Value,
			DomainMax: de.Limit,
			cause:     fmt.Errorf("%w: %w", ErrOutOfDomain, err),
		}
		if de.Index >= 0 {
			return &ErrBatch{Index: de.Index, cause: domain}
		}
		return domain
	}

	// Not found unification.
	if errors.Is(err, hashmap.ErrNotFound) ||
		errors.Is(err, columnar.ErrColumnNotFound) ||
		errors.Is(err, columnar.ErrRowNotFound) ||
		errors.Is(err, columnar.ErrNoValue) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var tm *columnar.TypeMismatchError
	if errors.As(err, &tm) {
		return &ErrTypeMismatch{
			Column:   tm.Column,
			Expected: tm.Want.String(),
			Actual:   tm.Got.String(),
			cause:    fmt.Errorf("%w: %w", ErrWrongType, err),
		}
	}
	var sm *hashmap.SizeMismatchError
	if errors.As(err, &sm) {
		return &ErrSizeMismatch{
			Keys:   sm.Keys,
			Values: sm.Values,
			cause:  fmt.Errorf("%w: %w", ErrLengthMismatch, err),
		}
	}

	if errors.Is(err, vector.ErrIndexOutOfRange) {
		return fmt.Errorf("%w: %w", ErrIndexOutOfRange, err)
	}
	if errors.Is(err, columnar.ErrColumnExists) {
		return fmt.Errorf("%w: %w", ErrColumnExists, err)
	}
	if errors.Is(err, columnar.ErrInvalidColumnName) {
		return fmt.Errorf("%w: %w", ErrInvalidColumnName, err)
	}
	if errors.Is(err, columnar.ErrRowsExhausted) {
		return fmt.Errorf("%w: %w", ErrRowsExhausted, err)
	}
	if errors.Is(err, bitset.ErrInvalidConfig) ||
		errors.Is(err, hashmap.ErrInvalidConfig) ||
		errors.Is(err, arena.ErrInvalidChunkSize) {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	return err
}
