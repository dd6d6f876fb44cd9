package engine

import "fmt"

// ShapeError reports an input whose structure does not match the plan
// horizon, e.g. a monthly series with the wrong number of entries.
type ShapeError struct {
	Entity string
	Field  string
	Msg    string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("engine: %s.%s: %s", e.Entity, e.Field, e.Msg)
}

// DomainError reports a value that violates a business constraint, such as
// a negative quantity or a price below unit variable cost.
type DomainError struct {
	Entity string
	Field  string
	Msg    string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("engine: %s.%s: %s", e.Entity, e.Field, e.Msg)
}

func shapeErr(entity, field, format string, args ...any) error {
	return &ShapeError{Entity: entity, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func domainErr(entity, field, format string, args ...any) error {
	return &DomainError{Entity: entity, Field: field, Msg: fmt.Sprintf(format, args...)}
}
