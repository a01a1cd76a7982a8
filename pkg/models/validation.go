// Package models holds the per-entity schemas exchanged with the retail API.
package models

import (
	"strings"
	"time"
)

// FieldError names one rejected field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned before any request is sent when a payload breaks an entity rule.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid " + e.Entity
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid " + e.Entity + ": " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// checker accumulates field errors for one entity.
type checker struct {
	err ValidationError
}

func newChecker(entity string) *checker {
	return &checker{err: ValidationError{Entity: entity}}
}

func (c *checker) fail(field, message string) {
	c.err.Fields = append(c.err.Fields, FieldError{Field: field, Message: message})
}

func (c *checker) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "is required")
	}
}

func (c *checker) nonNegative(field string, value float64) {
	if value < 0 {
		c.fail(field, "must not be negative")
	}
}

func (c *checker) result() error {
	if len(c.err.Fields) == 0 {
		return nil
	}
	err := c.err
	return &err
}

// dateLayouts covers what the API emits and what operators type.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts ISO timestamps with or without zone, or a bare date.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
