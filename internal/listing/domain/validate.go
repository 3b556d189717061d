package domain

import (
	"math"
	"strings"
)

// Apply merges f into l and validates the result. l is left untouched on error.
func (l *Listing) Apply(f Fields) error {
	next := *l
	if f.Title != nil {
		next.Title = strings.TrimSpace(*f.Title)
	}
	if f.Description != nil {
		next.Description = strings.TrimSpace(*f.Description)
	}
	if f.Price != nil {
		next.Price = *f.Price
	}
	if f.Condition != nil {
		next.Condition = Condition(strings.TrimSpace(*f.Condition))
	}
	if f.Category != nil {
		raw := strings.TrimSpace(*f.Category)
		if raw == "" {
			next.Category = ""
		} else {
			c, ok := ParseCategory(raw)
			if !ok {
				return NewValidationError("category", "unsupported category "+raw)
			}
			next.Category = c
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*l = next
	return nil
}

func (l *Listing) Validate() error {
	if l.Title == "" {
		return NewValidationError("title", "is required")
	}
	if l.Description == "" {
		return NewValidationError("description", "is required")
	}
	if math.IsNaN(l.Price) || math.IsInf(l.Price, 0) || l.Price < 0 {
		return NewValidationError("price", "must be a non-negative number")
	}
	if !l.Condition.Valid() {
		return NewValidationError("condition", "must be one of new, used")
	}
	if l.Category != "" {
		if _, ok := ParseCategory(string(l.Category)); !ok {
			return NewValidationError("category", "unsupported category "+string(l.Category))
		}
	}
	return nil
}

// RequireCreateFields reports the first field Create needs but did not get.
func (f Fields) RequireCreateFields() error {
	switch {
	case f.Title == nil:
		return NewValidationError("title", "is required")
	case f.Description == nil:
		return NewValidationError("description", "is required")
	case f.Price == nil:
		return NewValidationError("price", "is required")
	case f.Condition == nil:
		return NewValidationError("condition", "is required")
	}
	return nil
}
