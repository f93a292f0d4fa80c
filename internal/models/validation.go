package models

import (
	"fmt"
	"strings"
)

// FieldError describes one missing or malformed holder field
type FieldError struct {
	SlotIndex int         `json:"slot_index"`
	SlotID    string      `json:"slot_id"`
	Field     HolderField `json:"field"`
	Message   string      `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("ticket %d %s: %s", e.SlotIndex+1, e.Field, e.Message)
}

// AllocationError reports a ticket type whose assigned count differs from the selection
type AllocationError struct {
	TicketTypeID   string `json:"ticket_type_id"`
	TicketTypeName string `json:"ticket_type_name"`
	Required       int    `json:"required"`
	Assigned       int    `json:"assigned"`
}

func (e AllocationError) Error() string {
	return fmt.Sprintf("Please assign exactly %d %s ticket(s)", e.Required, e.TicketTypeName)
}

// AllocationResult is the outcome of validating holder slots against a selection
type AllocationResult struct {
	Valid            bool              `json:"valid"`
	AllocationErrors []AllocationError `json:"allocation_errors,omitempty"`
	FieldErrors      []FieldError      `json:"field_errors,omitempty"`
}

// Err returns nil for a valid result and a *ValidationErrors otherwise
func (r AllocationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationErrors{Allocations: r.AllocationErrors, Fields: r.FieldErrors}
}

// ValidationErrors aggregates every problem found before a checkout can be submitted
type ValidationErrors struct {
	Allocations []AllocationError
	Fields      []FieldError
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, 0, len(v.Allocations)+len(v.Fields))
	for _, a := range v.Allocations {
		parts = append(parts, a.Error())
	}
	for _, f := range v.Fields {
		parts = append(parts, f.Error())
	}
	if len(parts) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Messages groups every message by a stable key, for form-style responses.
// Allocation problems are keyed "allocation", field problems "<slot index>.<field>".
func (v *ValidationErrors) Messages() map[string][]string {
	out := make(map[string][]string)
	for _, a := range v.Allocations {
		out["allocation"] = append(out["allocation"], a.Error())
	}
	for _, f := range v.Fields {
		key := fmt.Sprintf("%d.%s", f.SlotIndex, f.Field)
		out[key] = append(out[key], f.Message)
	}
	return out
}
