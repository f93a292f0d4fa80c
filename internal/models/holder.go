package models

import (
	"fmt"
	"regexp"
	"strings"
)

// AllocationPolicy controls how ticket types are bound to holder slots
type AllocationPolicy string

const (
	// PolicyUnassigned leaves every slot empty until the holder picks a type
	PolicyUnassigned AllocationPolicy = "unassigned"
	// PolicyPreAssigned fixes slot types in selection order
	PolicyPreAssigned AllocationPolicy = "pre_assigned"
)

// Valid reports whether p is a known policy
func (p AllocationPolicy) Valid() bool {
	return p == PolicyUnassigned || p == PolicyPreAssigned
}

// HolderField identifies one editable attribute of a holder slot
type HolderField string

const (
	FieldTicketType HolderField = "ticket_type"
	FieldFirstName  HolderField = "first_name"
	FieldLastName   HolderField = "last_name"
	FieldEmail      HolderField = "email"
	FieldPhone      HolderField = "phone"
	FieldCompany    HolderField = "company"
	FieldJobTitle   HolderField = "job_title"
)

// CopyableFields are the holder attributes that can be copied across slots
var CopyableFields = []HolderField{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldCompany,
	FieldJobTitle,
}

// ParseHolderField converts a wire name into a HolderField
func ParseHolderField(name string) (HolderField, error) {
	field := HolderField(strings.TrimSpace(name))
	if field == FieldTicketType {
		return field, nil
	}
	for _, f := range CopyableFields {
		if f == field {
			return field, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownField)
}

// HolderSlot represents one attendee position within a purchase
type HolderSlot struct {
	SlotID       string `json:"slot_id"`
	TicketTypeID string `json:"ticket_type_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Company      string `json:"company"`
	JobTitle     string `json:"job_title"`
}

var (
	holderEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	holderPhoneRegex = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)
	phoneSeparators  = regexp.MustCompile(`[\s\-()]`)
)

// FullName returns the holder's first and last name separated by a space
func (h HolderSlot) FullName() string {
	return strings.TrimSpace(h.FirstName) + " " + strings.TrimSpace(h.LastName)
}

// Get returns the value of a holder field
func (h HolderSlot) Get(field HolderField) (string, error) {
	switch field {
	case FieldTicketType:
		return h.TicketTypeID, nil
	case FieldFirstName:
		return h.FirstName, nil
	case FieldLastName:
		return h.LastName, nil
	case FieldEmail:
		return h.Email, nil
	case FieldPhone:
		return h.Phone, nil
	case FieldCompany:
		return h.Company, nil
	case FieldJobTitle:
		return h.JobTitle, nil
	default:
		return "", fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
}

// Set assigns the value of a holder field
func (h *HolderSlot) Set(field HolderField, value string) error {
	switch field {
	case FieldTicketType:
		h.TicketTypeID = value
	case FieldFirstName:
		h.FirstName = value
	case FieldLastName:
		h.LastName = value
	case FieldEmail:
		h.Email = value
	case FieldPhone:
		h.Phone = value
	case FieldCompany:
		h.Company = value
	case FieldJobTitle:
		h.JobTitle = value
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	return nil
}

// ValidateFields reports every missing or malformed field of the slot at index
func (h HolderSlot) ValidateFields(index int) []FieldError {
	var errs []FieldError
	add := func(field HolderField, message string) {
		errs = append(errs, FieldError{SlotIndex: index, SlotID: h.SlotID, Field: field, Message: message})
	}

	if h.TicketTypeID == "" {
		add(FieldTicketType, "Please select a ticket type")
	}

	if strings.TrimSpace(h.FirstName) == "" {
		add(FieldFirstName, "First name is required")
	}

	if strings.TrimSpace(h.LastName) == "" {
		add(FieldLastName, "Last name is required")
	}

	email := strings.TrimSpace(h.Email)
	switch {
	case email == "":
		add(FieldEmail, "Email is required")
	case !holderEmailRegex.MatchString(email):
		add(FieldEmail, "Please enter a valid email address")
	}

	phone := strings.TrimSpace(h.Phone)
	switch {
	case phone == "":
		add(FieldPhone, "Phone number is required")
	case !holderPhoneRegex.MatchString(phoneSeparators.ReplaceAllString(phone, "")):
		add(FieldPhone, "Please enter a valid phone number")
	}

	return errs
}
