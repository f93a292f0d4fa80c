package services

import (
	"fmt"

	"event-checkout/internal/models"
)

// TicketAllocator binds ticket types to holder slots for one catalog
type TicketAllocator struct {
	catalog models.Catalog
}

// NewTicketAllocator creates a new ticket allocator
func NewTicketAllocator(catalog models.Catalog) *TicketAllocator {
	return &TicketAllocator{catalog: catalog}
}

// SlotID returns the id of the slot at index
func SlotID(index int) string {
	return fmt.Sprintf("ticket-%d", index+1)
}

// InitSlots creates one empty holder slot per selected ticket.
// With PolicyPreAssigned the slot types are filled in selection order.
func (a *TicketAllocator) InitSlots(selection models.Selection, policy models.AllocationPolicy) ([]models.HolderSlot, error) {
	if policy == "" {
		policy = models.PolicyUnassigned
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("allocation policy %q: %w", policy, models.ErrInvalidInput)
	}

	if err := selection.Validate(a.catalog); err != nil {
		return nil, fmt.Errorf("invalid selection: %w", err)
	}

	slots := make([]models.HolderSlot, 0, selection.TotalTickets())
	for _, item := range selection {
		for i := 0; i < item.Quantity; i++ {
			slot := models.HolderSlot{SlotID: SlotID(len(slots))}
			if policy == models.PolicyPreAssigned {
				slot.TicketTypeID = item.TicketTypeID
			}
			slots = append(slots, slot)
		}
	}

	return slots, nil
}

// AvailableTypesFor lists the ticket types that can still be chosen for a slot,
// in catalog order. Assignments held by excludingSlotID are not counted.
func (a *TicketAllocator) AvailableTypesFor(slots []models.HolderSlot, excludingSlotID string, selection models.Selection) []models.TicketType {
	assigned := make(map[string]int)
	for _, slot := range slots {
		if slot.SlotID == excludingSlotID || slot.TicketTypeID == "" {
			continue
		}
		assigned[slot.TicketTypeID]++
	}

	available := make([]models.TicketType, 0, len(a.catalog))
	for _, tt := range a.catalog {
		if selection.Quantity(tt.ID)-assigned[tt.ID] > 0 {
			available = append(available, tt.Snapshot())
		}
	}
	return available
}

// ValidateAllocation checks that every selected ticket is assigned exactly once
// and that every holder has the required fields. Inputs are not modified.
func (a *TicketAllocator) ValidateAllocation(slots []models.HolderSlot, selection models.Selection) models.AllocationResult {
	var result models.AllocationResult

	assigned := make(map[string]int)
	for _, slot := range slots {
		if slot.TicketTypeID != "" {
			assigned[slot.TicketTypeID]++
		}
	}

	for _, tt := range a.catalog {
		required := selection.Quantity(tt.ID)
		if assigned[tt.ID] != required {
			result.AllocationErrors = append(result.AllocationErrors, models.AllocationError{
				TicketTypeID:   tt.ID,
				TicketTypeName: tt.Name,
				Required:       required,
				Assigned:       assigned[tt.ID],
			})
		}
	}

	// Types outside the catalog can never be valid
	for i, slot := range slots {
		if slot.TicketTypeID == "" {
			continue
		}
		if _, ok := a.catalog.Find(slot.TicketTypeID); !ok {
			result.FieldErrors = append(result.FieldErrors, models.FieldError{
				SlotIndex: i,
				SlotID:    slot.SlotID,
				Field:     models.FieldTicketType,
				Message:   "Please select a ticket type",
			})
		}
	}

	for i, slot := range slots {
		result.FieldErrors = append(result.FieldErrors, slot.ValidateFields(i)...)
	}

	result.Valid = len(result.AllocationErrors) == 0 && len(result.FieldErrors) == 0
	return result
}

// AssignType returns a copy of slots with slotID bound to ticketTypeID.
// An empty ticketTypeID clears the assignment.
func (a *TicketAllocator) AssignType(slots []models.HolderSlot, slotID, ticketTypeID string, selection models.Selection) ([]models.HolderSlot, error) {
	index := findSlot(slots, slotID)
	if index < 0 {
		return nil, fmt.Errorf("slot %q: %w", slotID, models.ErrSlotNotFound)
	}

	if ticketTypeID != "" {
		if _, ok := a.catalog.Find(ticketTypeID); !ok {
			return nil, fmt.Errorf("ticket type %q: %w", ticketTypeID, models.ErrTicketTypeNotFound)
		}

		allowed := false
		for _, tt := range a.AvailableTypesFor(slots, slotID, selection) {
			if tt.ID == ticketTypeID {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("ticket type %q: %w", ticketTypeID, models.ErrTypeUnavailable)
		}
	}

	out := append([]models.HolderSlot(nil), slots...)
	out[index].TicketTypeID = ticketTypeID
	return out, nil
}

// CopyToAll returns a copy of slots where field holds the value of the slot at sourceIndex
func (a *TicketAllocator) CopyToAll(slots []models.HolderSlot, sourceIndex int, field models.HolderField) ([]models.HolderSlot, error) {
	if sourceIndex < 0 || sourceIndex >= len(slots) {
		return nil, fmt.Errorf("slot index %d: %w", sourceIndex, models.ErrSlotNotFound)
	}
	if !isCopyable(field) {
		return nil, fmt.Errorf("%q cannot be copied: %w", field, models.ErrUnknownField)
	}

	value, err := slots[sourceIndex].Get(field)
	if err != nil {
		return nil, err
	}

	out := append([]models.HolderSlot(nil), slots...)
	for i := range out {
		if err := out[i].Set(field, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func findSlot(slots []models.HolderSlot, slotID string) int {
	for i, slot := range slots {
		if slot.SlotID == slotID {
			return i
		}
	}
	return -1
}

func isCopyable(field models.HolderField) bool {
	for _, f := range models.CopyableFields {
		if f == field {
			return true
		}
	}
	return false
}
