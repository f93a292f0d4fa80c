package services

import (
	"math"
	"testing"

	"event-checkout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeIDs(types []models.TicketType) []string {
	ids := make([]string, len(types))
	for i, tt := range types {
		ids[i] = tt.ID
	}
	return ids
}

func TestTicketAllocator_InitSlots(t *testing.T) {
	allocator := NewTicketAllocator(DefaultCatalog())
	selection := models.Selection{
		{TicketTypeID: "attendee", Quantity: 2},
		{TicketTypeID: "speaker", Quantity: 1},
	}

	t.Run("unassigned policy leaves types empty", func(t *testing.T) {
		slots, err := allocator.InitSlots(selection, models.PolicyUnassigned)
		require.NoError(t, err)
		require.Len(t, slots, 3)
		for i, slot := range slots {
			assert.Equal(t, SlotID(i), slot.SlotID)
			assert.Empty(t, slot.TicketTypeID)
		}
	})

	t.Run("default policy is unassigned", func(t *testing.T) {
		slots, err := allocator.InitSlots(selection, "")
		require.NoError(t, err)
		assert.Empty(t, slots[0].TicketTypeID)
	})

	t.Run("pre-assigned policy follows selection order", func(t *testing.T) {
		slots, err := allocator.InitSlots(models.Selection{
			{TicketTypeID: "speaker", Quantity: 1},
			{TicketTypeID: "attendee", Quantity: 2},
		}, models.PolicyPreAssigned)
		require.NoError(t, err)
		require.Len(t, slots, 3)
		assert.Equal(t, "speaker", slots[0].TicketTypeID)
		assert.Equal(t, "attendee", slots[1].TicketTypeID)
		assert.Equal(t, "attendee", slots[2].TicketTypeID)
	})

	t.Run("slot ids are unique", func(t *testing.T) {
		slots, err := allocator.InitSlots(models.Selection{{TicketTypeID: "attendee", Quantity: 12}}, models.PolicyUnassigned)
		require.NoError(t, err)
		seen := map[string]bool{}
		for _, slot := range slots {
			assert.False(t, seen[slot.SlotID], "duplicate slot id %s", slot.SlotID)
			seen[slot.SlotID] = true
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := allocator.InitSlots(selection, "random")
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		_, err = allocator.InitSlots(models.Selection{{TicketTypeID: "vip", Quantity: 1}}, models.PolicyUnassigned)
		assert.ErrorIs(t, err, models.ErrTicketTypeNotFound)

		_, err = allocator.InitSlots(models.Selection{{TicketTypeID: "attendee", Quantity: -2}}, models.PolicyUnassigned)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)

		_, err = allocator.InitSlots(models.Selection{}, models.PolicyUnassigned)
		assert.ErrorIs(t, err, models.ErrEmptySelection)
	})

	t.Run("enforces the purchase limit", func(t *testing.T) {
		tests := []struct {
			name      string
			selection models.Selection
		}{
			{"overflowing total", models.Selection{{TicketTypeID: "attendee", Quantity: math.MaxInt}, {TicketTypeID: "speaker", Quantity: 1}}},
			{"huge single quantity", models.Selection{{TicketTypeID: "attendee", Quantity: 100_000_000}}},
			{"one over the limit", models.Selection{{TicketTypeID: "speaker", Quantity: models.MaxTicketsPerPurchase + 1}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var slots []models.HolderSlot
				var err error
				require.NotPanics(t, func() {
					slots, err = allocator.InitSlots(tt.selection, models.PolicyUnassigned)
				})
				assert.ErrorIs(t, err, models.ErrInvalidQuantity)
				assert.Nil(t, slots)
			})
		}

		slots, err := allocator.InitSlots(models.Selection{{TicketTypeID: "attendee", Quantity: models.MaxTicketsPerPurchase}}, models.PolicyUnassigned)
		require.NoError(t, err)
		assert.Len(t, slots, models.MaxTicketsPerPurchase)
	})
}

func TestTicketAllocator_AvailableTypesFor(t *testing.T) {
	allocator := NewTicketAllocator(DefaultCatalog())
	selection := models.Selection{
		{TicketTypeID: "speaker", Quantity: 1},
		{TicketTypeID: "attendee", Quantity: 2},
	}

	slots := []models.HolderSlot{
		{SlotID: "ticket-1", TicketTypeID: "speaker"},
		{SlotID: "ticket-2", TicketTypeID: "attendee"},
		{SlotID: "ticket-3"},
	}

	// catalog order, not selection order
	assert.Equal(t, []string{"attendee"}, typeIDs(allocator.AvailableTypesFor(slots, "ticket-3", selection)))
	assert.Equal(t, []string{"attendee", "speaker"}, typeIDs(allocator.AvailableTypesFor(slots, "ticket-1", selection)))

	slots[2].TicketTypeID = "attendee"
	assert.Equal(t, []string{"attendee"}, typeIDs(allocator.AvailableTypesFor(slots, "ticket-2", selection)))
	assert.Empty(t, allocator.AvailableTypesFor(slots, "missing", selection))

	none := allocator.AvailableTypesFor(slots, "ticket-3", models.Selection{{TicketTypeID: "speaker", Quantity: 1}})
	assert.Empty(t, none)
}

func TestTicketAllocator_ValidateAllocation(t *testing.T) {
	allocator := NewTicketAllocator(DefaultCatalog())
	selection := models.Selection{
		{TicketTypeID: "attendee", Quantity: 2},
		{TicketTypeID: "speaker", Quantity: 1},
	}

	valid := func() []models.HolderSlot {
		return []models.HolderSlot{
			holder("ticket-1", "attendee", "Ada", "Lovelace"),
			holder("ticket-2", "attendee", "Grace", "Hopper"),
			holder("ticket-3", "speaker", "Alan", "Turing"),
		}
	}

	t.Run("exact allocation is valid", func(t *testing.T) {
		result := allocator.ValidateAllocation(valid(), selection)
		assert.True(t, result.Valid)
		assert.Empty(t, result.AllocationErrors)
		assert.Empty(t, result.FieldErrors)
		assert.NoError(t, result.Err())
	})

	t.Run("mismatched counts name the type", func(t *testing.T) {
		slots := valid()
		slots[2].TicketTypeID = "attendee"

		result := allocator.ValidateAllocation(slots, selection)
		require.False(t, result.Valid)
		require.Len(t, result.AllocationErrors, 2)
		assert.Equal(t, "Please assign exactly 2 Attendee ticket(s)", result.AllocationErrors[0].Error())
		assert.Equal(t, 3, result.AllocationErrors[0].Assigned)
		assert.Equal(t, "Please assign exactly 1 Speaker ticket(s)", result.AllocationErrors[1].Error())
		assert.ErrorIs(t, result.Err(), models.ErrValidation)
	})

	t.Run("assigned but never selected", func(t *testing.T) {
		slots := valid()[:2]
		slots[1].TicketTypeID = "speaker"

		result := allocator.ValidateAllocation(slots, models.Selection{{TicketTypeID: "attendee", Quantity: 2}})
		require.False(t, result.Valid)
		require.Len(t, result.AllocationErrors, 2)
		assert.Equal(t, "speaker", result.AllocationErrors[1].TicketTypeID)
		assert.Equal(t, 0, result.AllocationErrors[1].Required)
		assert.Equal(t, 1, result.AllocationErrors[1].Assigned)
	})

	t.Run("field errors are tagged per slot", func(t *testing.T) {
		slots := valid()
		slots[1].Email = "not-an-email"
		slots[2].TicketTypeID = ""
		slots[2].FirstName = ""

		result := allocator.ValidateAllocation(slots, selection)
		require.False(t, result.Valid)

		byKey := map[string]string{}
		for _, fe := range result.FieldErrors {
			byKey[fe.SlotID+"/"+string(fe.Field)] = fe.Message
		}
		assert.Equal(t, "Please enter a valid email address", byKey["ticket-2/email"])
		assert.Equal(t, "Please select a ticket type", byKey["ticket-3/ticket_type"])
		assert.Equal(t, "First name is required", byKey["ticket-3/first_name"])
		require.Len(t, result.AllocationErrors, 1)
		assert.Equal(t, "speaker", result.AllocationErrors[0].TicketTypeID)
	})

	t.Run("unknown type on a slot", func(t *testing.T) {
		slots := valid()
		slots[0].TicketTypeID = "vip"

		result := allocator.ValidateAllocation(slots, selection)
		require.False(t, result.Valid)
		found := false
		for _, fe := range result.FieldErrors {
			if fe.SlotID == "ticket-1" && fe.Field == models.FieldTicketType {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		slots := valid()
		slots[0].Email = ""
		before := append([]models.HolderSlot(nil), slots...)
		selBefore := selection.Clone()

		allocator.ValidateAllocation(slots, selection)

		assert.Equal(t, before, slots)
		assert.Equal(t, selBefore, selection)
	})
}

func TestTicketAllocator_AssignType(t *testing.T) {
	allocator := NewTicketAllocator(DefaultCatalog())
	selection := models.Selection{
		{TicketTypeID: "attendee", Quantity: 1},
		{TicketTypeID: "speaker", Quantity: 1},
	}
	slots, err := allocator.InitSlots(selection, models.PolicyUnassigned)
	require.NoError(t, err)

	assigned, err := allocator.AssignType(slots, "ticket-1", "speaker", selection)
	require.NoError(t, err)
	assert.Equal(t, "speaker", assigned[0].TicketTypeID)
	assert.Empty(t, slots[0].TicketTypeID, "input must not be modified")

	_, err = allocator.AssignType(assigned, "ticket-2", "speaker", selection)
	assert.ErrorIs(t, err, models.ErrTypeUnavailable)

	_, err = allocator.AssignType(assigned, "ticket-2", "vip", selection)
	assert.ErrorIs(t, err, models.ErrTicketTypeNotFound)

	_, err = allocator.AssignType(assigned, "ticket-9", "attendee", selection)
	assert.ErrorIs(t, err, models.ErrSlotNotFound)

	// reassigning the same slot does not count its own assignment
	again, err := allocator.AssignType(assigned, "ticket-1", "speaker", selection)
	require.NoError(t, err)
	assert.Equal(t, "speaker", again[0].TicketTypeID)

	cleared, err := allocator.AssignType(assigned, "ticket-1", "", selection)
	require.NoError(t, err)
	assert.Empty(t, cleared[0].TicketTypeID)
}

func TestTicketAllocator_CopyToAll(t *testing.T) {
	allocator := NewTicketAllocator(DefaultCatalog())
	slots := []models.HolderSlot{
		{SlotID: "ticket-1", Company: "Acme", Email: "a@example.com"},
		{SlotID: "ticket-2", Company: "Other"},
		{SlotID: "ticket-3"},
	}

	out, err := allocator.CopyToAll(slots, 0, models.FieldCompany)
	require.NoError(t, err)
	for _, slot := range out {
		assert.Equal(t, "Acme", slot.Company)
	}
	assert.Equal(t, "Other", slots[1].Company, "input must not be modified")
	assert.Empty(t, out[1].Email)

	_, err = allocator.CopyToAll(slots, 3, models.FieldCompany)
	assert.ErrorIs(t, err, models.ErrSlotNotFound)

	_, err = allocator.CopyToAll(slots, -1, models.FieldCompany)
	assert.ErrorIs(t, err, models.ErrSlotNotFound)

	_, err = allocator.CopyToAll(slots, 0, models.FieldTicketType)
	assert.ErrorIs(t, err, models.ErrUnknownField)
}
