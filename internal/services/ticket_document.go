package services

import (
	"fmt"
	"strings"

	"event-checkout/internal/models"
)

// TicketDocumentService renders downloadable ticket documents
type TicketDocumentService struct{}

// NewTicketDocumentService creates a new ticket document service
func NewTicketDocumentService() *TicketDocumentService {
	return &TicketDocumentService{}
}

// ContentType is the media type of rendered documents
func (s *TicketDocumentService) ContentType() string {
	return "text/plain; charset=utf-8"
}

// FileName returns the download name for a ticket
func (s *TicketDocumentService) FileName(ticket models.PurchasedTicket) string {
	return fmt.Sprintf("ticket-%s.txt", ticket.TicketNumber)
}

// Render produces the plain-text document for a single ticket
func (s *TicketDocumentService) Render(ticket models.PurchasedTicket) []byte {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("Event: %s\n", ticket.EventName))
	content.WriteString(fmt.Sprintf("Ticket Type: %s\n", ticket.TicketType.Name))
	content.WriteString(fmt.Sprintf("Ticket Number: %s\n", ticket.TicketNumber))
	content.WriteString(fmt.Sprintf("Date: %s\n", ticket.EventDate))
	content.WriteString(fmt.Sprintf("Venue: %s\n", ticket.Venue))
	content.WriteString(fmt.Sprintf("Holder: %s", ticket.HolderName))

	return []byte(content.String())
}
