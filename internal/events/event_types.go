package events

import (
	"time"

	"github.com/digsafe/locate-ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCancelled     EventType = "ticket_cancelled"
	EventResponseReceived    EventType = "response_received"
	EventMemberAdded         EventType = "member_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID *string         `json:"user_id,omitempty"`
	Role   domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string `json:"ticket_number"`
	WorkType     string `json:"work_type"`
	SiteCity     string `json:"site_city"`
	MemberCount  int    `json:"member_count"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus     domain.TicketStatus `json:"old_status"`
	NewStatus     domain.TicketStatus `json:"new_status"`
	ResponseCount int                 `json:"response_count"`
	ExpectedCount int                 `json:"expected_count"`
	Summary       string              `json:"summary,omitempty"`
}

// TicketCancelledPayload payload.
type TicketCancelledPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ResponseReceivedPayload payload.
type ResponseReceivedPayload struct {
	ResponseID string                `json:"response_id"`
	MemberCode string                `json:"member_code"`
	Status     domain.ResponseStatus `json:"status"`
}

// MemberAddedPayload marks a member auto-discovered from a response or added
// at creation.
type MemberAddedPayload struct {
	MemberCode     string `json:"member_code"`
	MemberName     string `json:"member_name"`
	AutoDiscovered bool   `json:"auto_discovered"`
}
