package domain

import "time"

// TicketStatus enumerates lifecycle states for locate tickets.
type TicketStatus string

const (
	TicketStatusSubmitted   TicketStatus = "SUBMITTED"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusResponsesIn TicketStatus = "RESPONSES_IN"
	TicketStatusCancelled   TicketStatus = "CANCELLED"
)

// Member is a utility company expected to respond to a ticket. Member codes
// are compared case-insensitively; within one ticket's list they are unique.
type Member struct {
	MemberCode   string
	MemberName   string
	ContactPhone *string
	ContactEmail *string
	IsActive     bool
}

// Ticket is the aggregate for locate requests. The ticket owns its member
// list; responses are stored separately and joined in for status computation.
type Ticket struct {
	ID              string
	TicketNumber    string
	ExcavatorID     string
	WorkType        string
	WorkDescription string
	SiteAddress     string
	SiteCity        string
	SiteCounty      string
	SiteState       string
	Status          TicketStatus
	Members         []Member
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CancelledAt     *time.Time
}
