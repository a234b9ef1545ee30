package dto

import (
	"time"

	"github.com/digsafe/locate-ticket-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	WorkType        string          `json:"work_type"`
	WorkDescription string          `json:"work_description"`
	SiteAddress     string          `json:"site_address"`
	SiteCity        string          `json:"site_city"`
	SiteCounty      string          `json:"site_county"`
	SiteState       string          `json:"site_state"`
	Members         []MemberRequest `json:"members"`
}

// CancelTicketRequest payload.
type CancelTicketRequest struct {
	Reason string `json:"reason"`
}

// TicketSummary response for listings.
type TicketSummary struct {
	ID           string              `json:"id"`
	TicketNumber string              `json:"ticket_number"`
	WorkType     string              `json:"work_type"`
	SiteAddress  string              `json:"site_address"`
	SiteCity     string              `json:"site_city"`
	SiteCounty   string              `json:"site_county"`
	SiteState    string              `json:"site_state"`
	Status       domain.TicketStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID              string              `json:"id"`
	TicketNumber    string              `json:"ticket_number"`
	WorkType        string              `json:"work_type"`
	WorkDescription string              `json:"work_description"`
	SiteAddress     string              `json:"site_address"`
	SiteCity        string              `json:"site_city"`
	SiteCounty      string              `json:"site_county"`
	SiteState       string              `json:"site_state"`
	Status          domain.TicketStatus `json:"status"`
	Members         []MemberResponse    `json:"members"`
	ResponseCount   *int                `json:"response_count,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
}

// TicketHistoryResponse represents an audit entry.
type TicketHistoryResponse struct {
	ID            string                  `json:"id"`
	ChangeType    domain.TicketChangeType `json:"change_type"`
	ChangedByType domain.ActorType        `json:"changed_by_type"`
	ChangedByID   *string                 `json:"changed_by_id,omitempty"`
	OldValue      map[string]any          `json:"old_value"`
	NewValue      map[string]any          `json:"new_value"`
	CreatedAt     time.Time               `json:"created_at"`
}
