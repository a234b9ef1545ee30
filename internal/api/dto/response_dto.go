package dto

import (
	"time"

	"github.com/digsafe/locate-ticket-service/internal/domain"
)

// SubmitResponseRequest payload.
type SubmitResponseRequest struct {
	MemberCode string                `json:"member_code"`
	MemberName string                `json:"member_name"`
	Status     domain.ResponseStatus `json:"status"`
	Facilities *string               `json:"facilities"`
	Comment    *string               `json:"comment"`
}

// ResponseRecord represents one filed response.
type ResponseRecord struct {
	ID          string                `json:"id"`
	TicketID    string                `json:"ticket_id"`
	MemberCode  string                `json:"member_code"`
	MemberName  string                `json:"member_name"`
	Status      domain.ResponseStatus `json:"status"`
	Facilities  *string               `json:"facilities,omitempty"`
	Comment     *string               `json:"comment,omitempty"`
	SubmittedBy string                `json:"submitted_by"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

// SubmitResponseResult couples the stored response with the ticket's
// post-recompute status.
type SubmitResponseResult struct {
	Response     ResponseRecord      `json:"response"`
	TicketStatus domain.TicketStatus `json:"ticket_status"`
}
