package domain

import "time"

// ResponseStatus is the closed set of answers a member can file.
type ResponseStatus string

const (
	ResponseStatusClear       ResponseStatus = "CLEAR"
	ResponseStatusNotClear    ResponseStatus = "NOT_CLEAR"
	ResponseStatusNotYetClear ResponseStatus = "NOT_YET_CLEAR"
)

// Response records one member's reply to a ticket. Multiple responses from
// the same member code are allowed and counted as separate records.
type Response struct {
	ID          string
	TicketID    string
	MemberCode  string
	MemberName  string
	Status      ResponseStatus
	Facilities  *string
	Comment     *string
	SubmittedBy string
	SubmittedAt time.Time
}
