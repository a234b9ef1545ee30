package domain

import "fmt"

// The status engine derives a ticket's lifecycle status from the expected
// member list and the responses received so far. Two regimes apply:
//
//   - legacy: the ticket never had expected members configured; any response
//     at all moves it to RESPONSES_IN.
//   - tracked: expected members exist; the response count is compared to the
//     expected count. Over-counts (duplicate submissions, auto-discovered
//     members responding before registration) still mean fully responded.
//
// Regime selection is purely len(ticket.Members) at call time, so a legacy
// ticket that later gains members follows the tracked rule from then on.

// CalculateStatus computes the status for a consistent snapshot of (ticket,
// responses). It is deterministic and side-effect free; with zero responses
// the current status is passed through untouched, whatever it is.
func CalculateStatus(ticket Ticket, responses []Response) TicketStatus {
	count := len(responses)
	if len(ticket.Members) == 0 {
		if count > 0 {
			return TicketStatusResponsesIn
		}
		return ticket.Status
	}
	switch {
	case count == 0:
		return ticket.Status
	case count < len(ticket.Members):
		return TicketStatusInProgress
	default:
		return TicketStatusResponsesIn
	}
}

// UpdateStatusWithResponses recomputes the status and, when it differs from
// the current one, returns a new ticket value carrying it along with
// changed=true. The unchanged case returns the original value so callers can
// skip the storage write entirely; persistence happens exactly once per
// genuine transition.
func UpdateStatusWithResponses(ticket Ticket, responses []Response) (Ticket, bool) {
	next := CalculateStatus(ticket, responses)
	if next == ticket.Status {
		return ticket, false
	}
	updated := ticket
	updated.Members = cloneMembers(ticket.Members)
	updated.Status = next
	return updated, true
}

// TransitionSummary renders a human-readable description of a status
// transition for logs and audit entries. It is reporting only and must not
// drive further transitions.
func TransitionSummary(oldStatus, newStatus TicketStatus, responseCount, expectedCount int) string {
	if oldStatus == newStatus {
		return fmt.Sprintf("status unchanged at %s", oldStatus)
	}
	var fraction string
	if expectedCount > 0 {
		fraction = fmt.Sprintf(" (%d/%d responses)", responseCount, expectedCount)
	}
	switch {
	case oldStatus == TicketStatusSubmitted && newStatus == TicketStatusInProgress:
		return "responses coming in" + fraction
	case oldStatus == TicketStatusInProgress && newStatus == TicketStatusResponsesIn:
		return "all expected members have responded" + fraction
	case oldStatus == TicketStatusSubmitted && newStatus == TicketStatusResponsesIn:
		return "responses complete" + fraction
	}
	return fmt.Sprintf("status changed from %s to %s", oldStatus, newStatus)
}
