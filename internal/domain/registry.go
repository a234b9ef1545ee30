package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

// The member registry is a set of pure operations over a ticket's member
// list. Every mutation is copy-on-write: the input ticket is never touched,
// callers get a fresh value back. The ticket value is shared between the
// read path and the response-ingestion path, so aliasing the slice would be
// an easy way to corrupt a reader mid-request.

// MemberContactPatch carries optional contact fields; nil fields are left
// untouched on the target member.
type MemberContactPatch struct {
	Phone  *string
	Email  *string
	Active *bool
}

// MemberSummary aggregates counts over a ticket's member list.
type MemberSummary struct {
	Total     int
	Active    int
	Inactive  int
	WithPhone int
	WithEmail int
}

// IsMemberPresent reports whether a member with the given code is already
// tracked. Codes compare case-insensitively.
func IsMemberPresent(code string, members []Member) bool {
	_, ok := FindMember(code, members)
	return ok
}

// FindMember returns the first member whose code matches case-insensitively.
func FindMember(code string, members []Member) (Member, bool) {
	for _, m := range members {
		if strings.EqualFold(m.MemberCode, code) {
			return m, true
		}
	}
	return Member{}, false
}

// AddMember appends a new active member with no contact info. The caller is
// expected to have checked presence first; AddMember itself only validates
// that code and name are non-blank.
func AddMember(ticket Ticket, code, name string) (Ticket, error) {
	if strings.TrimSpace(code) == "" {
		return ticket, apperrors.NewInvalidArgument("member code must not be blank", map[string]any{"field": "member_code"})
	}
	if strings.TrimSpace(name) == "" {
		return ticket, apperrors.NewInvalidArgument("member name must not be blank", map[string]any{"field": "member_name"})
	}
	updated := ticket
	updated.Members = append(cloneMembers(ticket.Members), Member{
		MemberCode: code,
		MemberName: name,
		IsActive:   true,
	})
	return updated, nil
}

// EnsureMember makes sure the given member code is tracked on the ticket.
// When the code is already present the ticket comes back unchanged and added
// is false; otherwise the member is appended as by AddMember. This is the
// entry point the response flow uses when an unrecognized member code shows
// up on a submitted response.
func EnsureMember(ticket Ticket, code, name string) (Ticket, bool, error) {
	if strings.TrimSpace(code) == "" {
		return ticket, false, apperrors.NewInvalidArgument("member code must not be blank", map[string]any{"field": "member_code"})
	}
	if strings.TrimSpace(name) == "" {
		return ticket, false, apperrors.NewInvalidArgument("member name must not be blank", map[string]any{"field": "member_name"})
	}
	if IsMemberPresent(code, ticket.Members) {
		return ticket, false, nil
	}
	updated, err := AddMember(ticket, code, name)
	if err != nil {
		return ticket, false, err
	}
	return updated, true, nil
}

// UpdateMemberContact patches contact fields on the member matching code.
// Absent members are not an error: the ticket comes back unchanged. Relative
// order of the list is preserved.
func UpdateMemberContact(ticket Ticket, code string, patch MemberContactPatch) Ticket {
	idx := memberIndex(code, ticket.Members)
	if idx < 0 {
		return ticket
	}
	members := cloneMembers(ticket.Members)
	member := members[idx]
	if patch.Phone != nil {
		phone := *patch.Phone
		member.ContactPhone = &phone
	}
	if patch.Email != nil {
		email := *patch.Email
		member.ContactEmail = &email
	}
	if patch.Active != nil {
		member.IsActive = *patch.Active
	}
	members[idx] = member
	updated := ticket
	updated.Members = members
	return updated
}

// RemoveMember drops the first member matching code. Removing a code that is
// not present is a no-op, not an error.
func RemoveMember(ticket Ticket, code string) Ticket {
	idx := memberIndex(code, ticket.Members)
	if idx < 0 {
		return ticket
	}
	members := make([]Member, 0, len(ticket.Members)-1)
	members = append(members, ticket.Members[:idx]...)
	members = append(members, ticket.Members[idx+1:]...)
	updated := ticket
	updated.Members = members
	return updated
}

// SummarizeMembers computes aggregate counts over the current member list.
func SummarizeMembers(ticket Ticket) MemberSummary {
	summary := MemberSummary{Total: len(ticket.Members)}
	for _, m := range ticket.Members {
		if m.IsActive {
			summary.Active++
		} else {
			summary.Inactive++
		}
		if m.ContactPhone != nil && strings.TrimSpace(*m.ContactPhone) != "" {
			summary.WithPhone++
		}
		if m.ContactEmail != nil && strings.TrimSpace(*m.ContactEmail) != "" {
			summary.WithEmail++
		}
	}
	return summary
}

// ValidateMembers scans the list and reports blank codes and case-insensitive
// duplicates as ordered diagnostic strings. Duplicates are reported at the
// index of the second and later occurrences with their original casing. The
// function never errors; lists may come from untrusted input and policy on
// findings belongs to the caller.
func ValidateMembers(members []Member) []string {
	var issues []string
	seen := make(map[string]struct{}, len(members))
	for i, m := range members {
		if strings.TrimSpace(m.MemberCode) == "" {
			issues = append(issues, fmt.Sprintf("member %d: member code is empty", i))
			continue
		}
		key := strings.ToLower(m.MemberCode)
		if _, dup := seen[key]; dup {
			issues = append(issues, fmt.Sprintf("member %d: duplicate member code %q", i, m.MemberCode))
			continue
		}
		seen[key] = struct{}{}
	}
	return issues
}

func memberIndex(code string, members []Member) int {
	for i, m := range members {
		if strings.EqualFold(m.MemberCode, code) {
			return i
		}
	}
	return -1
}

func cloneMembers(members []Member) []Member {
	if members == nil {
		return nil
	}
	cloned := make([]Member, len(members))
	copy(cloned, members)
	return cloned
}
