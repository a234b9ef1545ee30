package dto

// MemberRequest names a member expected to respond, supplied at creation.
type MemberRequest struct {
	MemberCode string `json:"member_code"`
	MemberName string `json:"member_name"`
}

// MemberResponse represents one tracked member.
type MemberResponse struct {
	MemberCode   string  `json:"member_code"`
	MemberName   string  `json:"member_name"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	IsActive     bool    `json:"is_active"`
}

// UpdateMemberContactRequest payload; omitted fields are left untouched.
type UpdateMemberContactRequest struct {
	ContactPhone *string `json:"contact_phone"`
	ContactEmail *string `json:"contact_email"`
	IsActive     *bool   `json:"is_active"`
}

// MemberSummaryResponse aggregates counts over a ticket's member list.
type MemberSummaryResponse struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	WithPhone int `json:"with_phone"`
	WithEmail int `json:"with_email"`
}

// MemberValidationResponse lists diagnostics for a ticket's member list.
type MemberValidationResponse struct {
	Issues []string `json:"issues"`
}
