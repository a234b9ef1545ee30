package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ticketWithMembers(members ...Member) Ticket {
	return Ticket{
		ID:           "t-1",
		TicketNumber: "LOC-00000001",
		Status:       TicketStatusSubmitted,
		Members:      members,
	}
}

func TestEnsureMember_Idempotent(t *testing.T) {
	t.Parallel()

	base := ticketWithMembers()

	once, added, err := EnsureMember(base, "ATMOS", "Atmos Energy")
	require.NoError(t, err)
	require.True(t, added)
	require.Len(t, once.Members, 1)

	twice, added, err := EnsureMember(once, "ATMOS", "Atmos Energy")
	require.NoError(t, err)
	require.False(t, added)
	require.Equal(t, once, twice)

	// Original value untouched.
	require.Empty(t, base.Members)
}

func TestEnsureMember_CaseInsensitiveIdentity(t *testing.T) {
	t.Parallel()

	ticket, _, err := EnsureMember(ticketWithMembers(), "ATMOS", "Atmos Energy")
	require.NoError(t, err)

	ticket, added, err := EnsureMember(ticket, "atmos", "Atmos Energy")
	require.NoError(t, err)
	require.False(t, added)
	require.Len(t, ticket.Members, 1)

	found, ok := FindMember("AtMoS", ticket.Members)
	require.True(t, ok)
	require.Equal(t, "ATMOS", found.MemberCode)
}

func TestEnsureMember_BlankInput(t *testing.T) {
	t.Parallel()

	_, _, err := EnsureMember(ticketWithMembers(), "   ", "Atmos Energy")
	require.Error(t, err)

	_, _, err = EnsureMember(ticketWithMembers(), "ATMOS", "")
	require.Error(t, err)

	_, err = AddMember(ticketWithMembers(), "", "Atmos Energy")
	require.Error(t, err)
}

func TestAddMember_DefaultsActiveWithoutContact(t *testing.T) {
	t.Parallel()

	ticket, err := AddMember(ticketWithMembers(), "ONG", "Oklahoma Natural Gas")
	require.NoError(t, err)
	require.Len(t, ticket.Members, 1)

	m := ticket.Members[0]
	require.True(t, m.IsActive)
	require.Nil(t, m.ContactPhone)
	require.Nil(t, m.ContactEmail)
}

func TestUpdateMemberContact_PatchesOnlySuppliedFields(t *testing.T) {
	t.Parallel()

	phone := "405-555-0100"
	base := ticketWithMembers(
		Member{MemberCode: "ONG", MemberName: "Oklahoma Natural Gas", ContactPhone: &phone, IsActive: true},
		Member{MemberCode: "OEC", MemberName: "Oklahoma Electric Coop", IsActive: true},
	)

	email := "locates@ong.example.com"
	inactive := false
	updated := UpdateMemberContact(base, "ong", MemberContactPatch{Email: &email, Active: &inactive})

	require.Len(t, updated.Members, 2)
	require.Equal(t, "ONG", updated.Members[0].MemberCode)
	require.Equal(t, phone, *updated.Members[0].ContactPhone)
	require.Equal(t, email, *updated.Members[0].ContactEmail)
	require.False(t, updated.Members[0].IsActive)

	// Untouched neighbor and untouched input.
	require.Equal(t, base.Members[1], updated.Members[1])
	require.True(t, base.Members[0].IsActive)
	require.Nil(t, base.Members[0].ContactEmail)
}

func TestUpdateMemberContact_AbsentIsNoop(t *testing.T) {
	t.Parallel()

	base := ticketWithMembers(Member{MemberCode: "ONG", MemberName: "Oklahoma Natural Gas", IsActive: true})
	phone := "405-555-0100"
	updated := UpdateMemberContact(base, "NOPE", MemberContactPatch{Phone: &phone})
	require.Equal(t, base, updated)
}

func TestRemoveMember_Idempotent(t *testing.T) {
	t.Parallel()

	base := ticketWithMembers(
		Member{MemberCode: "ONG", MemberName: "Oklahoma Natural Gas", IsActive: true},
		Member{MemberCode: "OEC", MemberName: "Oklahoma Electric Coop", IsActive: true},
	)

	removed := RemoveMember(base, "ong")
	require.Len(t, removed.Members, 1)
	require.Equal(t, "OEC", removed.Members[0].MemberCode)

	unchanged := RemoveMember(base, "MISSING")
	require.Equal(t, base, unchanged)
	require.Len(t, base.Members, 2)
}

func TestSummarizeMembers(t *testing.T) {
	t.Parallel()

	phone := "405-555-0100"
	email := "locates@oec.example.com"
	blank := "  "
	ticket := ticketWithMembers(
		Member{MemberCode: "ONG", MemberName: "Oklahoma Natural Gas", ContactPhone: &phone, IsActive: true},
		Member{MemberCode: "OEC", MemberName: "Oklahoma Electric Coop", ContactEmail: &email, IsActive: true},
		Member{MemberCode: "COX", MemberName: "Cox Communications", ContactPhone: &blank, IsActive: false},
	)

	summary := SummarizeMembers(ticket)
	require.Equal(t, MemberSummary{
		Total:     3,
		Active:    2,
		Inactive:  1,
		WithPhone: 1,
		WithEmail: 1,
	}, summary)
}

func TestValidateMembers_Diagnostics(t *testing.T) {
	t.Parallel()

	issues := ValidateMembers([]Member{
		{MemberCode: "A", MemberName: "Alpha"},
		{MemberCode: "a", MemberName: "Alpha Again"},
		{MemberCode: "", MemberName: "Blank"},
	})

	require.Len(t, issues, 2)
	require.Contains(t, issues[0], "member 1")
	require.Contains(t, issues[0], `"a"`)
	require.Contains(t, issues[1], "member 2")
	require.Contains(t, issues[1], "empty")
}

func TestValidateMembers_CleanList(t *testing.T) {
	t.Parallel()

	issues := ValidateMembers([]Member{
		{MemberCode: "ONG", MemberName: "Oklahoma Natural Gas"},
		{MemberCode: "OEC", MemberName: "Oklahoma Electric Coop"},
	})
	require.Empty(t, issues)
}
