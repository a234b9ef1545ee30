package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/events"
	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	responses  *fakeResponseRepo
	history    *fakeHistoryRepo
	dispatcher *recordingDispatcher
}

func newTicketFixture() *ticketFixture {
	tickets := newFakeTicketRepo()
	responses := newFakeResponseRepo()
	history := newFakeHistoryRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		ResponseRepo: responses,
		HistoryRepo:  history,
		Dispatcher:   dispatcher,
	})
	return &ticketFixture{
		service:    svc,
		tickets:    tickets,
		responses:  responses,
		history:    history,
		dispatcher: dispatcher,
	}
}

func excavatorActor(userID string) Actor {
	return Actor{UserID: userID, Role: domain.RoleExcavator}
}

func TestCreateTicketAssignsNumberAndStatus(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	ticket, err := fx.service.CreateTicket(context.Background(), "excavator-1", TicketCreateInput{
		WorkDescription: "trenching for fiber conduit",
		SiteAddress:     "100 Main St",
		SiteCity:        "Springfield",
		Members: []MemberInput{
			{Code: "GASCO", Name: "Gas Company"},
			{Code: "WATERCO", Name: "Water Utility"},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ticket.TicketNumber, "LOC-"))
	require.Len(t, ticket.TicketNumber, 12)
	require.Equal(t, domain.TicketStatusSubmitted, ticket.Status)
	require.Len(t, ticket.Members, 2)

	created := fx.dispatcher.byType(events.EventTicketCreated)
	require.Len(t, created, 1)
}

func TestCreateTicketRejectsDuplicateMemberCodes(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	_, err := fx.service.CreateTicket(context.Background(), "excavator-1", TicketCreateInput{
		WorkDescription: "pole replacement",
		SiteAddress:     "200 Oak Ave",
		Members: []MemberInput{
			{Code: "GASCO", Name: "Gas Company"},
			{Code: "gasco", Name: "Gas Company Again"},
		},
	})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	require.Contains(t, domainErr.Details, "issues")
}

func TestCreateTicketRejectsBlankMemberName(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	_, err := fx.service.CreateTicket(context.Background(), "excavator-1", TicketCreateInput{
		WorkDescription: "sewer lateral repair",
		SiteAddress:     "300 Elm St",
		Members:         []MemberInput{{Code: "GASCO", Name: "  "}},
	})
	require.Error(t, err)
	require.True(t, apperrors.IsInvalidArgument(err))
}

func TestCancelTicketIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-CANCEL01",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusInProgress,
	})

	ctx := context.Background()
	cancelled, err := fx.service.CancelTicket(ctx, excavatorActor("excavator-1"), ticket.ID, "work postponed")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	writes := fx.tickets.updateCount()
	again, err := fx.service.CancelTicket(ctx, excavatorActor("excavator-1"), ticket.ID, "work postponed")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCancelled, again.Status)
	require.Equal(t, writes, fx.tickets.updateCount())

	cancelledEvents := fx.dispatcher.byType(events.EventTicketCancelled)
	require.Len(t, cancelledEvents, 1)
}

func TestCancelTicketForbiddenForOtherExcavator(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-CANCEL02",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
	})

	_, err := fx.service.CancelTicket(context.Background(), excavatorActor("excavator-2"), ticket.ID, "")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestGetTicketByNumberNormalizesInput(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-ABCD1234",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
	})

	ticket, err := fx.service.GetTicketByNumber(context.Background(), excavatorActor("excavator-1"), " loc-abcd1234 ")
	require.NoError(t, err)
	require.Equal(t, "LOC-ABCD1234", ticket.TicketNumber)

	_, err = fx.service.GetTicketByNumber(context.Background(), excavatorActor("excavator-2"), "LOC-ABCD1234")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestListTicketsScopesExcavatorToOwnTickets(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	fx.tickets.seed(domain.Ticket{TicketNumber: "LOC-LIST0001", ExcavatorID: "excavator-1", Status: domain.TicketStatusSubmitted})
	fx.tickets.seed(domain.Ticket{TicketNumber: "LOC-LIST0002", ExcavatorID: "excavator-2", Status: domain.TicketStatusSubmitted})

	result, err := fx.service.ListTickets(context.Background(), excavatorActor("excavator-1"), TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "LOC-LIST0001", result[0].TicketNumber)

	result, err = fx.service.ListTickets(context.Background(), adminActor(), TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Nil(t, fx.tickets.lastFilter.ExcavatorID)
}

func TestUpdateMemberContactUnknownCodeIsNoop(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-MEMBER01",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members:      trackedMembers("GASCO"),
	})

	phone := "555-0100"
	result, err := fx.service.UpdateMemberContact(context.Background(), adminActor(), ticket.ID, "NOSUCH", domain.MemberContactPatch{Phone: &phone})
	require.NoError(t, err)
	require.Len(t, result.Members, 1)
	require.Zero(t, fx.tickets.updateCount())
}

func TestUpdateMemberContactPatchesOnlySuppliedFields(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	email := "dispatch@gasco.example"
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-MEMBER02",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members: []domain.Member{
			{MemberCode: "GASCO", MemberName: "Gas Company", ContactEmail: &email, IsActive: true},
		},
	})

	phone := "555-0100"
	result, err := fx.service.UpdateMemberContact(context.Background(), adminActor(), ticket.ID, "gasco", domain.MemberContactPatch{Phone: &phone})
	require.NoError(t, err)

	member, ok := domain.FindMember("GASCO", result.Members)
	require.True(t, ok)
	require.NotNil(t, member.ContactPhone)
	require.Equal(t, "555-0100", *member.ContactPhone)
	require.NotNil(t, member.ContactEmail)
	require.Equal(t, "dispatch@gasco.example", *member.ContactEmail)

	memberChanges := fx.history.byChangeType(domain.ChangeTypeMember)
	require.Len(t, memberChanges, 1)
}

func TestRemoveMemberIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-MEMBER03",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members:      trackedMembers("GASCO", "WATERCO"),
	})

	ctx := context.Background()
	result, err := fx.service.RemoveMember(ctx, adminActor(), ticket.ID, "WATERCO")
	require.NoError(t, err)
	require.Len(t, result.Members, 1)

	writes := fx.tickets.updateCount()
	result, err = fx.service.RemoveMember(ctx, adminActor(), ticket.ID, "WATERCO")
	require.NoError(t, err)
	require.Len(t, result.Members, 1)
	require.Equal(t, writes, fx.tickets.updateCount())
}

func TestMemberSummaryAggregatesCounts(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture()
	phone := "555-0100"
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-MEMBER04",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members: []domain.Member{
			{MemberCode: "GASCO", MemberName: "Gas Company", ContactPhone: &phone, IsActive: true},
			{MemberCode: "WATERCO", MemberName: "Water Utility", IsActive: false},
		},
	})

	summary, err := fx.service.MemberSummary(context.Background(), adminActor(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Total)
	require.Equal(t, 1, summary.Active)
	require.Equal(t, 1, summary.Inactive)
	require.Equal(t, 1, summary.WithPhone)
	require.Equal(t, 0, summary.WithEmail)
}
