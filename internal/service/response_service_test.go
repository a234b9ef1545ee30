package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/events"
	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

type responseFixture struct {
	service    *ResponseService
	tickets    *fakeTicketRepo
	responses  *fakeResponseRepo
	history    *fakeHistoryRepo
	dispatcher *recordingDispatcher
}

func newResponseFixture() *responseFixture {
	tickets := newFakeTicketRepo()
	responses := newFakeResponseRepo()
	history := newFakeHistoryRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewResponseService(ResponseDependencies{
		TicketRepo:   tickets,
		ResponseRepo: responses,
		HistoryRepo:  history,
		Dispatcher:   dispatcher,
	})
	return &responseFixture{
		service:    svc,
		tickets:    tickets,
		responses:  responses,
		history:    history,
		dispatcher: dispatcher,
	}
}

func adminActor() Actor {
	return Actor{UserID: "admin-1", Role: domain.RoleAdmin}
}

func memberActor(code string) Actor {
	return Actor{UserID: "member-1", Role: domain.RoleMember, MemberCode: code}
}

func trackedMembers(codes ...string) []domain.Member {
	members := make([]domain.Member, 0, len(codes))
	for _, code := range codes {
		members = append(members, domain.Member{MemberCode: code, MemberName: "Utility " + code, IsActive: true})
	}
	return members
}

func TestSubmitResponseProgressesThroughExpectedMembers(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0001",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members:      trackedMembers("GASCO", "WATERCO", "ELECCO"),
	})

	ctx := context.Background()

	_, updated, err := fx.service.SubmitResponse(ctx, memberActor("GASCO"), ticket.ID, ResponseInput{
		MemberCode: "GASCO", MemberName: "Utility GASCO", Status: domain.ResponseStatusClear,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)

	_, updated, err = fx.service.SubmitResponse(ctx, memberActor("WATERCO"), ticket.ID, ResponseInput{
		MemberCode: "WATERCO", MemberName: "Utility WATERCO", Status: domain.ResponseStatusNotClear,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)

	_, updated, err = fx.service.SubmitResponse(ctx, memberActor("ELECCO"), ticket.ID, ResponseInput{
		MemberCode: "ELECCO", MemberName: "Utility ELECCO", Status: domain.ResponseStatusClear,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResponsesIn, updated.Status)

	statusEvents := fx.dispatcher.byType(events.EventTicketStatusChanged)
	require.Len(t, statusEvents, 2)
	received := fx.dispatcher.byType(events.EventResponseReceived)
	require.Len(t, received, 3)
}

func TestSubmitResponseAutoDiscoversMember(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0002",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members:      trackedMembers("GASCO"),
	})

	ctx := context.Background()
	_, updated, err := fx.service.SubmitResponse(ctx, memberActor("TELCO"), ticket.ID, ResponseInput{
		MemberCode: "TELCO", MemberName: "Telco Fiber", Status: domain.ResponseStatusClear,
	})
	require.NoError(t, err)

	require.Len(t, updated.Members, 2)
	require.True(t, domain.IsMemberPresent("telco", updated.Members))
	// 1 of 2 responded.
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)

	stored, err := fx.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 2)

	added := fx.dispatcher.byType(events.EventMemberAdded)
	require.Len(t, added, 1)
	memberChanges := fx.history.byChangeType(domain.ChangeTypeMember)
	require.Len(t, memberChanges, 1)
}

func TestSubmitResponseCaseInsensitiveCodeDoesNotDuplicate(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0003",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members:      trackedMembers("GASCO"),
	})

	_, updated, err := fx.service.SubmitResponse(context.Background(), memberActor("gasco"), ticket.ID, ResponseInput{
		MemberCode: "gasco", MemberName: "Utility GASCO", Status: domain.ResponseStatusClear,
	})
	require.NoError(t, err)
	require.Len(t, updated.Members, 1)
	require.Equal(t, domain.TicketStatusResponsesIn, updated.Status)
}

func TestSubmitResponseRejectsBlankMemberCode(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0004",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
	})

	_, _, err := fx.service.SubmitResponse(context.Background(), adminActor(), ticket.ID, ResponseInput{
		MemberCode: "   ", MemberName: "Nameless", Status: domain.ResponseStatusClear,
	})
	require.Error(t, err)
	require.True(t, apperrors.IsInvalidArgument(err))
}

func TestSubmitResponseForeignCodeForbidden(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0005",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members:      trackedMembers("GASCO", "WATERCO"),
	})

	_, _, err := fx.service.SubmitResponse(context.Background(), memberActor("GASCO"), ticket.ID, ResponseInput{
		MemberCode: "WATERCO", MemberName: "Utility WATERCO", Status: domain.ResponseStatusClear,
	})
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestSubmitResponseCancelledTicketConflict(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0006",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusCancelled,
	})

	_, _, err := fx.service.SubmitResponse(context.Background(), adminActor(), ticket.ID, ResponseInput{
		MemberCode: "GASCO", MemberName: "Utility GASCO", Status: domain.ResponseStatusClear,
	})
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestSubmitResponseInvalidStatusRejected(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0007",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
	})

	_, _, err := fx.service.SubmitResponse(context.Background(), adminActor(), ticket.ID, ResponseInput{
		MemberCode: "GASCO", MemberName: "Utility GASCO", Status: domain.ResponseStatus("MAYBE"),
	})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestRecomputeStatusIsRetrySafe(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0008",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
		Members:      trackedMembers("GASCO"),
	})

	ctx := context.Background()
	_, _, err := fx.service.SubmitResponse(ctx, memberActor("GASCO"), ticket.ID, ResponseInput{
		MemberCode: "GASCO", MemberName: "Utility GASCO", Status: domain.ResponseStatusClear,
	})
	require.NoError(t, err)
	writesAfterSubmit := fx.tickets.updateCount()

	updated, changed, err := fx.service.RecomputeStatus(ctx, adminActor(), ticket.ID)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, domain.TicketStatusResponsesIn, updated.Status)
	require.Equal(t, writesAfterSubmit, fx.tickets.updateCount())
}

func TestSubmitResponseLegacyTicketWithoutMembers(t *testing.T) {
	t.Parallel()

	fx := newResponseFixture()
	ticket := fx.tickets.seed(domain.Ticket{
		TicketNumber: "LOC-TEST0009",
		ExcavatorID:  "excavator-1",
		Status:       domain.TicketStatusSubmitted,
	})

	// The responder is ensured into the list first, so the ticket moves to
	// the tracked regime with one expected member and one response.
	_, updated, err := fx.service.SubmitResponse(context.Background(), memberActor("GASCO"), ticket.ID, ResponseInput{
		MemberCode: "GASCO", MemberName: "Utility GASCO", Status: domain.ResponseStatusNotYetClear,
	})
	require.NoError(t, err)
	require.Len(t, updated.Members, 1)
	require.Equal(t, domain.TicketStatusResponsesIn, updated.Status)
}
