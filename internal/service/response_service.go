package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/digsafe/locate-ticket-service/internal/cache"
	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/events"
	"github.com/digsafe/locate-ticket-service/internal/repository"
	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

// ResponseService handles response ingestion: ensuring the responding member
// is tracked, appending the response record, and recomputing the ticket's
// status from the full response set.
type ResponseService struct {
	tickets     repository.TicketRepository
	responses   repository.ResponseRepository
	history     repository.TicketHistoryRepository
	ticketCache *cache.TicketCache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// ResponseDependencies bundles collaborators for response service.
type ResponseDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.ResponseRepository
	HistoryRepo  repository.TicketHistoryRepository
	TicketCache  *cache.TicketCache
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// ResponseInput describes a submitted response payload.
type ResponseInput struct {
	MemberCode string
	MemberName string
	Status     domain.ResponseStatus
	Facilities *string
	Comment    *string
}

// NewResponseService constructs the service.
func NewResponseService(deps ResponseDependencies) *ResponseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseService{
		tickets:     deps.TicketRepo,
		responses:   deps.ResponseRepo,
		history:     deps.HistoryRepo,
		ticketCache: deps.TicketCache,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// SubmitResponse applies one member response to a ticket. The member is
// ensured into the registry first so the recomputed status counts it as
// expected; the ticket is persisted only when the aggregate actually changed,
// so retrying the same facts never writes twice.
func (s *ResponseService) SubmitResponse(ctx context.Context, actor Actor, ticketID string, input ResponseInput) (*domain.Response, *domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.Status == domain.TicketStatusCancelled {
		return nil, nil, apperrors.NewConflict("ticket is cancelled", nil)
	}
	if actor.Role == domain.RoleMember && !strings.EqualFold(actor.MemberCode, input.MemberCode) {
		return nil, nil, apperrors.NewForbidden("members may only respond under their own member code")
	}
	if !validResponseStatus(input.Status) {
		return nil, nil, apperrors.NewValidationError("invalid response status", map[string]any{"status": input.Status})
	}

	updated, added, err := domain.EnsureMember(*ticket, input.MemberCode, input.MemberName)
	if err != nil {
		return nil, nil, err
	}

	response := &domain.Response{
		TicketID:    ticket.ID,
		MemberCode:  input.MemberCode,
		MemberName:  input.MemberName,
		Status:      input.Status,
		Facilities:  input.Facilities,
		Comment:     input.Comment,
		SubmittedBy: actor.UserID,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, nil, err
	}

	allResponses, err := s.responses.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}

	oldStatus := updated.Status
	next, changed := domain.UpdateStatusWithResponses(updated, allResponses)
	if added || changed {
		if err := s.tickets.Update(ctx, &next); err != nil {
			return nil, nil, err
		}
		s.ticketCache.Invalidate(ctx, next.ID)
	}

	if added {
		s.recordMemberDiscovered(ctx, actor, next.ID, input.MemberCode, input.MemberName)
	}
	if changed {
		summary := domain.TransitionSummary(oldStatus, next.Status, len(allResponses), len(next.Members))
		s.logger.Info("ticket status recomputed",
			zap.String("ticket_id", next.ID),
			zap.String("ticket_number", next.TicketNumber),
			zap.String("summary", summary),
		)
		s.recordStatusChange(ctx, actor, next.ID, oldStatus, next.Status, summary)
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: next.ID,
			Actor:    userActor(actor.UserID, actor.Role),
			Payload: events.TicketStatusChangedPayload{
				OldStatus:     oldStatus,
				NewStatus:     next.Status,
				ResponseCount: len(allResponses),
				ExpectedCount: len(next.Members),
				Summary:       summary,
			},
		})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventResponseReceived,
		TicketID: next.ID,
		Actor:    userActor(actor.UserID, actor.Role),
		Payload: events.ResponseReceivedPayload{
			ResponseID: response.ID,
			MemberCode: response.MemberCode,
			Status:     response.Status,
		},
	})
	return response, &next, nil
}

// RecomputeStatus re-derives the ticket status from the stored response set
// without adding a response. Safe to call repeatedly; it persists only on a
// genuine transition.
func (s *ResponseService) RecomputeStatus(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, bool, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, false, err
	}
	allResponses, err := s.responses.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, false, err
	}

	oldStatus := ticket.Status
	next, changed := domain.UpdateStatusWithResponses(*ticket, allResponses)
	if !changed {
		return ticket, false, nil
	}
	if err := s.tickets.Update(ctx, &next); err != nil {
		return nil, false, err
	}
	s.ticketCache.Invalidate(ctx, next.ID)

	summary := domain.TransitionSummary(oldStatus, next.Status, len(allResponses), len(next.Members))
	s.recordStatusChange(ctx, actor, next.ID, oldStatus, next.Status, summary)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: next.ID,
		Actor:    userActor(actor.UserID, actor.Role),
		Payload: events.TicketStatusChangedPayload{
			OldStatus:     oldStatus,
			NewStatus:     next.Status,
			ResponseCount: len(allResponses),
			ExpectedCount: len(next.Members),
			Summary:       summary,
		},
	})
	return &next, true, nil
}

func validResponseStatus(status domain.ResponseStatus) bool {
	switch status {
	case domain.ResponseStatusClear, domain.ResponseStatusNotClear, domain.ResponseStatusNotYetClear:
		return true
	}
	return false
}

func (s *ResponseService) recordStatusChange(ctx context.Context, actor Actor, ticketID string, oldStatus, newStatus domain.TicketStatus, summary string) {
	if s.history == nil {
		return
	}
	actorID := actor.UserID
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: domain.ActorTypeSystem,
		ChangedByID:   &actorID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue:      map[string]any{"status": oldStatus},
		NewValue:      map[string]any{"status": newStatus, "summary": summary},
	}
	_ = s.history.Create(ctx, entry)
}

func (s *ResponseService) recordMemberDiscovered(ctx context.Context, actor Actor, ticketID, code, name string) {
	if s.history != nil {
		actorID := actor.UserID
		entry := &domain.TicketHistory{
			TicketID:      ticketID,
			ChangedByType: domain.ActorTypeSystem,
			ChangedByID:   &actorID,
			ChangeType:    domain.ChangeTypeMember,
			OldValue:      map[string]any{},
			NewValue:      map[string]any{"member_code": code, "action": "auto_discovered"},
		}
		_ = s.history.Create(ctx, entry)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventMemberAdded,
		TicketID: ticketID,
		Actor:    userActor(actor.UserID, actor.Role),
		Payload: events.MemberAddedPayload{
			MemberCode:     code,
			MemberName:     name,
			AutoDiscovered: true,
		},
	})
}

func (s *ResponseService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}
