package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digsafe/locate-ticket-service/internal/cache"
	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/events"
	"github.com/digsafe/locate-ticket-service/internal/repository"
	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

// Actor identifies the authenticated caller for service operations.
type Actor struct {
	UserID     string
	Role       domain.UserRole
	MemberCode string
}

// TicketService coordinates locate ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	responses   repository.ResponseRepository
	history     repository.TicketHistoryRepository
	ticketCache *cache.TicketCache
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.ResponseRepository
	HistoryRepo  repository.TicketHistoryRepository
	TicketCache  *cache.TicketCache
	Dispatcher   events.Dispatcher
}

// MemberInput names a known member at ticket creation.
type MemberInput struct {
	Code string
	Name string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	WorkType        string
	WorkDescription string
	SiteAddress     string
	SiteCity        string
	SiteCounty      string
	SiteState       string
	Members         []MemberInput
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	SiteCity    *string
	SiteCounty  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		responses:   deps.ResponseRepo,
		history:     deps.HistoryRepo,
		ticketCache: deps.TicketCache,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket opens a locate ticket with its known member list. The member
// list is validated up front; diagnostics reject creation.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	members := make([]domain.Member, 0, len(input.Members))
	for _, m := range input.Members {
		members = append(members, domain.Member{
			MemberCode: m.Code,
			MemberName: m.Name,
			IsActive:   true,
		})
	}
	if issues := domain.ValidateMembers(members); len(issues) > 0 {
		return nil, apperrors.NewValidationError("invalid member list", map[string]any{"issues": issues})
	}
	for _, m := range members {
		if strings.TrimSpace(m.MemberName) == "" {
			return nil, apperrors.NewInvalidArgument("member name must not be blank", map[string]any{"member_code": m.MemberCode})
		}
	}

	ticket := &domain.Ticket{
		TicketNumber:    generateTicketNumber(),
		ExcavatorID:     userID,
		WorkType:        strings.TrimSpace(input.WorkType),
		WorkDescription: strings.TrimSpace(input.WorkDescription),
		SiteAddress:     strings.TrimSpace(input.SiteAddress),
		SiteCity:        strings.TrimSpace(input.SiteCity),
		SiteCounty:      strings.TrimSpace(input.SiteCounty),
		SiteState:       strings.TrimSpace(input.SiteState),
		Status:          domain.TicketStatusSubmitted,
		Members:         members,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(userID, domain.RoleExcavator),
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			WorkType:     ticket.WorkType,
			SiteCity:     ticket.SiteCity,
			MemberCount:  len(ticket.Members),
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with access control, serving cached aggregates
// when available.
func (s *TicketService) GetTicket(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	if ticket, ok := s.ticketCache.Get(ctx, ticketID); ok {
		if err := s.canViewTicket(actor, ticket); err != nil {
			return nil, err
		}
		return ticket, nil
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	s.ticketCache.Set(ctx, ticket)
	return ticket, nil
}

// GetTicketByNumber resolves a ticket by its human-facing number.
func (s *TicketService) GetTicketByNumber(ctx context.Context, actor Actor, ticketNumber string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(ticketNumber)))
	if err != nil {
		return nil, err
	}
	if err := s.canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// CountResponses returns the number of responses filed against a ticket.
func (s *TicketService) CountResponses(ctx context.Context, actor Actor, ticketID string) (int, error) {
	ticket, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return 0, err
	}
	return s.responses.CountByTicket(ctx, ticket.ID)
}

// ListTickets returns tickets visible to the actor. Excavators only see
// their own tickets.
func (s *TicketService) ListTickets(ctx context.Context, actor Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		SiteCity:    filter.SiteCity,
		SiteCounty:  filter.SiteCounty,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if actor.Role == domain.RoleExcavator {
		userID := actor.UserID
		repoFilter.ExcavatorID = &userID
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// CancelTicket marks a ticket cancelled. Cancelling an already cancelled
// ticket is a no-op.
func (s *TicketService) CancelTicket(ctx context.Context, actor Actor, ticketID, reason string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.canManageTicket(actor, ticket); err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusCancelled {
		return ticket, nil
	}

	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = domain.TicketStatusCancelled
	ticket.CancelledAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.ticketCache.Invalidate(ctx, ticket.ID)

	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypeCancelled,
		map[string]any{"status": oldStatus},
		map[string]any{"status": ticket.Status, "reason": reason})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCancelled,
		TicketID: ticket.ID,
		Actor:    userActor(actor.UserID, actor.Role),
		Payload:  events.TicketCancelledPayload{Reason: reason},
	})
	return ticket, nil
}

// UpdateMemberContact patches contact info on a tracked member. An unknown
// code is a best-effort no-op, mirroring the registry contract.
func (s *TicketService) UpdateMemberContact(ctx context.Context, actor Actor, ticketID, code string, patch domain.MemberContactPatch) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.IsMemberPresent(code, ticket.Members) {
		return ticket, nil
	}
	updated := domain.UpdateMemberContact(*ticket, code, patch)
	if err := s.tickets.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.ticketCache.Invalidate(ctx, updated.ID)
	s.recordHistory(ctx, actor, updated.ID, domain.ChangeTypeMember,
		map[string]any{"member_code": code},
		map[string]any{"member_code": code, "action": "contact_updated"})
	return &updated, nil
}

// RemoveMember drops a member from the expected list. Removing an unknown
// code is idempotent.
func (s *TicketService) RemoveMember(ctx context.Context, actor Actor, ticketID, code string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.IsMemberPresent(code, ticket.Members) {
		return ticket, nil
	}
	updated := domain.RemoveMember(*ticket, code)
	if err := s.tickets.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.ticketCache.Invalidate(ctx, updated.ID)
	s.recordHistory(ctx, actor, updated.ID, domain.ChangeTypeMember,
		map[string]any{"member_code": code},
		map[string]any{"member_code": code, "action": "removed"})
	return &updated, nil
}

// MemberSummary returns aggregate counts over the ticket's member list.
func (s *TicketService) MemberSummary(ctx context.Context, actor Actor, ticketID string) (domain.MemberSummary, error) {
	ticket, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return domain.MemberSummary{}, err
	}
	return domain.SummarizeMembers(*ticket), nil
}

// ValidateMemberList reports diagnostics for the ticket's member list.
func (s *TicketService) ValidateMemberList(ctx context.Context, actor Actor, ticketID string) ([]string, error) {
	ticket, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	return domain.ValidateMembers(ticket.Members), nil
}

// ListResponses returns the responses filed against a ticket.
func (s *TicketService) ListResponses(ctx context.Context, actor Actor, ticketID string) ([]domain.Response, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	return s.responses.ListByTicket(ctx, ticket.ID)
}

// ListHistory returns audit entries for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, actor Actor, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticket.ID, limit, offset)
}

func (s *TicketService) canViewTicket(actor Actor, ticket *domain.Ticket) error {
	if actor.Role == domain.RoleExcavator && ticket.ExcavatorID != actor.UserID {
		return apperrors.NewForbidden("access denied")
	}
	return nil
}

func (s *TicketService) canManageTicket(actor Actor, ticket *domain.Ticket) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if ticket.ExcavatorID != actor.UserID {
		return apperrors.NewForbidden("access denied")
	}
	return nil
}

func (s *TicketService) recordHistory(ctx context.Context, actor Actor, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	actorID := actor.UserID
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: domain.ActorTypeUser,
		ChangedByID:   &actorID,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	_ = s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

func generateTicketNumber() string {
	return "LOC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func userActor(userID string, role domain.UserRole) events.Actor {
	return events.Actor{UserID: &userID, Role: role}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
