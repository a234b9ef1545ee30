package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/digsafe/locate-ticket-service/internal/api/dto"
	"github.com/digsafe/locate-ticket-service/internal/auth"
	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/service"
	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

// TicketsHandler manages locate ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.WorkDescription) == "" || strings.TrimSpace(req.SiteAddress) == "" {
		return apperrors.NewValidationError("work_description and site_address required", nil)
	}

	input := service.TicketCreateInput{
		WorkType:        req.WorkType,
		WorkDescription: req.WorkDescription,
		SiteAddress:     req.SiteAddress,
		SiteCity:        req.SiteCity,
		SiteCounty:      req.SiteCounty,
		SiteState:       req.SiteState,
	}
	for _, m := range req.Members {
		input.Members = append(input.Members, service.MemberInput{Code: m.MemberCode, Name: m.MemberName})
	}
	ticket, err := h.service.CreateTicket(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.Context(), actor, parseTicketListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	count, err := h.service.CountResponses(c.Context(), actor, ticket.ID)
	if err != nil {
		return err
	}
	detail := ticketDetail(ticket)
	detail.ResponseCount = &count
	return c.JSON(fiber.Map{"data": detail})
}

// GetTicketByNumber GET /tickets/number/:number.
func (h *TicketsHandler) GetTicketByNumber(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicketByNumber(c.Context(), actor, c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CancelTicketRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CancelTicket(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit := parseInt(c.Query("limit"), 50)
	offset := parseInt(c.Query("offset"), 0)
	entries, err := h.service.ListHistory(c.Context(), actor, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketHistoryResponse{
			ID:            entry.ID,
			ChangeType:    entry.ChangeType,
			ChangedByType: entry.ChangedByType,
			ChangedByID:   entry.ChangedByID,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{
		UserID:     principal.User.ID,
		Role:       principal.Role,
		MemberCode: principal.MemberCode(),
	}, nil
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if city := c.Query("site_city"); city != "" {
		filter.SiteCity = &city
	}
	if county := c.Query("site_county"); county != "" {
		filter.SiteCounty = &county
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if page <= 0 {
		page = 1
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		WorkType:     ticket.WorkType,
		SiteAddress:  ticket.SiteAddress,
		SiteCity:     ticket.SiteCity,
		SiteCounty:   ticket.SiteCounty,
		SiteState:    ticket.SiteState,
		Status:       ticket.Status,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	members := make([]dto.MemberResponse, 0, len(ticket.Members))
	for _, m := range ticket.Members {
		members = append(members, dto.MemberResponse{
			MemberCode:   m.MemberCode,
			MemberName:   m.MemberName,
			ContactPhone: m.ContactPhone,
			ContactEmail: m.ContactEmail,
			IsActive:     m.IsActive,
		})
	}
	return dto.TicketDetailResponse{
		ID:              ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		WorkType:        ticket.WorkType,
		WorkDescription: ticket.WorkDescription,
		SiteAddress:     ticket.SiteAddress,
		SiteCity:        ticket.SiteCity,
		SiteCounty:      ticket.SiteCounty,
		SiteState:       ticket.SiteState,
		Status:          ticket.Status,
		Members:         members,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		CancelledAt:     ticket.CancelledAt,
	}
}
