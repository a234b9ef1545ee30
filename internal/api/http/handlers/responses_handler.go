package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/digsafe/locate-ticket-service/internal/api/dto"
	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/service"
	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

// ResponsesHandler manages member response endpoints.
type ResponsesHandler struct {
	responses *service.ResponseService
	tickets   *service.TicketService
}

// NewResponsesHandler constructs handler.
func NewResponsesHandler(responseService *service.ResponseService, ticketService *service.TicketService) *ResponsesHandler {
	return &ResponsesHandler{responses: responseService, tickets: ticketService}
}

// SubmitResponse POST /tickets/:id/responses.
func (h *ResponsesHandler) SubmitResponse(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.MemberCode) == "" || strings.TrimSpace(req.MemberName) == "" {
		return apperrors.NewValidationError("member_code and member_name required", nil)
	}

	input := service.ResponseInput{
		MemberCode: req.MemberCode,
		MemberName: req.MemberName,
		Status:     domain.ResponseStatus(strings.ToUpper(string(req.Status))),
		Facilities: req.Facilities,
		Comment:    req.Comment,
	}
	response, ticket, err := h.responses.SubmitResponse(c.Context(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SubmitResponseResult{
		Response:     responseRecord(response),
		TicketStatus: ticket.Status,
	}})
}

// ListResponses GET /tickets/:id/responses.
func (h *ResponsesHandler) ListResponses(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	records, err := h.tickets.ListResponses(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ResponseRecord, 0, len(records))
	for i := range records {
		items = append(items, responseRecord(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RecomputeStatus POST /tickets/:id/status/recompute (admin only). Re-derives
// the status from the stored response set; retry-safe.
func (h *ResponsesHandler) RecomputeStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, changed, err := h.responses.RecomputeStatus(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_status": ticket.Status,
		"changed":       changed,
	}})
}

func responseRecord(resp *domain.Response) dto.ResponseRecord {
	return dto.ResponseRecord{
		ID:          resp.ID,
		TicketID:    resp.TicketID,
		MemberCode:  resp.MemberCode,
		MemberName:  resp.MemberName,
		Status:      resp.Status,
		Facilities:  resp.Facilities,
		Comment:     resp.Comment,
		SubmittedBy: resp.SubmittedBy,
		SubmittedAt: resp.SubmittedAt,
	}
}
