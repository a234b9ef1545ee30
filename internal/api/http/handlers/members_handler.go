package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/digsafe/locate-ticket-service/internal/api/dto"
	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/service"
	apperrors "github.com/digsafe/locate-ticket-service/pkg/errorutil"
)

// MembersHandler manages a ticket's expected-member registry.
type MembersHandler struct {
	service *service.TicketService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(ticketService *service.TicketService) *MembersHandler {
	return &MembersHandler{service: ticketService}
}

// UpdateContact PATCH /tickets/:id/members/:code.
func (h *MembersHandler) UpdateContact(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMemberContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	patch := domain.MemberContactPatch{
		Phone:  req.ContactPhone,
		Email:  req.ContactEmail,
		Active: req.IsActive,
	}
	ticket, err := h.service.UpdateMemberContact(c.Context(), actor, c.Params("id"), c.Params("code"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Remove DELETE /tickets/:id/members/:code.
func (h *MembersHandler) Remove(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.RemoveMember(c.Context(), actor, c.Params("id"), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Summary GET /tickets/:id/members/summary.
func (h *MembersHandler) Summary(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	summary, err := h.service.MemberSummary(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MemberSummaryResponse{
		Total:     summary.Total,
		Active:    summary.Active,
		Inactive:  summary.Inactive,
		WithPhone: summary.WithPhone,
		WithEmail: summary.WithEmail,
	}})
}

// Validate GET /tickets/:id/members/validate.
func (h *MembersHandler) Validate(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	issues, err := h.service.ValidateMemberList(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []string{}
	}
	return c.JSON(fiber.Map{"data": dto.MemberValidationResponse{Issues: issues}})
}
