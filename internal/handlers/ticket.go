// internal/handlers/ticket.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

type TicketHandler struct {
	ticketService *services.TicketService
}

func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// GET /api/tickets
func (h *TicketHandler) ListMine(c *gin.Context) {
	claims, exists := utils.GetClaimsFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tickets, err := h.ticketService.ListForPurchaser(c.Request.Context(), claims.Email)
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, tickets)
}

// GET /api/tickets/:code
func (h *TicketHandler) GetTicket(c *gin.Context) {
	claims, exists := utils.GetClaimsFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	ticket, err := h.ticketService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "")
		return
	}

	// Someone else's ticket is reported as missing.
	if claims.Role != string(models.RoleAdmin) && !strings.EqualFold(ticket.Purchaser, claims.Email) {
		respondError(c, services.ErrTicketNotFound, "")
		return
	}
	utils.SuccessResponse(c, models.NewTicketDTO(ticket))
}
