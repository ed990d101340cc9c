package handlers

import (
	"errors"
	"net/http"

	"github.com/NehaTanti-afk/Neha-Notes/services/support"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/labstack/echo/v4"
)

func (h *Handlers) SubmitTicket(c echo.Context) error {
	var req support.TicketInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	accountID := ""
	if session.IsAuthenticated(c) {
		accountID = session.AccountID(c)
	}

	ticket, err := h.support.Submit(c.Request().Context(), req, accountID)
	switch {
	case err == nil:
	case errors.Is(err, support.ErrFieldsRequired),
		errors.Is(err, support.ErrDescriptionTooShort),
		errors.Is(err, support.ErrInvalidIssueType):
		return c.JSON(http.StatusUnprocessableEntity, ticketResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ticketResponse{Error: "Failed to submit ticket. Please try again."})
	}

	return c.JSON(http.StatusCreated, ticketResponse{Success: true, ID: ticket.ID})
}
