package handlers

import (
	"errors"
	"net/http"

	"github.com/NehaTanti-afk/Neha-Notes/services/content"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/labstack/echo/v4"
)

func contentError(err error) error {
	switch {
	case errors.Is(err, content.ErrSubjectNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Subject not found")
	case errors.Is(err, content.ErrPaperNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Paper not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load content")
	}
}

func (h *Handlers) ListSubjects(c echo.Context) error {
	subjects, err := h.content.ListSubjects(c.Request().Context())
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, subjects)
}

func (h *Handlers) Subject(c echo.Context) error {
	ctx := c.Request().Context()

	subject, err := h.content.SubjectByCode(ctx, c.Param("code"))
	if err != nil {
		return contentError(err)
	}

	papers, err := h.content.PapersForSubject(ctx, subject.ID)
	if err != nil {
		return contentError(err)
	}

	return c.JSON(http.StatusOK, subjectResponse{Subject: subject, Papers: papers})
}

// Paper serves a paper gated for the reader: visitors only get preview
// questions and their answers.
func (h *Handlers) Paper(c echo.Context) error {
	view, err := h.content.View(c.Request().Context(), c.Param("code"), c.Param("paperId"), session.IsAuthenticated(c))
	if err != nil {
		return contentError(err)
	}
	return c.JSON(http.StatusOK, view)
}
