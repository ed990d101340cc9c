package handlers

import (
	"net/http"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/openapi"
	"github.com/NehaTanti-afk/Neha-Notes/services/accounts"
	"github.com/NehaTanti-afk/Neha-Notes/services/content"
	"github.com/NehaTanti-afk/Neha-Notes/services/support"
)

const sessionScheme = "session"

type existsResponse struct {
	Exists *bool `json:"exists"`
}

type subjectResponse struct {
	Subject *content.Subject `json:"subject"`
	Papers  []content.Paper  `json:"papers"`
}

type ticketResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// apiDocument describes the JSON routes under /api.
func apiDocument(cfg *config.Config) *openapi.Document {
	doc := openapi.New(cfg.App.Name+" API", "1.0.0").
		Description("Subjects, question papers and support tickets. Paper answers beyond the preview need a signed-in session.").
		Server(cfg.App.URL).
		Tag("auth", "Account lookups").
		Tag("content", "Subjects and question papers").
		Tag("support", "Support tickets").
		CookieAuth(sessionScheme, cfg.Session.Name)

	doc.Route(http.MethodPost, "/api/auth/check-email").
		Summary("Check whether an account exists for an email").
		Tags("auth").
		Body(emailRequest{}).
		Response(http.StatusOK, existsResponse{}, "exists is null when the lookup failed").
		Error(http.StatusBadRequest, "Email missing").
		Add()

	doc.Route(http.MethodGet, "/api/me").
		Summary("The signed-in account").
		Tags("auth").
		RequiresAuth(sessionScheme).
		Response(http.StatusOK, accounts.User{}, "Account").
		Add()

	doc.Route(http.MethodGet, "/api/subjects").
		Summary("List subjects by semester").
		Tags("content").
		Response(http.StatusOK, []content.Subject{}, "Subjects").
		Add()

	doc.Route(http.MethodGet, "/api/subjects/:code").
		Summary("A subject and its papers").
		Tags("content").
		PathParam("code", "Subject code, case-insensitive").
		Response(http.StatusOK, subjectResponse{}, "Subject with paper summaries").
		Error(http.StatusNotFound, "Unknown subject").
		Add()

	doc.Route(http.MethodGet, "/api/subjects/:code/papers/:paperId").
		Summary("A paper, gated for visitors").
		Tags("content").
		PathParam("code", "Subject code").
		PathParam("paperId", "Paper id").
		Response(http.StatusOK, content.PaperView{}, "Paper sections. Visitors see locked question numbers instead of full questions.").
		Error(http.StatusNotFound, "Unknown subject or paper").
		Add()

	doc.Route(http.MethodPost, "/api/support").
		Summary("Submit a support ticket").
		Tags("support").
		Body(support.TicketInput{}).
		Response(http.StatusCreated, ticketResponse{}, "Ticket created").
		Response(http.StatusUnprocessableEntity, ticketResponse{}, "Ticket rejected").
		Add()

	return doc
}
