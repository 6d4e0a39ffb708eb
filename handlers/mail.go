package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"sala2/models"
	"sala2/services/mail"
)

// MailHandler handles contact-form submissions.
type MailHandler struct {
	mail *mail.Service
}

// NewMailHandler creates a new mail handler.
func NewMailHandler(mailSvc *mail.Service) *MailHandler {
	return &MailHandler{mail: mailSvc}
}

// Create validates and stores a contact-form submission.
func (h *MailHandler) Create(w http.ResponseWriter, r *http.Request) {
	var msg models.MailMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := h.mail.Create(msg)
	if err != nil {
		switch {
		case errors.Is(err, mail.ErrNameRequired),
			errors.Is(err, mail.ErrEmailRequired),
			errors.Is(err, mail.ErrEmailInvalid),
			errors.Is(err, mail.ErrSubjectRequired),
			errors.Is(err, mail.ErrTextRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[handlers] store mail failed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to store message")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": stored.ID, "status": "received"})
}
