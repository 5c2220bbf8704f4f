package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const notifyTimeout = 15 * time.Second

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactHandler struct {
	responder   Responder
	logger      zerolog.Logger
	contactRepo *database.ContactMessageRepo
	notifier    *services.Notifier
}

func newContactHandler(contactRepo *database.ContactMessageRepo, notifier *services.Notifier) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		contactRepo: contactRepo,
		notifier:    notifier,
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// firstProblem checks the fields in form order and returns the message for the first bad one
func (c contactRequest) firstProblem() string {
	checks := []struct {
		value   string
		rules   []validation.Rule
		message string
	}{
		{c.Name, []validation.Rule{validation.Required}, "Name is required."},
		{c.Email, []validation.Rule{validation.Required, validation.Match(contactEmailPattern)}, "A valid email is required."},
		{c.Subject, []validation.Rule{validation.Required}, "Subject is required."},
		{c.Message, []validation.Rule{validation.Required}, "Message is required."},
	}
	for _, check := range checks {
		if err := validation.Validate(check.value, check.rules...); err != nil {
			return check.message
		}
	}
	return ""
}

func (c *contactRequest) sanitize() {
	c.Name = sanitizeText(c.Name)
	c.Email = sanitizeText(c.Email)
	c.Subject = sanitizeText(c.Subject)
	c.Message = sanitizeText(c.Message)
}

// ContactResponse is returned after a message is stored
type ContactResponse struct {
	Success bool                   `json:"success"`
	Data    *models.ContactMessage `json:"data"`
}

// notifyOwner delivers n in the background; the request never waits for it
func notifyOwner(logger zerolog.Logger, notifier *services.Notifier, parent context.Context, n services.Notification) {
	if !notifier.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), notifyTimeout)
		defer cancel()
		if err := notifier.Notify(ctx, n); err != nil {
			logger.Error().Err(err).Str("subject", n.Subject).Msg("Owner notification failed")
		}
	}()
}

// submitMessage stores a contact form submission
// @Summary Submit contact message
// @Description Validates and stores a contact form message, then notifies the owner
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body contactRequest true "Contact form"
// @Success 200 {object} ContactResponse "Stored message"
// @Failure 400 {object} map[string]string "First validation problem"
// @Failure 500 {object} map[string]string "Failed to save message."
// @Router /contact [post]
func (h contactHandler) submitMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		// A body that does not decode is treated as an empty form
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxJSONBodySize))
				return
			}
		}
		if err := json.Unmarshal(body, &req); err != nil {
			req = contactRequest{}
		}

		req.sanitize()
		if problem := req.firstProblem(); problem != "" {
			h.responder.WriteMessage(w, http.StatusBadRequest, problem)
			return
		}

		msg := &models.ContactMessage{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
		}
		if err := h.contactRepo.Add(r.Context(), msg); err != nil {
			h.logger.Error().Err(err).Msg("Failed to insert contact message")
			h.responder.WriteMessage(w, http.StatusInternalServerError, "Failed to save message.")
			return
		}

		notifyOwner(h.logger, h.notifier, r.Context(), h.notifier.NewMessageNotification(msg))

		h.responder.WriteJSON(w, ContactResponse{Success: true, Data: msg})
	}
}

// getMessages lists contact messages, newest first
// @Summary Get contact messages
// @Tags Contact
// @Produce json
// @Param unread query bool false "Only unread messages"
// @Success 200 {array} models.ContactMessage "Messages"
// @Router /admin/messages [get]
func (h contactHandler) getMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

		messages, err := h.contactRepo.FindAll(r.Context(), unreadOnly)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact messages", err))
			return
		}
		if messages == nil {
			messages = []*models.ContactMessage{}
		}
		h.responder.WriteJSON(w, messages)
	}
}

type markReadRequest struct {
	Read *bool `json:"read"`
}

// markMessage sets the read flag of a message
// @Summary Mark contact message read or unread
// @Tags Contact
// @Accept json
// @Produce json
// @Param messageID path string true "Message ID" format(uuid)
// @Param body body markReadRequest true "Read flag"
// @Success 200 {object} models.ContactMessage "Updated message"
// @Failure 404 {object} ErrorResponse "Not Found - Message not found"
// @Router /admin/message/{messageID} [patch]
func (h contactHandler) markMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, err := urlID(r, "messageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req markReadRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Read == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("read"))
			return
		}

		msg, err := h.contactRepo.SetRead(r.Context(), messageID, *req.Read)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "contact message", err))
			return
		}
		h.responder.WriteJSON(w, msg)
	}
}

// deleteMessage deletes a contact message
// @Summary Delete contact message
// @Tags Contact
// @Produce json
// @Param messageID path string true "Message ID" format(uuid)
// @Success 200 {object} DeleteResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Message not found"
// @Router /admin/message/{messageID} [delete]
func (h contactHandler) deleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, err := urlID(r, "messageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.contactRepo.Delete(r.Context(), messageID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "contact message", err))
			return
		}

		h.responder.WriteJSON(w, DeleteResponse{
			Status:  "success",
			Message: fmt.Sprintf("contact message %s deleted", messageID),
		})
	}
}

// exportMessages streams every message as an XLSX workbook
// @Summary Export contact messages
// @Tags Contact
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "messages.xlsx"
// @Router /admin/messages/export [get]
func (h contactHandler) exportMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := h.contactRepo.FindAll(r.Context(), false)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact messages", err))
			return
		}

		book, err := messagesWorkbook(messages)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to build export", err))
			return
		}
		writeWorkbook(w, h.logger, "messages.xlsx", book)
	}
}
