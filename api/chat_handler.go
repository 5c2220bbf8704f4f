package api

import (
	"errors"
	"net/http"

	"github.com/rpupo63/portfolio-site-backend/chatbot"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatHandler struct {
	responder Responder
	logger    zerolog.Logger
	bot       *chatbot.Bot
}

func newChatHandler(bot *chatbot.Bot) chatHandler {
	logger := log.With().Str("handlerName", "chatHandler").Logger()

	return chatHandler{
		responder: NewResponder(logger),
		logger:    logger,
		bot:       bot,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// GreetingResponse is the first message the chat widget shows
type GreetingResponse struct {
	Greeting string `json:"greeting"`
}

// getGreeting returns the chatbot's opening line
// @Summary Chat greeting
// @Tags Chat
// @Produce json
// @Success 200 {object} GreetingResponse "Greeting"
// @Router /chat [get]
func (h chatHandler) getGreeting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, GreetingResponse{Greeting: h.bot.Greeting()})
	}
}

// answer replies to a visitor question
// @Summary Ask the chatbot
// @Tags Chat
// @Accept json
// @Produce json
// @Param question body chatRequest true "Question"
// @Success 200 {object} chatbot.Reply "Reply"
// @Failure 400 {object} ErrorResponse "Bad Request - Empty message"
// @Router /chat [post]
func (h chatHandler) answer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		reply, err := h.bot.Answer(r.Context(), req.Message)
		if errors.Is(err, chatbot.ErrEmptyMessage) {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("message"))
			return
		}
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("chatbot failed", err))
			return
		}

		chatAnswers.WithLabelValues(reply.Source).Inc()
		h.responder.WriteJSON(w, reply)
	}
}
