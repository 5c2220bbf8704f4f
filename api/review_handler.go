package api

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultRating = 5

type reviewHandler struct {
	responder  Responder
	logger     zerolog.Logger
	reviewRepo *database.ReviewRepo
	notifier   *services.Notifier
}

func newReviewHandler(reviewRepo *database.ReviewRepo, notifier *services.Notifier) reviewHandler {
	logger := log.With().Str("handlerName", "reviewHandler").Logger()

	return reviewHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		reviewRepo: reviewRepo,
		notifier:   notifier,
	}
}

type reviewRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	Company     string  `json:"company"`
	Content     string  `json:"content"`
	Rating      int     `json:"rating"`
	LinkedInURL *string `json:"linkedin_url"`
}

func (rr reviewRequest) Validate() error {
	return validation.ValidateStruct(&rr,
		validation.Field(&rr.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&rr.Email, validation.Required, is.EmailFormat),
		validation.Field(&rr.Content, validation.Required, validation.Length(1, 5000)),
		validation.Field(&rr.Rating, validation.Min(1), validation.Max(5)),
		validation.Field(&rr.LinkedInURL, validation.NilOrNotEmpty, is.URL),
	)
}

func (rr *reviewRequest) sanitize() {
	rr.Name = sanitizeText(rr.Name)
	rr.Email = sanitizeText(rr.Email)
	rr.Role = sanitizeText(rr.Role)
	rr.Company = sanitizeText(rr.Company)
	rr.Content = sanitizeText(rr.Content)
	rr.LinkedInURL = sanitizeOptional(rr.LinkedInURL)
	if rr.Rating == 0 {
		rr.Rating = defaultRating
	}
}

// getApprovedReviews lists approved reviews, newest first
// @Summary Get reviews
// @Tags Reviews
// @Produce json
// @Success 200 {array} models.Review "Approved reviews"
// @Router /reviews [get]
func (h reviewHandler) getApprovedReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviews, err := h.reviewRepo.FindApproved(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "reviews", err))
			return
		}
		h.writeReviews(w, reviews, false)
	}
}

// getAllReviews lists every review for moderation
// @Summary Get all reviews
// @Tags Reviews
// @Produce json
// @Success 200 {array} models.Review "Reviews"
// @Router /admin/reviews [get]
func (h reviewHandler) getAllReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviews, err := h.reviewRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "reviews", err))
			return
		}
		h.writeReviews(w, reviews, true)
	}
}

// writeReviews hides reviewer emails from the public listing
func (h reviewHandler) writeReviews(w http.ResponseWriter, reviews []*models.Review, withEmail bool) {
	if reviews == nil {
		reviews = []*models.Review{}
	}
	if !withEmail {
		for _, review := range reviews {
			review.Email = ""
		}
	}
	h.responder.WriteJSON(w, reviews)
}

// createReview stores a review awaiting approval
// @Summary Submit review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param review body reviewRequest true "Review"
// @Success 201 {object} models.Review "Created review"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid review"
// @Router /reviews [post]
func (h reviewHandler) createReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.sanitize()
		if err := req.Validate(); err != nil {
			h.responder.WriteError(w, errs.NewValidationError(err))
			return
		}

		review := &models.Review{
			Name:        req.Name,
			Email:       req.Email,
			Role:        req.Role,
			Company:     req.Company,
			Content:     req.Content,
			Rating:      req.Rating,
			LinkedInURL: req.LinkedInURL,
			Verified:    false,
			Approved:    false,
		}
		if err := h.reviewRepo.Add(r.Context(), review); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "review", err))
			return
		}

		notifyOwner(h.logger, h.notifier, r.Context(), h.notifier.NewReviewNotification(review))

		h.responder.WriteJSONStatus(w, http.StatusCreated, review)
	}
}

type moderateRequest struct {
	Approved *bool `json:"approved"`
	Verified *bool `json:"verified"`
}

// moderateReview updates the approved and verified flags of a review
// @Summary Moderate review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param reviewID path string true "Review ID" format(uuid)
// @Param flags body moderateRequest true "Flags to change"
// @Success 200 {object} models.Review "Updated review"
// @Failure 404 {object} ErrorResponse "Not Found - Review not found"
// @Router /admin/review/{reviewID} [patch]
func (h reviewHandler) moderateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, err := urlID(r, "reviewID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req moderateRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		review, err := h.reviewRepo.UpdateFlags(r.Context(), reviewID, req.Approved, req.Verified)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "review", err))
			return
		}
		h.responder.WriteJSON(w, review)
	}
}

// deleteReview deletes a review
// @Summary Delete review
// @Tags Reviews
// @Produce json
// @Param reviewID path string true "Review ID" format(uuid)
// @Success 200 {object} DeleteResponse "Success message"
// @Router /admin/review/{reviewID} [delete]
func (h reviewHandler) deleteReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, err := urlID(r, "reviewID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.reviewRepo.Delete(r.Context(), reviewID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "review", err))
			return
		}

		h.responder.WriteJSON(w, DeleteResponse{
			Status:  "success",
			Message: fmt.Sprintf("review %s deleted", reviewID),
		})
	}
}
