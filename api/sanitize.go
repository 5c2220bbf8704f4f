package api

import (
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rpupo63/portfolio-site-backend/errs"
)

var strictPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds the strip/decode loop for nested entity encodings
const maxSanitizePasses = 4

// sanitizeText strips every HTML tag from user submitted text and trims it.
// Entities are decoded and the result stripped again until nothing changes, so
// encoded markup cannot come back as live tags. Input that is still changing
// after maxSanitizePasses is stored in its escaped form.
func sanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		clean := html.UnescapeString(strictPolicy.Sanitize(s))
		if clean == s {
			return strings.TrimSpace(clean)
		}
		s = clean
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

// urlID parses the UUID route parameter called name
func urlID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing " + name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid " + name)
	}
	return id, nil
}
