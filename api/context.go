package api

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/auth"
)

type keyType string

const subjectKey keyType = "subject"

// ctxWithSubject adds the authenticated caller to the context
func ctxWithSubject(ctx context.Context, subject auth.Subject) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// ctxGetSubject retrieves the authenticated caller from the context
func ctxGetSubject(ctx context.Context) (auth.Subject, bool) {
	subject, ok := ctx.Value(subjectKey).(auth.Subject)
	return subject, ok
}
