package auth

import (
	"context"
	"fmt"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"
	"github.com/rpupo63/portfolio-site-backend/errs"
)

type sessionValidator interface {
	ValidateSessionWithToken(ctx context.Context, sessionToken string) (bool, *descope.Token, error)
}

// DescopeVerifier accepts session tokens issued by a Descope project.
type DescopeVerifier struct {
	sessions sessionValidator
}

func NewDescopeVerifier(projectID string) (*DescopeVerifier, error) {
	descopeClient, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("auth: create descope client: %w", err)
	}
	return &DescopeVerifier{sessions: descopeClient.Auth}, nil
}

func (v *DescopeVerifier) Verify(ctx context.Context, token string) (Subject, error) {
	ok, parsed, err := v.sessions.ValidateSessionWithToken(ctx, token)
	if err != nil || !ok || parsed == nil || parsed.ID == "" {
		return Subject{}, errs.NewInvalidTokenError()
	}
	return Subject{ID: parsed.ID, Provider: ProviderDescope}, nil
}
