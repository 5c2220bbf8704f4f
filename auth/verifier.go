package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog/log"
)

const (
	ProviderLocal   = "local"
	ProviderDescope = "descope"
)

// Subject identifies the caller behind a verified bearer token.
type Subject struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}

// Chain accepts a token when any of its verifiers does. An expired local
// token is reported as expired rather than invalid.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (Subject, error) {
	if token == "" {
		return Subject{}, errs.NewMissingTokenError()
	}

	var firstErr error
	for _, v := range c {
		subject, err := v.Verify(ctx, token)
		if err == nil {
			return subject, nil
		}
		if firstErr == nil || errs.IsExpiredTokenError(err) {
			firstErr = err
		}
	}
	if firstErr == nil {
		return Subject{}, errs.NewInvalidTokenError()
	}
	return Subject{}, firstErr
}

// Setup builds the token service and the verifier chain from configuration.
// Without JWT_SECRET the token service is nil and password login is off; at
// least one of JWT_SECRET and DESCOPE_PROJECT_ID must be set.
func Setup(c config.Config) (*TokenService, Chain, error) {
	var (
		tokens *TokenService
		chain  Chain
	)

	if secret := config.GetString(c, "JWT_SECRET", ""); secret != "" {
		var err error
		tokens, err = NewTokenService(secret, time.Duration(config.GetInt(c, "JWT_TTL_HOURS", 12))*time.Hour)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, tokens)
	} else {
		log.Warn().Msg("JWT_SECRET not set, local admin tokens disabled")
	}

	if projectID := config.GetString(c, "DESCOPE_PROJECT_ID", ""); projectID != "" {
		descopeVerifier, err := NewDescopeVerifier(projectID)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, descopeVerifier)
		log.Info().Msg("Descope session verification enabled")
	}

	if len(chain) == 0 {
		return nil, nil, errors.New("auth: set JWT_SECRET or DESCOPE_PROJECT_ID")
	}
	return tokens, chain, nil
}
