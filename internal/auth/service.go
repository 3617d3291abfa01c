package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/arscode/arscode-backend/internal/customers"
	pkgauth "github.com/arscode/arscode-backend/pkg/auth"
	"github.com/arscode/arscode-backend/pkg/config"
	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
)

// Service exposes session management.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// LoginResult carries the minted access token plus the account it belongs to.
type LoginResult struct {
	AccessToken string                `json:"access_token"`
	ExpiresIn   int                   `json:"expires_in"`
	Customer    customers.CustomerDTO `json:"customer"`
}

// authenticator is the slice of the customer service this package needs.
type authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.Customer, error)
}

type service struct {
	customers authenticator
	jwtCfg    config.JWTConfig
	now       func() time.Time
}

// NewService constructs an auth service instance.
func NewService(customersSvc authenticator, jwtCfg config.JWTConfig) (Service, error) {
	if customersSvc == nil {
		return nil, fmt.Errorf("customer authenticator required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{customers: customersSvc, jwtCfg: jwtCfg, now: time.Now}, nil
}

// Login verifies credentials and mints an access token.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	customer, err := s.customers.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		CustomerID: customer.ID,
		IsAdmin:    customer.IsAdmin,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int(s.jwtCfg.AccessTokenTTL().Seconds()),
		Customer: customers.CustomerDTO{
			ID:           customer.ID,
			Name:         customer.Name,
			Email:        customer.Email,
			BalanceCents: customer.BalanceCents,
			IsAdmin:      customer.IsAdmin,
			CreatedAt:    customer.CreatedAt,
		},
	}, nil
}
