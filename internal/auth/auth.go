// Package auth implements the customer OTP flow. The OTP endpoints are
// cookie-session calls (credentials included); verification yields the user
// id and bearer token that the rest of the client carries in Authorization
// headers. The two schemes coexist deliberately.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smartcommerce/storefront/internal/api"
)

var ErrInvalidOTP = errors.New("auth: invalid or expired OTP")

// Session identifies a verified customer.
type Session struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
	Email  string `json:"email"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// RequestOTP asks the backend to mail a one-time code.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("auth: email is required")
	}

	body := map[string]string{"email": email}
	if err := s.client.SessionJSON(ctx, http.MethodPost, "/api/auth/request-otp", nil, body, nil); err != nil {
		return fmt.Errorf("auth: failed to request OTP: %w", err)
	}

	log.Info().Str("email", email).Msg("auth: OTP requested")
	return nil
}

// VerifyOTP exchanges the code for a session and installs the credentials
// into the shared API client.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	body := map[string]string{"email": email, "code": code}

	var sess Session
	err := s.client.SessionJSON(ctx, http.MethodPost, "/api/auth/verify-otp", nil, body, &sess)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("auth: failed to verify OTP: %w", err)
	}
	if sess.Email == "" {
		sess.Email = email
	}

	s.client.SetCredentials(api.Credentials{UserID: sess.UserID, Token: sess.Token})
	log.Info().Str("user_id", sess.UserID).Msg("auth: customer signed in")
	return &sess, nil
}

// Logout drops the backend session and the local credentials.
func (s *Service) Logout(ctx context.Context) error {
	err := s.client.SessionJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	s.client.ClearCredentials()
	if err != nil {
		return fmt.Errorf("auth: logout failed: %w", err)
	}
	return nil
}
