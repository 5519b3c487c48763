package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cyguard-backend/internal/auth"
	"cyguard-backend/internal/database"
	"cyguard-backend/pkg/api"
)

type AuthService struct {
	identity *auth.Service
}

func NewAuthService(identity *auth.Service) *AuthService {
	return &AuthService{identity: identity}
}

func (s *AuthService) AddRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", RestHandler(s.SignUp))
		r.Post("/signin", RestHandler(s.SignIn))
		r.Post("/signout", RestHandler(s.SignOut))
		r.Post("/verify", RestHandler(s.VerifyEmail))
	})
}

func (s *AuthService) SignUp(r *http.Request) (any, error) {
	req, err := ParseRequest[api.SignUpRequest](r)
	if err != nil {
		return nil, err
	}

	userID, token, err := s.identity.SignUp(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return nil, CodedError(http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrEmailTaken):
		return nil, CodedError(http.StatusConflict, err)
	case err != nil:
		return nil, err
	}

	return api.SignUpResponse{UserID: userID.String(), VerificationToken: token}, nil
}

func (s *AuthService) VerifyEmail(r *http.Request) (any, error) {
	req, err := ParseRequest[api.VerifyEmailRequest](r)
	if err != nil {
		return nil, err
	}

	if err := s.identity.VerifyEmail(r.Context(), req.Token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, CodedError(http.StatusBadRequest, err)
		}
		return nil, err
	}

	return nil, nil
}

func (s *AuthService) SignIn(r *http.Request) (any, error) {
	req, err := ParseRequest[api.SignInRequest](r)
	if err != nil {
		return nil, err
	}

	user, token, err := s.identity.SignIn(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return nil, CodedError(http.StatusUnauthorized, err)
	case errors.Is(err, auth.ErrEmailNotVerified):
		return nil, CodedError(http.StatusForbidden, err)
	case err != nil:
		return nil, err
	}

	return api.SignInResponse{
		Token:         token,
		UserID:        user.Id.String(),
		EmailVerified: user.EmailVerified,
	}, nil
}

func (s *AuthService) SignOut(r *http.Request) (any, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, CodedErrorf(http.StatusUnauthorized, "missing bearer token")
	}

	if err := s.identity.SignOut(r.Context(), token); err != nil {
		return nil, err
	}
	return nil, nil
}

type contextKey string

const userContextKey contextKey = "user"

// Middleware resolves the bearer token and stores the user on the request
// context. Requests without a valid token are rejected.
func (s *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		user, err := s.identity.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or missing bearer token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user placed by Middleware.
func UserFromContext(ctx context.Context) (*database.User, error) {
	user, ok := ctx.Value(userContextKey).(*database.User)
	if !ok || user == nil {
		return nil, CodedErrorf(http.StatusUnauthorized, "no authenticated user")
	}
	return user, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
