package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"cyguard-backend/internal/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address has not been verified")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

const (
	minPasswordLen = 8
	tokenBytes     = 32
	sessionTTL     = 7 * 24 * time.Hour
)

// Event describes an identity-state change delivered to subscribers.
type Event struct {
	UserID   uuid.UUID
	Email    string
	SignedIn bool
	Verified bool
}

// Service is the email/password identity collaborator. Sessions are opaque
// bearer tokens stored server-side with an expiry.
type Service struct {
	db *gorm.DB

	mu      sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, subs: make(map[int]func(Event))}
}

// SignUp creates an unverified identity and returns its id along with the
// verification token. No session is issued until the email is verified.
func (s *Service) SignUp(ctx context.Context, email, password string) (uuid.UUID, string, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if len(password) < minPasswordLen {
		return uuid.Nil, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("hash password: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return uuid.Nil, "", err
	}

	user := database.User{
		Id:                uuid.New(),
		Email:             email,
		PasswordHash:      hash,
		EmailVerified:     false,
		VerificationToken: token,
		CreationTime:      time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Create(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return uuid.Nil, "", ErrEmailTaken
		}
		return uuid.Nil, "", fmt.Errorf("create user: %w", err)
	}

	return user.Id, token, nil
}

// VerifyEmail consumes a verification token and flips the verified flag.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	var user database.User
	err := s.db.WithContext(ctx).First(&user, "verification_token = ? AND NOT email_verified", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("lookup verification token: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&user).
		Updates(map[string]interface{}{"email_verified": true, "verification_token": ""}).Error
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	s.notify(Event{UserID: user.Id, Email: user.Email, Verified: true})
	return nil
}

// SignIn checks credentials and issues a session token for the returned user.
// Bad email and bad password are indistinguishable to the caller; an
// unverified account gets the specific ErrEmailNotVerified.
func (s *Service) SignIn(ctx context.Context, email, password string) (*database.User, string, error) {
	var user database.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	token, err := newToken()
	if err != nil {
		return nil, "", err
	}
	session := database.AuthToken{
		Token:     token,
		UserId:    user.Id,
		ExpiresAt: time.Now().UTC().Add(sessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.notify(Event{UserID: user.Id, Email: user.Email, SignedIn: true, Verified: true})
	return &user, token, nil
}

// SignOut revokes the session token. Revoking an unknown token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	var session database.AuthToken
	err := s.db.WithContext(ctx).First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&session).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.notify(Event{UserID: session.UserId, SignedIn: false})
	return nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*database.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var session database.AuthToken
	err := s.db.WithContext(ctx).Preload("User").First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		// expired sessions are reaped lazily
		_ = s.db.WithContext(ctx).Delete(&session).Error
		return nil, ErrInvalidToken
	}
	if session.User == nil {
		return nil, ErrInvalidToken
	}

	return session.User, nil
}

// Subscribe registers a callback for identity-state changes and returns an
// unsubscribe func.
func (s *Service) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) notify(event Event) {
	s.mu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
