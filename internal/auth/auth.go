// Package auth signs users up and in, and hands out sessions the rest of
// the program scopes its data by.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/khrees2412/jobtracker/internal/database"
	"github.com/khrees2412/jobtracker/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL     = 30 * 24 * time.Hour
	MinPasswordLength     = 8
	MaxDisplayNameLength  = 100
	sessionTokenPrefix    = "jt"
	sessionTokenByteCount = 24
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("not signed in")
	ErrSessionExpired     = errors.New("session has expired")
	ErrInvalidDisplayName = errors.New("display name must be 1 to 100 characters")
)

// Session is a signed-in user's bearer token plus the user it belongs to.
// A Session is acquired by SignUp, SignIn or Resume and released by SignOut.
// It is safe for concurrent use; only the user's profile fields change.
type Session struct {
	token     string
	expiresAt time.Time

	mu   sync.RWMutex
	user models.User
}

// NewSession builds a session without a backing store. Used by callers
// that only need an owner, such as tests.
func NewSession(token string, user models.User, expiresAt time.Time) *Session {
	return &Session{token: token, user: user, expiresAt: expiresAt}
}

func (s *Session) Token() string        { return s.token }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) CurrentUser() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) setUser(user models.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Service manages users and sessions in the users and sessions tables.
type Service struct {
	db         *sql.DB
	adapter    database.Adapter
	now        func() time.Time
	sessionTTL time.Duration
}

func NewService(db *sql.DB, adapter database.Adapter, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		db:         db,
		adapter:    adapter,
		now:        time.Now,
		sessionTTL: sessionTTL,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SignUp registers a new user and signs them in.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		return nil, &models.ValidationError{Field: "display_name", Message: ErrInvalidDisplayName.Error()}
	}

	_, found, err := s.userByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, &models.AuthError{Op: "sign up", Err: ErrEmailTaken}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := models.User{
		ID:          uuid.New().String(),
		Email:       normalizedEmail,
		DisplayName: displayName,
		CreatedAt:   now,
	}
	if err := s.insertUser(ctx, user, string(hash)); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// insertUser stores a new user. Losing a race with a concurrent sign-up for
// the same email reports ErrEmailTaken.
func (s *Service) insertUser(ctx context.Context, user models.User, passwordHash string) error {
	query := s.adapter.Rebind(`INSERT INTO users (id, email, password_hash, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Email, passwordHash, user.DisplayName, user.CreatedAt, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return &models.AuthError{Op: "sign up", Err: ErrEmailTaken}
		}
		return models.NewStoreError("create user", err)
	}
	return nil
}

// SignIn checks credentials and opens a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, &models.AuthError{Op: "sign in", Err: ErrInvalidCredentials}
	}

	record, found, err := s.userByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &models.AuthError{Op: "sign in", Err: ErrInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.passwordHash), []byte(password)); err != nil {
		return nil, &models.AuthError{Op: "sign in", Err: ErrInvalidCredentials}
	}

	return s.openSession(ctx, record.user)
}

// Resume restores the session a token was issued for. Expired sessions are
// removed and reported as ErrSessionExpired.
func (s *Service) Resume(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &models.AuthError{Op: "resume session", Err: ErrNoSession}
	}

	digest := DigestToken(token)
	query := s.adapter.Rebind(`SELECT s.expires_at, u.id, u.email, u.display_name, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ?`)

	var session Session
	err := s.db.QueryRowContext(ctx, query, digest).Scan(
		&session.expiresAt,
		&session.user.ID,
		&session.user.Email,
		&session.user.DisplayName,
		&session.user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.AuthError{Op: "resume session", Err: ErrNoSession}
		}
		return nil, models.NewStoreError("lookup session", err)
	}

	if !session.expiresAt.After(s.now().UTC()) {
		_ = s.deleteSession(ctx, digest)
		return nil, &models.AuthError{Op: "resume session", Err: ErrSessionExpired}
	}

	session.token = token
	return &session, nil
}

// SignOut releases the session. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, session *Session) error {
	if session == nil || session.token == "" {
		return nil
	}
	return s.deleteSession(ctx, DigestToken(session.token))
}

// Profile reloads the session's user from the store.
func (s *Service) Profile(ctx context.Context, session *Session) (models.User, error) {
	current, err := s.verify(ctx, session, "load profile")
	if err != nil {
		return models.User{}, err
	}
	return current.CurrentUser(), nil
}

// UpdateDisplayName sets the signed-in user's display name.
func (s *Service) UpdateDisplayName(ctx context.Context, session *Session, name string) (models.User, error) {
	current, err := s.verify(ctx, session, "update profile")
	if err != nil {
		return models.User{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return models.User{}, &models.AuthError{Op: "update profile", Err: ErrInvalidDisplayName}
	}

	now := s.now().UTC()
	query := s.adapter.Rebind(`UPDATE users SET display_name = ?, updated_at = ? WHERE id = ?`)
	user := current.CurrentUser()
	if _, err := s.db.ExecContext(ctx, query, name, now, user.ID); err != nil {
		return models.User{}, models.NewStoreError("update profile", err)
	}

	user.DisplayName = name
	session.setUser(user)
	return user, nil
}

func (s *Service) verify(ctx context.Context, session *Session, op string) (*Session, error) {
	if session == nil {
		return nil, &models.AuthError{Op: op, Err: ErrNoSession}
	}
	current, err := s.Resume(ctx, session.token)
	if err != nil {
		var authErr *models.AuthError
		if errors.As(err, &authErr) {
			return nil, &models.AuthError{Op: op, Err: authErr.Err}
		}
		return nil, err
	}
	return current, nil
}

func (s *Service) openSession(ctx context.Context, user models.User) (*Session, error) {
	token, err := GenerateToken(sessionTokenPrefix, sessionTokenByteCount)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now().UTC()
	session := &Session{
		token:     token,
		user:      user,
		expiresAt: now.Add(s.sessionTTL),
	}
	query := s.adapter.Rebind(`INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, uuid.New().String(), user.ID, DigestToken(token), session.expiresAt, now); err != nil {
		return nil, models.NewStoreError("create session", err)
	}
	return session, nil
}

func (s *Service) deleteSession(ctx context.Context, digest string) error {
	query := s.adapter.Rebind(`DELETE FROM sessions WHERE token_hash = ?`)
	if _, err := s.db.ExecContext(ctx, query, digest); err != nil {
		return models.NewStoreError("delete session", err)
	}
	return nil
}

type userRecord struct {
	user         models.User
	passwordHash string
}

func (s *Service) userByEmail(ctx context.Context, email string) (userRecord, bool, error) {
	query := s.adapter.Rebind(`SELECT id, email, display_name, password_hash, created_at
		FROM users WHERE email = ?`)

	var record userRecord
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&record.user.ID,
		&record.user.Email,
		&record.user.DisplayName,
		&record.passwordHash,
		&record.user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return userRecord{}, false, nil
		}
		return userRecord{}, false, models.NewStoreError("lookup user", err)
	}
	return record, true, nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(email))
	if trimmed == "" {
		return "", &models.ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", &models.ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return trimmed, nil
}

func validatePassword(password string) error {
	if password == "" {
		return &models.ValidationError{Field: "password", Message: "is required"}
	}
	if len(password) < MinPasswordLength {
		return &models.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		}
	}
	return nil
}
