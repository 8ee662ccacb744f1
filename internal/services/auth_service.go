package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/config"
	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/mailer"
	"github.com/ttifoundation/admission-backend/internal/models"
)

// AuthService owns staff accounts, sessions and password resets. Sessions
// are opaque random tokens stored hashed, capped per user with oldest-first
// eviction.
type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier mailer.Notifier
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifier mailer.Notifier) *AuthService {
	return &AuthService{db: db, cfg: cfg, notifier: notifier}
}

// Register creates a staff account. The very first account in an empty store
// must be HEAD and needs no token; every later account requires a valid HEAD
// session token.
func (s *AuthService) Register(creatorToken string, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	course := strings.TrimSpace(req.Course)

	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	roleStr := req.Role
	if roleStr == "" {
		roleStr = string(actor.RoleTeacher)
	}
	role, err := actor.ParseRole(roleStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if role == actor.RoleTeacher && course == "" {
		return nil, fmt.Errorf("%w: course is required for teacher", ErrValidation)
	}
	if role != actor.RoleTeacher {
		course = ""
	}

	var userCount int64
	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if userCount > 0 {
		if creatorToken == "" {
			return nil, fmt.Errorf("%w: HEAD token required to create account", ErrUnauthenticated)
		}
		creator, err := s.ResolveToken(creatorToken)
		if err != nil || creator.Role != actor.RoleHead {
			return nil, fmt.Errorf("%w: only HEAD can create new accounts", ErrForbidden)
		}
	} else if role != actor.RoleHead {
		return nil, fmt.Errorf("%w: first account must be HEAD", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
		Course:       course,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return sanitizeUser(&user), nil
}

// Login verifies the password and mints a new opaque session token,
// evicting the oldest session past the per-user cap.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	raw, err := newToken()
	if err != nil {
		return nil, err
	}

	session := models.SessionToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if err := s.evictOldSessions(user.ID, session.ID); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: raw, User: *sanitizeUser(&user)}, nil
}

// evictOldSessions trims the user's other sessions so the total stays at
// the cap. The session minted by the current login is excluded from the
// candidate set, so a created_at tie can never evict the token just handed
// to the client.
func (s *AuthService) evictOldSessions(userID, newest uuid.UUID) error {
	var sessions []models.SessionToken
	if err := s.db.Where("user_id = ? AND id <> ?", userID, newest).
		Order("created_at DESC, id DESC").Find(&sessions).Error; err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	keep := models.MaxSessionsPerUser - 1
	if len(sessions) <= keep {
		return nil
	}
	stale := make([]uuid.UUID, 0, len(sessions)-keep)
	for _, old := range sessions[keep:] {
		stale = append(stale, old.ID)
	}
	return s.db.Where("id IN ?", stale).Delete(&models.SessionToken{}).Error
}

// ResolveToken maps a raw bearer token to the acting staff identity.
func (s *AuthService) ResolveToken(raw string) (actor.Actor, error) {
	if raw == "" {
		return actor.Actor{}, ErrUnauthenticated
	}

	var session models.SessionToken
	if err := s.db.Preload("User").
		Where("token_hash = ?", hashToken(raw)).First(&session).Error; err != nil {
		return actor.Actor{}, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	role, err := actor.ParseRole(session.User.Role)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	return actor.Actor{
		ID:     session.User.ID,
		Name:   session.User.Name,
		Email:  session.User.Email,
		Role:   role,
		Course: session.User.Course,
		Token:  raw,
	}, nil
}

// Logout revokes exactly the presented session token.
func (s *AuthService) Logout(a actor.Actor) error {
	return s.db.Where("user_id = ? AND token_hash = ?", a.ID, hashToken(a.Token)).
		Delete(&models.SessionToken{}).Error
}

// Me returns the sanitized account behind the actor.
func (s *AuthService) Me(a actor.Actor) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", a.ID).Error; err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return sanitizeUser(&user), nil
}

// ForgotPassword issues a single-use reset token and mails the link. It
// never reveals whether the address exists; the only surfaced failure is an
// undeliverable reset mail.
func (s *AuthService) ForgotPassword(email, clientBase string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil
	}

	raw, err := newToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(s.cfg.ResetTokenTTL)
	updates := map[string]interface{}{
		"reset_token_hash":       hashToken(raw),
		"reset_token_expires_at": expires,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetLink := strings.TrimRight(clientBase, "/") + "/auth?mode=reset&token=" + raw
	if err := s.notifier.Send(mailer.PasswordReset(user.Name, user.Email, resetLink)); err != nil {
		return fmt.Errorf("%w: unable to send reset email: %v", ErrUpstream, err)
	}
	return nil
}

// ResetPassword consumes a reset token. Expired or already-used tokens fail;
// lazy expiry means nothing sweeps tokens in the background.
func (s *AuthService) ResetPassword(token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" || password == "" {
		return fmt.Errorf("%w: token and password are required", ErrValidation)
	}

	var user models.User
	err := s.db.Where("reset_token_hash = ? AND reset_token_expires_at > ?",
		hashToken(token), time.Now()).First(&user).Error
	if err != nil {
		return fmt.Errorf("%w: invalid or expired reset token", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	updates := map[string]interface{}{
		"password_hash":          string(hash),
		"reset_token_hash":       "",
		"reset_token_expires_at": nil,
	}
	return s.db.Model(&user).Updates(updates).Error
}

func sanitizeUser(u *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Course: u.Course,
	}
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
