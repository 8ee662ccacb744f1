package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/models"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	return NewAuthService(newTestDB(t), testConfig(), notifier), notifier
}

func registerHead(t *testing.T, svc *AuthService) string {
	t.Helper()
	_, err := svc.Register("", &dto.RegisterRequest{
		Name: "Head", Email: "head@tti.org", Password: "secret123", Role: "HEAD",
	})
	if err != nil {
		t.Fatalf("register head: %v", err)
	}
	resp, err := svc.Login(&dto.LoginRequest{Email: "head@tti.org", Password: "secret123"})
	if err != nil {
		t.Fatalf("login head: %v", err)
	}
	return resp.Token
}

func TestRegister_FirstAccountMustBeHead(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register("", &dto.RegisterRequest{
		Name: "T", Email: "t@tti.org", Password: "secret123", Role: "TEACHER", Course: "BasicComputers",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("first TEACHER account: err = %v, want ErrValidation", err)
	}

	if _, err := svc.Register("", &dto.RegisterRequest{
		Name: "Head", Email: "head@tti.org", Password: "secret123", Role: "HEAD",
	}); err != nil {
		t.Fatalf("first HEAD account without token should succeed, got %v", err)
	}
}

func TestRegister_LaterAccountsNeedHeadToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	headToken := registerHead(t, svc)

	_, err := svc.Register("", &dto.RegisterRequest{
		Name: "T", Email: "t@tti.org", Password: "secret123", Role: "TEACHER", Course: "BasicComputers",
	})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("tokenless second account: err = %v, want ErrUnauthenticated", err)
	}

	_, err = svc.Register("bogus-token", &dto.RegisterRequest{
		Name: "T", Email: "t@tti.org", Password: "secret123", Role: "TEACHER", Course: "BasicComputers",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("invalid-token second account: err = %v, want ErrForbidden", err)
	}

	user, err := svc.Register(headToken, &dto.RegisterRequest{
		Name: "T", Email: "T@tti.org", Password: "secret123", Role: "teacher", Course: "BasicComputers",
	})
	if err != nil {
		t.Fatalf("HEAD-token second account should succeed, got %v", err)
	}
	if user.Email != "t@tti.org" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Role != "TEACHER" || user.Course != "BasicComputers" {
		t.Errorf("sanitized user = %+v", user)
	}

	// A teacher token cannot create accounts.
	teacherLogin, err := svc.Login(&dto.LoginRequest{Email: "t@tti.org", Password: "secret123"})
	if err != nil {
		t.Fatalf("login teacher: %v", err)
	}
	_, err = svc.Register(teacherLogin.Token, &dto.RegisterRequest{
		Name: "T2", Email: "t2@tti.org", Password: "secret123", Role: "TEACHER", Course: "Tailoring",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("teacher-token account creation: err = %v, want ErrForbidden", err)
	}
}

func TestRegister_TeacherRequiresCourse(t *testing.T) {
	svc, _ := newAuthFixture(t)
	headToken := registerHead(t, svc)

	_, err := svc.Register(headToken, &dto.RegisterRequest{
		Name: "T", Email: "t@tti.org", Password: "secret123", Role: "TEACHER",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("courseless teacher: err = %v, want ErrValidation", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	headToken := registerHead(t, svc)

	_, err := svc.Register(headToken, &dto.RegisterRequest{
		Name: "Head2", Email: "head@tti.org", Password: "secret123", Role: "HEAD",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email: err = %v, want ErrDuplicate", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerHead(t, svc)

	if _, err := svc.Login(&dto.LoginRequest{Email: "head@tti.org", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(&dto.LoginRequest{Email: "nobody@tti.org", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_SessionCapEvictsOldest(t *testing.T) {
	svc, _ := newAuthFixture(t)
	first := registerHead(t, svc)

	var tokens []string
	for i := 0; i < models.MaxSessionsPerUser; i++ {
		resp, err := svc.Login(&dto.LoginRequest{Email: "head@tti.org", Password: "secret123"})
		if err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
		tokens = append(tokens, resp.Token)
	}

	var count int64
	svc.db.Model(&models.SessionToken{}).Count(&count)
	if count != models.MaxSessionsPerUser {
		t.Fatalf("session count = %d, want %d", count, models.MaxSessionsPerUser)
	}

	// The original login session fell off the end of the cap.
	if _, err := svc.ResolveToken(first); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("evicted token still resolves, err = %v", err)
	}
	if _, err := svc.ResolveToken(tokens[len(tokens)-1]); err != nil {
		t.Errorf("newest token should resolve, got %v", err)
	}
}

func TestLogin_NewSessionSurvivesTimestampTies(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerHead(t, svc)

	var user models.User
	if err := svc.db.First(&user, "email = ?", "head@tti.org").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	// Fill the cap with sessions that sort ahead of anything minted now.
	future := time.Now().Add(time.Hour)
	for i := 0; i < models.MaxSessionsPerUser; i++ {
		session := models.SessionToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: hashToken(fmt.Sprintf("seed-%d", i)),
			CreatedAt: future,
		}
		if err := svc.db.Create(&session).Error; err != nil {
			t.Fatalf("seed session %d: %v", i, err)
		}
	}

	resp, err := svc.Login(&dto.LoginRequest{Email: "head@tti.org", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.ResolveToken(resp.Token); err != nil {
		t.Errorf("just-minted token was evicted: %v", err)
	}
	var count int64
	svc.db.Model(&models.SessionToken{}).Where("user_id = ?", user.ID).Count(&count)
	if count != models.MaxSessionsPerUser {
		t.Errorf("session count = %d, want %d", count, models.MaxSessionsPerUser)
	}
}

func TestLogout_RevokesOnlyPresentedToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	registerHead(t, svc)

	a1, err := svc.Login(&dto.LoginRequest{Email: "head@tti.org", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	a2, err := svc.Login(&dto.LoginRequest{Email: "head@tti.org", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	act, err := svc.ResolveToken(a1.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := svc.Logout(act); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ResolveToken(a1.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Error("logged-out token still resolves")
	}
	if _, err := svc.ResolveToken(a2.Token); err != nil {
		t.Errorf("sibling session revoked by logout: %v", err)
	}
}

func TestResolveToken_PopulatesActor(t *testing.T) {
	svc, _ := newAuthFixture(t)
	headToken := registerHead(t, svc)

	if _, err := svc.Register(headToken, &dto.RegisterRequest{
		Name: "Asha", Email: "asha@tti.org", Password: "secret123", Role: "TEACHER", Course: "BasicComputers",
	}); err != nil {
		t.Fatalf("register teacher: %v", err)
	}
	resp, err := svc.Login(&dto.LoginRequest{Email: "asha@tti.org", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	a, err := svc.ResolveToken(resp.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.Role != actor.RoleTeacher || a.Course != "BasicComputers" || a.Name != "Asha" {
		t.Errorf("actor = %+v", a)
	}
	if a.Token != resp.Token {
		t.Error("actor should carry the presenting token")
	}
}

func resetTokenFromMail(t *testing.T, notifier *fakeNotifier) string {
	t.Helper()
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.sent) == 0 {
		t.Fatal("no reset mail sent")
	}
	body := notifier.sent[len(notifier.sent)-1].Body
	idx := strings.Index(body, "token=")
	if idx < 0 {
		t.Fatalf("reset mail carries no token: %q", body)
	}
	token := body[idx+len("token="):]
	if end := strings.IndexAny(token, "\"& \n"); end >= 0 {
		token = token[:end]
	}
	return token
}

func TestPasswordReset_SingleUse(t *testing.T) {
	svc, notifier := newAuthFixture(t)
	registerHead(t, svc)

	if err := svc.ForgotPassword("head@tti.org", "https://app.tti.org"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	token := resetTokenFromMail(t, notifier)

	if err := svc.ResetPassword(token, "newsecret123"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := svc.Login(&dto.LoginRequest{Email: "head@tti.org", Password: "newsecret123"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// The consumed token cannot be replayed.
	if err := svc.ResetPassword(token, "another123"); !errors.Is(err, ErrValidation) {
		t.Fatalf("token replay: err = %v, want ErrValidation", err)
	}
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	svc, notifier := newAuthFixture(t)
	registerHead(t, svc)

	if err := svc.ForgotPassword("head@tti.org", "https://app.tti.org"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	token := resetTokenFromMail(t, notifier)

	expired := time.Now().Add(-time.Minute)
	if err := svc.db.Model(&models.User{}).
		Where("email = ?", "head@tti.org").
		Update("reset_token_expires_at", expired).Error; err != nil {
		t.Fatalf("expire token: %v", err)
	}

	if err := svc.ResetPassword(token, "newsecret123"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expired token: err = %v, want ErrValidation", err)
	}
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, notifier := newAuthFixture(t)
	registerHead(t, svc)
	notifier.sent = nil

	if err := svc.ForgotPassword("nobody@tti.org", "https://app.tti.org"); err != nil {
		t.Fatalf("unknown email should not error, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Error("no mail should be sent for unknown email")
	}
}

func TestForgotPassword_MailerFailureSurfaces(t *testing.T) {
	svc, notifier := newAuthFixture(t)
	registerHead(t, svc)
	notifier.fail = true

	if err := svc.ForgotPassword("head@tti.org", "https://app.tti.org"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("undeliverable reset mail: err = %v, want ErrUpstream", err)
	}
}
