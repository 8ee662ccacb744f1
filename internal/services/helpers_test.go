package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/config"
	"github.com/ttifoundation/admission-backend/internal/directory"
	"github.com/ttifoundation/admission-backend/internal/mailer"
	"github.com/ttifoundation/admission-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A fresh connection would see a fresh :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.SessionToken{},
		&models.Admission{},
		&models.Notification{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{ResetTokenTTL: 30 * time.Minute}
}

// fakeNotifier records outbound mail instead of delivering it.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []mailer.Mail
	fail bool
}

func (f *fakeNotifier) Send(m mailer.Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("mailer down")
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeNotifier) sentTo(addr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.To == addr {
			n++
		}
	}
	return n
}

// fakeDocStore returns deterministic URLs without touching object storage.
type fakeDocStore struct {
	mu      sync.Mutex
	uploads int
	fail    bool
}

func (f *fakeDocStore) Upload(_ context.Context, folder, filename, _ string, r io.Reader, _ int64) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", fmt.Errorf("object store unavailable")
	}
	f.uploads++
	return "https://docs.test/" + folder + "/" + filename, nil
}

// fakeDirectory maps courses to teachers in memory.
type fakeDirectory map[string][]directory.Teacher

func (f fakeDirectory) TeachersFor(course string) []directory.Teacher {
	return f[course]
}

func createUser(t *testing.T, db *gorm.DB, name, email string, role actor.Role, course string) actor.Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
		Course:       course,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return actor.Actor{ID: user.ID, Name: name, Email: email, Role: role, Course: course}
}

func sampleSubmit(email, mobile, course string) *SubmitInput {
	docs := make(map[string]DocumentFile, len(DocumentFields))
	for _, field := range DocumentFields {
		field := field
		docs[field] = DocumentFile{
			Filename:    field + ".jpg",
			ContentType: "image/jpeg",
			Size:        3,
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("img")), nil
			},
		}
	}
	return &SubmitInput{
		Name:        "Ravi Kumar",
		Email:       email,
		Mobile:      mobile,
		DOB:         "2000-01-01",
		Gender:      "Male",
		State:       "Telangana",
		District:    "Hyderabad",
		Course:      course,
		Declaration: true,
		Documents:   docs,
	}
}

func newAdmissionFixture(t *testing.T) (*AdmissionService, *gorm.DB, *fakeNotifier, *fakeDocStore) {
	t.Helper()
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	docs := &fakeDocStore{}
	dir := fakeDirectory{
		"BasicComputers": {{Name: "Asha", Email: "asha@tti.org"}, {Name: "Vikram", Email: "vikram@tti.org"}},
	}
	feed := NewNotificationService(db)
	svc := NewAdmissionService(db, docs, notifier, dir, feed, "head@tti.org")
	return svc, db, notifier, docs
}
