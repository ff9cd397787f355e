package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/startin-app/startin/internal/auth"
	"github.com/startin-app/startin/internal/database"
	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/pkg/mail"
)

var testDBCounter int
var testDBCounterMu sync.Mutex

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBCounterMu.Lock()
	testDBCounter++
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared&_foreign_keys=1", testDBCounter)
	testDBCounterMu.Unlock()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestJWT(t *testing.T) *auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: strings.Repeat("s", 32)})
	require.NoError(t, err)
	return svc
}

func createUniversity(t *testing.T, db *gorm.DB, name string) *models.University {
	t.Helper()

	university := &models.University{Name: name, PasskeyHash: quickHash(t, name+"-passkey")}
	require.NoError(t, db.Create(university).Error)
	return university
}

func createStudent(t *testing.T, db *gorm.DB, universityID, email, password string) *models.Student {
	t.Helper()

	student := &models.Student{
		Email:        email,
		Password:     quickHash(t, password),
		UniversityID: universityID,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

func createCompany(t *testing.T, db *gorm.DB, universityID, email, password string) *models.Company {
	t.Helper()

	company := &models.Company{
		Email:        email,
		Password:     quickHash(t, password),
		UniversityID: universityID,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// quickHash uses the minimum bcrypt cost so fixture-heavy tests stay fast.
func quickHash(t *testing.T, secret string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// recordingMailer captures outgoing messages for assertions.
type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

// fixedClock returns a clock function pinned to a mutable instant.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(t time.Time) *fixedClock {
	return &fixedClock{t: t}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func sequentialCodes(codes ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		if i >= len(codes) {
			return codes[len(codes)-1], nil
		}
		code := codes[i]
		i++
		return code, nil
	}
}
