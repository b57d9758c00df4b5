package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
)

var (
	testDBOnce sync.Once
	testDB     *database.DB
	testDBErr  error
)

var manila = time.FixedZone("PHT", 8*3600)

// newTestDB connects to TEST_DATABASE_URL, applies migrations once and
// truncates every table. Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(context.Background(), dsn)
		if testDBErr != nil {
			return
		}
		testDBErr = database.RunMigrations(testDB)
	})
	require.NoError(t, testDBErr)

	truncateAll(t, testDB)
	return testDB
}

func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		TRUNCATE TABLE logs, attendance_inconsistencies, attendance, schedules, global_settings, users CASCADE
	`)
	require.NoError(t, err)
}

func insertUser(t *testing.T, db *database.DB, userID, role, status string) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO users (user_id, first_name, last_name, role, status)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, "First "+userID, "Last "+userID, role, status)
	require.NoError(t, err)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, manila)
}

func date(day int) time.Time {
	return at(day, 0, 0)
}
