package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/cuke/internal/config"
	"github.com/chriserin/cuke/internal/db"
	"github.com/chriserin/cuke/internal/stepdef"
)

const loginFeature = `Feature: Login
  Scenario: User logs in
    Given a user named "ann"
    When she logs in
    Then she sees the dashboard

  Scenario: Wrong password
    Given a user named "bob"
    When he logs in with password "nope"
    Then he sees an error
`

func loginSteps() *stepdef.Registry {
	r := stepdef.New()
	r.Given(`^a user named "([^"]*)"$`, func(w *stepdef.World, name string) { w.Set("user", name) })
	r.When(`^(?:she|he) logs in$`, func(w *stepdef.World) { w.Set("page", "dashboard") })
	r.Then(`^she sees the dashboard$`, func(w *stepdef.World) error {
		if w.String("page") != "dashboard" {
			return errors.New("not on the dashboard")
		}
		return nil
	})
	return r
}

func runRun(t *testing.T, c config.Config, r *stepdef.Registry, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := RunRun(context.Background(), &buf, c, r, args)
	return buf.String(), err
}

func openHistory(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.Open("features/cuke.db")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func TestRun_PassingFeature(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))

	out, err := runRun(t, config.Default(), loginSteps(), "features/login.feature:2")
	require.NoError(t, err)

	assert.Contains(t, out, "Feature: Login")
	assert.Contains(t, out, `    Given a user named "ann"`)
	assert.Contains(t, out, "1 scenario (1 passed)")
	assert.Contains(t, out, "3 steps (3 passed)")
}

func TestRun_UndefinedStepsPassUnlessStrict(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))

	out, err := runRun(t, config.Default(), loginSteps())
	require.NoError(t, err)
	assert.Contains(t, out, "2 scenarios (1 undefined, 1 passed)")
	assert.Contains(t, out, "steps.When(`^he logs in with password \"([^\"]*)\"$`, func(arg1 string) error {")
	assert.Contains(t, out, "steps.Then(`^he sees an error$`, func() error {")

	c := config.Default()
	c.Strict = true
	_, err = runRun(t, c, loginSteps())
	assert.ErrorIs(t, err, ErrRunFailed)
}

func TestRun_FailingStep(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(`Feature: Login
  Scenario: Lost
    Given a user named "ann"
    Then she sees the dashboard
`), 0o644))

	c := config.Default()
	c.Format = "progress"
	out, err := runRun(t, c, loginSteps())

	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, out, ".F\n")
	assert.Contains(t, out, "not on the dashboard")
	assert.Contains(t, out, "features/login.feature:4:in `Then she sees the dashboard'")
}

func TestRun_RecordsHistory(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))

	_, err := runRun(t, config.Default(), loginSteps())
	require.NoError(t, err)

	sqlDB := openHistory(t)
	runs, err := db.RecentRuns(sqlDB, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].Success)
	assert.True(t, *runs[0].Success)

	counts, err := db.StatusCounts(sqlDB, runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"passed": 4, "undefined": 2}, counts)
}

func TestRun_CancelledRunFinishesHistory(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := RunRun(ctx, &buf, config.Default(), loginSteps(), nil)
	require.ErrorIs(t, err, context.Canceled)

	runs, err := db.RecentRuns(openHistory(t), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotNil(t, runs[0].FinishedAt)
	require.NotNil(t, runs[0].Success)
	assert.False(t, *runs[0].Success)
}

func TestRun_HistoryDisabled(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))

	c := config.Default()
	c.History.Enabled = false
	_, err := runRun(t, c, loginSteps())
	require.NoError(t, err)

	runs, err := db.RecentRuns(openHistory(t), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRun_WithoutInitSkipsHistory(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile("login.feature", []byte(loginFeature), 0o644))

	_, err := runRun(t, config.Default(), loginSteps(), "login.feature")
	require.NoError(t, err)

	_, err = os.Stat(dir + "/features")
	assert.True(t, os.IsNotExist(err))
}

func TestRun_UnknownFormat(t *testing.T) {
	inTempDir(t)
	c := config.Default()
	c.Format = "html"

	_, err := runRun(t, c, loginSteps())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRunCommand_Flags(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(loginFeature), 0o644))
	registry = loginSteps()
	t.Cleanup(func() { registry = stepdef.New() })

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"run", "--format", "progress", "--strict", "--no-history"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		formatFlag, strictFlag, tagsFlag, noHistoryFlag = "pretty", false, "", false
	})

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, buf.String(), "....UU\n")

	runs, err := db.RecentRuns(openHistory(t), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRun_Tags(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("features/login.feature", []byte(`Feature: Login
  @smoke
  Scenario: User logs in
    Given a user named "ann"
    When she logs in
    Then she sees the dashboard

  Scenario: Wrong password
    Given a user named "bob"
    When he logs in with password "nope"
`), 0o644))

	c := config.Default()
	c.Tags = "@smoke"
	out, err := runRun(t, c, loginSteps())
	require.NoError(t, err)
	assert.Contains(t, out, "1 scenario (1 passed)")
	assert.NotContains(t, out, "Wrong password")

	c.Tags = "@smoke and"
	_, err = runRun(t, c, loginSteps())
	assert.Error(t, err)
}
