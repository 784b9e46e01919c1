package cli

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/micromata/projectforge-sub017/internal/repository"
	"github.com/micromata/projectforge-sub017/internal/service"
	"github.com/micromata/projectforge-sub017/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releaseFile = "../importer/testdata/release.yaml"

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	db := testutil.NewTestDB(t)

	taskRepo := repository.NewSQLiteTaskRepo(db)
	holidays := service.NewHolidayService(repository.NewSQLiteHolidayRepo(db), nil)

	return &App{
		Tasks:    service.NewTaskService(taskRepo, holidays, testutil.NewTestUoW(db), nil),
		Holidays: holidays,
		Charts:   service.NewChartService(repository.NewSQLiteChartRepo(db), taskRepo, holidays, nil, nil),
	}
}

// executeCmd runs a cobra command and captures stdout and stderr together.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return ansiPattern.ReplaceAllString(buf.String(), ""), err
}

// seedChart imports the release hierarchy and returns the short id of a
// chart over it.
func seedChart(t *testing.T, app *App) string {
	t.Helper()
	_, err := executeCmd(t, app, "task", "import", releaseFile)
	require.NoError(t, err)
	chart, err := app.Charts.Create(context.Background(), "Release", 1)
	require.NoError(t, err)
	return chart.ShortID
}

func TestTaskImportAndList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "task", "import", releaseFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 5 tasks and 1 holidays")
	assert.Contains(t, out, "root task #1")

	out, err = executeCmd(t, app, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Requirements")
	assert.Contains(t, out, "FS #2+10")
	assert.Contains(t, out, "SS #3")
}

func TestTaskList_Empty(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestTaskTree(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "task", "import", releaseFile)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "task", "tree", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "RELEASE 2.0")
	assert.Contains(t, out, "2010-06-01 → 2010-06-16")

	_, err = executeCmd(t, app, "task", "tree", "abc")
	assert.Error(t, err)
}

func TestHolidayCommands(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "holiday", "add", "2010-12-25", "Christmas", "Day")
	require.NoError(t, err)
	assert.Contains(t, out, "Added holiday 2010-12-25 Christmas Day")

	out, err = executeCmd(t, app, "holiday", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2010-12-25  Sat  Christmas Day")

	_, err = executeCmd(t, app, "holiday", "remove", "2010-12-25")
	require.NoError(t, err)
	out, err = executeCmd(t, app, "holiday", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No holidays configured.")

	_, err = executeCmd(t, app, "holiday", "add", "25.12.2010")
	assert.Error(t, err)
}

func TestHolidayAdd_ReportsReplacedName(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "holiday", "add", "2010-06-03", "Corpus Christi")
	require.NoError(t, err)
	out, err := executeCmd(t, app, "holiday", "add", "2010-06-03", "Fronleichnam")
	require.NoError(t, err)
	assert.Contains(t, out, `Replaced holiday 2010-06-03 Fronleichnam (was "Corpus Christi")`)

	out, err = executeCmd(t, app, "holiday", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Fronleichnam")
	assert.NotContains(t, out, "Corpus Christi")
}

func TestChartCreateListShow(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "task", "import", releaseFile)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "chart", "create", "--root", "1", "--title", "Release plan")
	require.NoError(t, err)
	assert.Regexp(t, `Created chart Release plan \[gc-[0-9a-z]{8}\]`, out)
	ref := regexp.MustCompile(`gc-[0-9a-z]{8}`).FindString(out)

	out, err = executeCmd(t, app, "chart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, ref)
	assert.Contains(t, out, "Release plan")

	out, err = executeCmd(t, app, "chart", "show", ref)
	require.NoError(t, err)
	assert.Contains(t, out, "RELEASE PLAN ("+ref+")")
	assert.Contains(t, out, "#3 Implementation")
	assert.Contains(t, out, "2010-06-30 → -")
}

func TestChartCreate_RequiresRoot(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "chart", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")
}

func TestChartSet_OverridesAndClears(t *testing.T) {
	app := testApp(t)
	ref := seedChart(t, app)

	out, err := executeCmd(t, app, "chart", "set", ref, "--node", "2", "--duration", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "2010-06-01 → 2010-06-09  5d")
	assert.Contains(t, out, "2010-06-23 → -")

	out, err = executeCmd(t, app, "chart", "xml", ref)
	require.NoError(t, err)
	assert.Contains(t, out, `<ganttObject id="2" duration="5"/>`)

	_, err = executeCmd(t, app, "chart", "set", ref, "--node", "3",
		"--predecessor", "2", "--relation", "start-start", "--offset", "1")
	require.NoError(t, err)
	out, err = executeCmd(t, app, "chart", "xml", ref)
	require.NoError(t, err)
	assert.Contains(t, out, `relationType="START_START"`)
	assert.Contains(t, out, `predecessorOffset="1"`)

	_, err = executeCmd(t, app, "chart", "set", ref, "--node", "2", "--clear-start")
	require.NoError(t, err)
	out, err = executeCmd(t, app, "chart", "xml", ref)
	require.NoError(t, err)
	assert.Contains(t, out, `<startDate null="true"/>`)
}

func TestChartSet_Rejections(t *testing.T) {
	app := testApp(t)
	ref := seedChart(t, app)

	_, err := executeCmd(t, app, "chart", "set", ref, "--node", "3", "--relation", "sideways")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "chart", "set", ref, "--node", "3", "--start", "30.06.2010")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "chart", "set", ref, "--node", "3", "--duration", "2", "--clear-duration")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "chart", "set", ref, "--node", "3", "--predecessor", "3")
	assert.ErrorIs(t, err, service.ErrInvalidEdit)

	_, err = executeCmd(t, app, "chart", "set", ref, "--node", "99", "--duration", "1")
	assert.ErrorIs(t, err, service.ErrNodeNotFound)
}

func TestChartAddAndRemoveNode(t *testing.T) {
	app := testApp(t)
	ref := seedChart(t, app)

	out, err := executeCmd(t, app, "chart", "add-node", ref, "--parent", "1", "--title", "Sign-off", "--duration", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Added node Sign-off (#-1)")

	out, err = executeCmd(t, app, "chart", "show", ref)
	require.NoError(t, err)
	assert.Contains(t, out, "+ #-1 Sign-off")

	_, err = executeCmd(t, app, "chart", "set", ref, "--node", "-1", "--start", "2010-07-01")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "chart", "remove-node", ref, "--node", "2")
	assert.ErrorIs(t, err, service.ErrNotAdHoc)

	out, err = executeCmd(t, app, "chart", "remove-node", ref, "--node", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed node #-1")

	out, err = executeCmd(t, app, "chart", "xml", ref)
	require.NoError(t, err)
	assert.Contains(t, out, "No overrides stored.")
}

func TestChartShow_UnknownChart(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "chart", "show", "gc-missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChartDelete(t *testing.T) {
	t.Run("non-interactive without --yes is refused", func(t *testing.T) {
		app := testApp(t)
		ref := seedChart(t, app)

		_, err := executeCmd(t, app, "chart", "delete", ref)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--yes")
	})

	t.Run("--yes deletes", func(t *testing.T) {
		app := testApp(t)
		ref := seedChart(t, app)

		out, err := executeCmd(t, app, "chart", "delete", ref, "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted chart "+ref)

		out, err = executeCmd(t, app, "chart", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No charts found.")
	})

	t.Run("interactive confirm declined", func(t *testing.T) {
		app := testApp(t)
		ref := seedChart(t, app)
		app.IsInteractive = func() bool { return true }
		app.Confirm = func(string) (bool, error) { return false, nil }

		out, err := executeCmd(t, app, "chart", "delete", ref)
		require.NoError(t, err)
		assert.Contains(t, out, "Aborted.")

		charts, err := app.Charts.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, charts, 1)
	})

	t.Run("interactive confirm error", func(t *testing.T) {
		app := testApp(t)
		ref := seedChart(t, app)
		app.IsInteractive = func() bool { return true }
		app.Confirm = func(string) (bool, error) { return false, errors.New("user aborted") }

		_, err := executeCmd(t, app, "chart", "delete", ref)
		assert.EqualError(t, err, "user aborted")
	})
}
