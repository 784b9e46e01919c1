package repository

import (
	"context"
	"testing"
	"time"

	"github.com/micromata/projectforge-sub017/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChartFixture(t *testing.T) (*SQLiteChartRepo, *SQLiteTaskRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	tasks := NewSQLiteTaskRepo(database)
	seedTasks(t, tasks, testutil.ScenarioTasks()...)
	return NewSQLiteChartRepo(database), tasks
}

func TestChartRepo_CreateAndGet(t *testing.T) {
	repo, _ := newChartFixture(t)
	ctx := context.Background()

	chart := testutil.NewTestChart("Release plan", 1,
		testutil.WithChartShortID("gc-Abc12345"),
		testutil.WithGanttObjects(`<ganttObject id="1"/>`))
	require.NoError(t, repo.Create(ctx, chart))

	byID, err := repo.GetByID(ctx, chart.ID)
	require.NoError(t, err)
	assert.Equal(t, "Release plan", byID.Title)
	assert.Equal(t, int64(1), byID.RootTaskID)
	assert.Equal(t, `<ganttObject id="1"/>`, byID.GanttObjects)
	assert.Equal(t, chart.CreatedAt, byID.CreatedAt)

	byShort, err := repo.GetByShortID(ctx, "GC-abc12345")
	require.NoError(t, err)
	assert.Equal(t, chart.ID, byShort.ID)
}

func TestChartRepo_NotFound(t *testing.T) {
	repo, _ := newChartFixture(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByShortID(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, testutil.NewTestChart("ghost", 1)), ErrNotFound)
}

func TestChartRepo_RequiresExistingRootTask(t *testing.T) {
	repo, _ := newChartFixture(t)

	err := repo.Create(context.Background(), testutil.NewTestChart("Orphan", 404))
	assert.Error(t, err)
}

func TestChartRepo_UpdateLastWriteWins(t *testing.T) {
	repo, _ := newChartFixture(t)
	ctx := context.Background()

	chart := testutil.NewTestChart("Plan", 1)
	require.NoError(t, repo.Create(ctx, chart))

	first := *chart
	second := *chart
	first.GanttObjects = "first"
	second.GanttObjects = "second"
	second.UpdatedAt = chart.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, &first))
	require.NoError(t, repo.Update(ctx, &second))

	got, err := repo.GetByID(ctx, chart.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.GanttObjects)
	assert.Equal(t, second.UpdatedAt, got.UpdatedAt)
}

func TestChartRepo_ListAndCascade(t *testing.T) {
	repo, tasks := newChartFixture(t)
	ctx := context.Background()

	whole := testutil.NewTestChart("Whole project", 1)
	partial := testutil.NewTestChart("Only A", 2)
	partial.CreatedAt = whole.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, whole))
	require.NoError(t, repo.Create(ctx, partial))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, whole.ID, list[0].ID)

	// Removing the root task removes the chart built on it.
	require.NoError(t, tasks.Delete(ctx, 2))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, whole.ID, list[0].ID)
}
