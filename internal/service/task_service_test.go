package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/micromata/projectforge-sub017/internal/events"
	"github.com/micromata/projectforge-sub017/internal/importer"
	"github.com/micromata/projectforge-sub017/internal/repository"
	"github.com/micromata/projectforge-sub017/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSchema_StoresTasksAndHolidays(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	result := f.importYAML(t, releaseYAML)
	assert.Equal(t, 5, result.TaskCount)
	assert.Equal(t, 1, result.HolidayCount)
	assert.Equal(t, []int64{1}, result.RootIDs)

	tasks, err := f.tasks.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 5)

	impl, err := f.tasks.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Implementation", impl.Title)
	require.NotNil(t, impl.PredecessorID)
	assert.Equal(t, int64(2), *impl.PredecessorID)
	assert.Equal(t, 10, impl.PredecessorOffset)

	holidays, err := f.holidays.List(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Corpus Christi", holidays[0].Name)

	assert.Equal(t, []string{events.TopicTasksImported}, f.publisher.Topics())
}

func TestImportSchema_ReimportUpdatesTasks(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.importYAML(t, releaseYAML)

	schema, err := importer.ParseImportSchema([]byte(releaseYAML))
	require.NoError(t, err)
	schema.Tasks[0].Children[1].Title = "Coding"
	_, err = f.tasks.ImportSchema(ctx, schema)
	require.NoError(t, err)

	task, err := f.tasks.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Coding", task.Title)

	tasks, err := f.tasks.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 5)
}

func TestImportSchema_ValidationFailureStoresNothing(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.tasks.ImportSchema(ctx, &importer.ImportSchema{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed")

	tasks, err := f.tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Empty(t, f.publisher.Topics())
}

func TestImportSchema_UnknownExternalPredecessor(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	schema, err := importer.ParseImportSchema([]byte(`tasks:
  - id: 30
    title: Follow-up
    predecessor: 99
`))
	require.NoError(t, err)

	_, err = f.tasks.ImportSchema(ctx, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predecessor 99")

	_, err = f.tasks.Get(ctx, 30)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImportSchema_ExternalPredecessorFromEarlierImport(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.importYAML(t, otherProjectYAML)

	schema, err := importer.ParseImportSchema([]byte(`tasks:
  - id: 30
    title: Installation
    predecessor: 21
`))
	require.NoError(t, err)
	_, err = f.tasks.ImportSchema(ctx, schema)
	require.NoError(t, err)

	task, err := f.tasks.Get(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(21), *task.PredecessorID)
}

func TestImportSchema_RollbackOnTaskWriteFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	holidays := NewHolidayService(repository.NewSQLiteHolidayRepo(database), nil)
	ctx := context.Background()

	// Exec calls: one upsert per task in depth-first order, then holidays.
	// Fail on #3 so two tasks are written inside the transaction first.
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 3,
		Err:    fmt.Errorf("injected task write failure"),
	}
	svc := NewTaskService(taskRepo, holidays, failUoW, nil)

	schema, err := importer.ParseImportSchema([]byte(releaseYAML))
	require.NoError(t, err)
	_, err = svc.ImportSchema(ctx, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected task write failure")

	tasks, err := taskRepo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks, "no tasks should exist after rollback")
}

func TestImportSchema_RollbackOnHolidayWriteFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	holidayRepo := repository.NewSQLiteHolidayRepo(database)
	ctx := context.Background()

	// Five task upserts succeed, the holiday upsert (#6) fails.
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 6,
		Err:    fmt.Errorf("injected holiday write failure"),
	}
	svc := NewTaskService(taskRepo, NewHolidayService(holidayRepo, nil), failUoW, nil)

	schema, err := importer.ParseImportSchema([]byte(releaseYAML))
	require.NoError(t, err)
	_, err = svc.ImportSchema(ctx, schema)
	require.Error(t, err)

	tasks, err := taskRepo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	holidays, err := holidayRepo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays)
}

func TestImport_FromFile(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.tasks.Import(context.Background(), "../importer/testdata/release.yaml")
	require.NoError(t, err)
	assert.Equal(t, 5, result.TaskCount)
}

func TestImport_MissingFile(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.tasks.Import(context.Background(), "testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading import file")
}

func TestTree_ResolvesAgainstStoredHolidays(t *testing.T) {
	f := newServiceFixture(t)
	f.importYAML(t, releaseYAML)

	chart, err := f.tasks.Tree(context.Background(), 1)
	require.NoError(t, err)

	reqs := chart.FindByID(2)
	assert.Equal(t, "2010-06-16", domain.FormatDate(reqs.CalculatedEndDate()))

	impl := chart.FindByID(3)
	assert.Equal(t, "2010-06-30", domain.FormatDate(impl.CalculatedStartDate()))
	assert.Nil(t, impl.CalculatedEndDate())

	docs := chart.FindByID(5)
	assert.Equal(t, "2010-06-30", domain.FormatDate(docs.CalculatedStartDate()))
	assert.Equal(t, "2010-07-07", domain.FormatDate(docs.CalculatedEndDate()))

	root := chart.Root
	assert.Equal(t, "2010-06-01", domain.FormatDate(root.CalculatedStartDate()))
	assert.Equal(t, "2010-07-07", domain.FormatDate(root.CalculatedEndDate()))
}

func TestTree_UnknownRoot(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.tasks.Tree(context.Background(), 42)
	require.Error(t, err)
}
