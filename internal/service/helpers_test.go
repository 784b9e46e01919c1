package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/micromata/projectforge-sub017/internal/importer"
	"github.com/micromata/projectforge-sub017/internal/repository"
	"github.com/micromata/projectforge-sub017/internal/testutil"
	"github.com/stretchr/testify/require"
)

const releaseYAML = `holidays:
  - date: 2010-06-03
    name: Corpus Christi

tasks:
  - id: 1
    title: Release 2.0
    children:
      - id: 2
        title: Requirements
        start: 2010-06-01
        duration: 10
        children:
          - id: 4
            title: Review
      - id: 3
        title: Implementation
        predecessor: 2
        offset: 10
      - id: 5
        title: Documentation
        predecessor: 3
        relation: START_START
        duration: 5
`

const otherProjectYAML = `tasks:
  - id: 20
    title: Other project
    children:
      - id: 21
        title: Hardware delivery
        start: 2010-07-01
        duration: 2
`

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

type serviceFixture struct {
	db        *sql.DB
	taskRepo  *repository.SQLiteTaskRepo
	chartRepo *repository.SQLiteChartRepo
	publisher *recordingPublisher
	tasks     TaskService
	holidays  HolidayService
	charts    ChartService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &serviceFixture{
		db:        database,
		taskRepo:  repository.NewSQLiteTaskRepo(database),
		chartRepo: repository.NewSQLiteChartRepo(database),
		publisher: &recordingPublisher{},
	}
	f.holidays = NewHolidayService(repository.NewSQLiteHolidayRepo(database), nil)
	f.tasks = NewTaskService(f.taskRepo, f.holidays, testutil.NewTestUoW(database), f.publisher)
	f.charts = NewChartService(f.chartRepo, f.taskRepo, f.holidays, f.publisher, nil)
	return f
}

func (f *serviceFixture) importYAML(t *testing.T, doc string) *ImportResult {
	t.Helper()
	schema, err := importer.ParseImportSchema([]byte(doc))
	require.NoError(t, err)
	result, err := f.tasks.ImportSchema(context.Background(), schema)
	require.NoError(t, err)
	return result
}

// newReleaseChart imports the release hierarchy and creates a chart on it.
func (f *serviceFixture) newReleaseChart(t *testing.T) string {
	t.Helper()
	f.importYAML(t, releaseYAML)
	chart, err := f.charts.Create(context.Background(), "", 1)
	require.NoError(t, err)
	return chart.ShortID
}

func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }
