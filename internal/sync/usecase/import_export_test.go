package usecase

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "remindkit/internal/sync/domain"
	syncrepo "remindkit/internal/sync/repository"
	taskdomain "remindkit/internal/task/domain"
	taskrepo "remindkit/internal/task/repository"
)

func newExportUsecase(t *testing.T) (SyncUsecase, taskrepo.LocalStore) {
	t.Helper()
	local := newLocalStore(t)
	uc := NewSyncUsecase(local, syncrepo.NewMemoryRemoteStore(), quietLogger())
	return uc, local
}

func TestExportJSONImportRoundTrip(t *testing.T) {
	uc, local := newExportUsecase(t)
	due := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, local.Put(&taskdomain.Task{
		ID: "t1", Title: "water plants", CreatedAt: due.AddDate(0, 0, -7),
		DueAt: &due, Recurrence: taskdomain.RecurrenceDaily, RemindBeforeMinutes: 15,
	}))
	require.NoError(t, local.Put(&taskdomain.Task{
		ID: "t2", Title: "call dentist", CreatedAt: due.AddDate(0, 0, -3),
	}))

	var buf bytes.Buffer
	require.NoError(t, uc.ExportJSON(&buf))

	var backup Backup
	require.NoError(t, json.Unmarshal(buf.Bytes(), &backup))
	assert.Equal(t, backupFormatVersion, backup.Metadata.Version)
	assert.Equal(t, 2, backup.Metadata.TaskCount)

	fresh, freshLocal := newExportUsecase(t)
	result, err := fresh.Import(bytes.NewReader(buf.Bytes()), syncdomain.DuplicateSkip)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedCount)
	assert.Empty(t, result.Errors)

	got, err := freshLocal.Get("t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "water plants", got.Title)
	assert.Equal(t, taskdomain.RecurrenceDaily, got.Recurrence)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(due))
	assert.Equal(t, 15, got.RemindBeforeMinutes)
}

func TestExportCSVQuotesEmbeddedDelimiters(t *testing.T) {
	uc, local := newExportUsecase(t)
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, local.Put(&taskdomain.Task{
		ID:        "t1",
		Title:     `"Buy milk," and "eggs"`,
		Notes:     "from the market\nbefore noon",
		CreatedAt: created,
	}))

	var buf bytes.Buffer
	require.NoError(t, uc.ExportCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, `"Buy milk," and "eggs"`, rows[1][0])
	assert.Equal(t, "from the market\nbefore noon", rows[1][1])
	assert.Equal(t, "Pending", rows[1][4])
}

func TestExportCSVStatusAndDates(t *testing.T) {
	uc, local := newExportUsecase(t)
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	completed := created.Add(2 * time.Hour)

	require.NoError(t, local.Put(&taskdomain.Task{
		ID: "t1", Title: "done already", CreatedAt: created,
		IsCompleted: true, CompletedAt: &completed,
		Recurrence: taskdomain.RecurrenceWeekly, RemindBeforeMinutes: 5,
	}))

	var buf bytes.Buffer
	require.NoError(t, uc.ExportCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	row := rows[1]
	assert.Equal(t, "Completed", row[4])
	assert.Equal(t, completed.Format(time.RFC3339), row[5])
	assert.Equal(t, "", row[3]) // no due date
	assert.Equal(t, "weekly", row[6])
	assert.Equal(t, "5", row[7])
}

func TestImportSkipKeepsExistingRecord(t *testing.T) {
	uc, local := newExportUsecase(t)
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, local.Put(&taskdomain.Task{ID: "dup", Title: "existing", CreatedAt: created}))

	backup := Backup{Tasks: []*taskdomain.Task{
		{ID: "dup", Title: "incoming", CreatedAt: created},
		{ID: "new", Title: "brand new", CreatedAt: created},
	}}
	payload, err := json.Marshal(backup)
	require.NoError(t, err)

	result, err := uc.Import(bytes.NewReader(payload), syncdomain.DuplicateSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Empty(t, result.Errors)

	got, _ := local.Get("dup")
	assert.Equal(t, "existing", got.Title)
}

func TestImportReplaceOverwrites(t *testing.T) {
	uc, local := newExportUsecase(t)
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, local.Put(&taskdomain.Task{ID: "dup", Title: "existing", CreatedAt: created, Version: 9}))

	backup := Backup{Tasks: []*taskdomain.Task{
		{ID: "dup", Title: "incoming", CreatedAt: created, Version: 1},
	}}
	payload, err := json.Marshal(backup)
	require.NoError(t, err)

	result, err := uc.Import(bytes.NewReader(payload), syncdomain.DuplicateReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 0, result.SkippedCount)

	// Replace is unconditional; the higher local version does not protect it.
	got, _ := local.Get("dup")
	assert.Equal(t, "incoming", got.Title)
	assert.Equal(t, int64(1), got.Version)
}

func TestImportCollectsPerRecordErrors(t *testing.T) {
	uc, local := newExportUsecase(t)
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	backup := Backup{Tasks: []*taskdomain.Task{
		{ID: "ok", Title: "fine", CreatedAt: created},
		{ID: "bad", Title: "", CreatedAt: created}, // missing title
		nil,
		{ID: "", Title: "no id", CreatedAt: created},
	}}
	payload, err := json.Marshal(backup)
	require.NoError(t, err)

	result, err := uc.Import(bytes.NewReader(payload), syncdomain.DuplicateSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Len(t, result.Errors, 3)

	got, _ := local.Get("ok")
	assert.NotNil(t, got)
}

func TestImportNormalizesNonCriticalFields(t *testing.T) {
	uc, local := newExportUsecase(t)
	created := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

	backup := Backup{Tasks: []*taskdomain.Task{
		{ID: "t1", Title: "odd fields", CreatedAt: created,
			Recurrence: "fortnightly", RemindBeforeMinutes: -30,
			SharedWith: []string{"bob"}},
	}}
	payload, err := json.Marshal(backup)
	require.NoError(t, err)

	result, err := uc.Import(bytes.NewReader(payload), syncdomain.DuplicateSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)

	got, _ := local.Get("t1")
	assert.Equal(t, taskdomain.RecurrenceNone, got.Recurrence)
	assert.Equal(t, 0, got.RemindBeforeMinutes)
	assert.True(t, got.IsShared)
}

func TestImportRejectsMalformedEnvelope(t *testing.T) {
	uc, _ := newExportUsecase(t)
	_, err := uc.Import(strings.NewReader("{not json"), syncdomain.DuplicateSkip)
	assert.Error(t, err)
}
