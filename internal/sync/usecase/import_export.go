package usecase

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	syncdomain "remindkit/internal/sync/domain"
	taskdomain "remindkit/internal/task/domain"
)

// backupFormatVersion identifies the export envelope layout
const backupFormatVersion = 1

// BackupMetadata describes an exported batch
type BackupMetadata struct {
	ExportedAt time.Time `json:"exportedAt"`
	Version    int       `json:"version"`
	TaskCount  int       `json:"taskCount"`
}

// Backup is the JSON export envelope
type Backup struct {
	Metadata BackupMetadata     `json:"metadata"`
	Tasks    []*taskdomain.Task `json:"tasks"`
}

var csvHeader = []string{
	"Title", "Notes", "Created Date", "Due Date", "Status",
	"Completed Date", "Recurrence", "Reminder Time (min)",
}

func (u *syncUsecase) ExportJSON(w io.Writer) error {
	tasks, err := u.local.List()
	if err != nil {
		return err
	}
	backup := Backup{
		Metadata: BackupMetadata{
			ExportedAt: time.Now().UTC(),
			Version:    backupFormatVersion,
			TaskCount:  len(tasks),
		},
		Tasks: tasks,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}

func (u *syncUsecase) ExportCSV(w io.Writer) error {
	tasks, err := u.local.List()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		status := "Pending"
		if t.IsCompleted {
			status = "Completed"
		}
		row := []string{
			t.Title,
			t.Notes,
			t.CreatedAt.Format(time.RFC3339),
			formatOptional(t.DueAt),
			status,
			formatOptional(t.CompletedAt),
			string(t.Recurrence),
			strconv.Itoa(t.RemindBeforeMinutes),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOptional(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.Format(time.RFC3339)
}

// importRecord is the validation shape for one imported task; only these
// fields are critical enough to reject the record over.
type importRecord struct {
	ID        string    `validate:"required"`
	Title     string    `validate:"required"`
	CreatedAt time.Time `validate:"required"`
}

func (u *syncUsecase) Import(r io.Reader, policy syncdomain.DuplicateHandling) (*syncdomain.ImportResult, error) {
	var backup Backup
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if policy != syncdomain.DuplicateReplace {
		policy = syncdomain.DuplicateSkip
	}

	validate := validator.New()
	result := &syncdomain.ImportResult{}

	for i, task := range backup.Tasks {
		if task == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: empty", i))
			continue
		}
		check := importRecord{ID: task.ID, Title: task.Title, CreatedAt: task.CreatedAt}
		if err := validate.Struct(check); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d (%s): %v", i, task.ID, err))
			continue
		}

		// Non-critical fields default safely instead of rejecting.
		task.Recurrence = taskdomain.ParseRecurrence(string(task.Recurrence))
		if task.RemindBeforeMinutes < 0 {
			task.RemindBeforeMinutes = 0
		}
		task.RefreshSharedFlag()

		imported := false
		skipped := false
		err := u.local.UpdateWithLock(task.ID, func(current *taskdomain.Task) (*taskdomain.Task, error) {
			if current != nil && policy == syncdomain.DuplicateSkip {
				skipped = true
				return nil, nil
			}
			// Replace overwrites unconditionally: bulk import is an explicit
			// user action, not a background merge, so no version comparison.
			imported = true
			return task.Clone(), nil
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d (%s): %v", i, task.ID, err))
			continue
		}
		if imported {
			result.ImportedCount++
		}
		if skipped {
			result.SkippedCount++
		}
	}

	u.log.WithFields(map[string]interface{}{
		"imported": result.ImportedCount,
		"skipped":  result.SkippedCount,
		"errors":   len(result.Errors),
	}).Info("import complete")
	return result, nil
}
