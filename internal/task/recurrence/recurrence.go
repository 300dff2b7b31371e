// Package recurrence expands a task's recurrence rule into virtual
// occurrence instants. Occurrences are never persisted; callers recompute
// them on demand.
package recurrence

import (
	"time"

	"remindkit/internal/task/domain"
)

// Occurrences returns every instant the task is due inside
// [rangeStart, rangeEnd], in ascending order. The task is never mutated.
//
// Rules:
//   - none:    at most the task's dueAt.
//   - daily:   every day at dueAt's time-of-day, from dueAt's date.
//   - weekly:  every weekday in the task's weeklyDays set, no earlier than dueAt.
//   - monthly: dueAt's day-of-month; months without that day are skipped
//     (day 31 in February produces nothing, not Feb 28).
//
// recurrenceEndDate caps every rule; occurrences after it are not generated.
func Occurrences(t *domain.Task, rangeStart, rangeEnd time.Time) []time.Time {
	if t.DueAt == nil || rangeEnd.Before(rangeStart) {
		return nil
	}
	due := *t.DueAt

	end := rangeEnd
	if t.RecurrenceEndDate != nil && t.RecurrenceEndDate.Before(end) {
		end = *t.RecurrenceEndDate
	}

	var out []time.Time
	switch t.Recurrence {
	case domain.RecurrenceDaily:
		for day := due; !day.After(end); day = day.AddDate(0, 0, 1) {
			appendInRange(&out, day, rangeStart, end)
		}
	case domain.RecurrenceWeekly:
		days := weekdaySet(t.WeeklyDays)
		for day := due; !day.After(end); day = day.AddDate(0, 0, 1) {
			if days[day.Weekday()] {
				appendInRange(&out, day, rangeStart, end)
			}
		}
	case domain.RecurrenceMonthly:
		year, month, dom := due.Date()
		hh, mm, ss := due.Clock()
		for {
			candidate := time.Date(year, month, dom, hh, mm, ss, due.Nanosecond(), due.Location())
			if candidate.After(end) {
				break
			}
			// time.Date normalizes overflow (Feb 31 -> Mar 3); a changed
			// day-of-month means the target month lacks that day.
			if candidate.Day() == dom && !candidate.Before(due) {
				appendInRange(&out, candidate, rangeStart, end)
			}
			month++
			if month > time.December {
				month = time.January
				year++
			}
		}
	default:
		appendInRange(&out, due, rangeStart, end)
	}
	return out
}

// NextAfter returns the first occurrence strictly after the given instant,
// scanning up to two years ahead. Used by the scheduling adapter to compute
// the next fire time for a recurring task.
func NextAfter(t *domain.Task, after time.Time) (time.Time, bool) {
	occ := Occurrences(t, after.Add(time.Nanosecond), after.AddDate(2, 0, 0))
	if len(occ) == 0 {
		return time.Time{}, false
	}
	return occ[0], true
}

func appendInRange(out *[]time.Time, candidate, rangeStart, rangeEnd time.Time) {
	if !candidate.Before(rangeStart) && !candidate.After(rangeEnd) {
		*out = append(*out, candidate)
	}
}

func weekdaySet(days []time.Weekday) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}
