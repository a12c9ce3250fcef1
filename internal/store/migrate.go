package store

import "github.com/valter-silva-au/tasktalk/pkg/models"

// migrateTasks normalizes persisted tasks from older shapes:
//
//   - the legacy single `tag` field is unioned into `tags` and cleared, so
//     `tags` is the sole source of truth from then on;
//   - the redundant done/status pair is reconciled: an explicit status wins,
//     otherwise status is derived from done;
//   - recurrence intervals below 1 are clamped to 1.
func migrateTasks(tasks []models.Task) []models.Task {
	for i := range tasks {
		t := &tasks[i]

		if t.Tag != "" {
			t.Tags = t.AllTags()
			t.Tag = ""
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}

		switch t.Status {
		case models.StatusCompleted:
			t.Done = true
		case models.StatusPending:
			t.Done = false
		case models.StatusArchived:
			// Archived keeps whatever done flag it had.
		default:
			if t.Done {
				t.Status = models.StatusCompleted
			} else {
				t.Status = models.StatusPending
			}
		}

		if t.Recurring != nil && t.Recurring.Interval < 1 {
			t.Recurring.Interval = 1
		}
	}
	return tasks
}
