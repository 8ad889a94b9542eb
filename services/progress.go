package services

import (
	"math"
	"time"

	"github.com/mohammedh897/graduation-backend/models"
)

// Project status labels shown on supervisor and admin dashboards.
const (
	StatusOnTrack        = "On Track"
	StatusNeedsAttention = "Needs Attention"
)

// Summarize rolls a task collection into a progress summary. An empty
// collection yields a 0% summary rather than a division by zero.
func Summarize(tasks []models.Task) models.ProgressSummary {
	summary := models.ProgressSummary{TotalTasks: len(tasks)}

	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			summary.CompletedTasks++
		case models.StatusInProgress:
			summary.InProgressTasks++
		case models.StatusPending:
			summary.PendingTasks++
		}
	}

	if summary.TotalTasks > 0 {
		summary.CompletionPercentage = int(math.Round(float64(summary.CompletedTasks) / float64(summary.TotalTasks) * 100))
	}
	return summary
}

// HealthStatus flags a project as "Needs Attention" when strictly more than
// half of its tasks are overdue and incomplete. Zero tasks is "On Track";
// exactly half overdue still is.
func HealthStatus(tasks []models.Task, now time.Time) string {
	total := len(tasks)
	if total == 0 {
		return StatusOnTrack
	}

	overdue := 0
	for _, t := range tasks {
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != models.StatusCompleted {
			overdue++
		}
	}

	if float64(overdue)/float64(total) > 0.5 {
		return StatusNeedsAttention
	}
	return StatusOnTrack
}
