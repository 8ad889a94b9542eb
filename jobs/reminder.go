package jobs

import (
	"context"
	"time"

	"github.com/mohammedh897/graduation-backend/logging"
	"github.com/mohammedh897/graduation-backend/mailer"
	"github.com/mohammedh897/graduation-backend/services"
)

// ReminderJob mails task reminders on a recurring timer. reminderSent is
// flipped only after a successful send, so a failed send gets retried on the
// next sweep and a delivered one is never repeated.
type ReminderJob struct {
	tasks    services.TaskStore
	users    services.UserStore
	mailer   mailer.Service
	interval time.Duration
}

func NewReminderJob(tasks services.TaskStore, users services.UserStore, mailSvc mailer.Service, interval time.Duration) *ReminderJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderJob{
		tasks:    tasks,
		users:    users,
		mailer:   mailSvc,
		interval: interval,
	}
}

// Run sweeps until the context is cancelled. Meant to be started in its own
// goroutine from main.
func (j *ReminderJob) Run(ctx context.Context) {
	logging.Logger.Infof("Event ID: REMINDER_JOB_START, Description: Reminder job running every %s", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Logger.Info("Event ID: REMINDER_JOB_STOP, Description: Reminder job stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx, time.Now())
		}
	}
}

// Sweep handles one pass over today's unsent reminders.
func (j *ReminderJob) Sweep(ctx context.Context, now time.Time) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	tasks, err := j.tasks.FindDueReminders(ctx, dayStart, dayEnd)
	if err != nil {
		logging.Logger.Errorf("Event ID: REMINDER_QUERY_FAILED, Description: Failed to query due reminders: %v", err)
		return
	}
	if len(tasks) == 0 {
		return
	}
	logging.Logger.Infof("Event ID: REMINDER_SWEEP, Description: Found %d task(s) with reminder today", len(tasks))

	for _, task := range tasks {
		user, err := j.users.FindByID(ctx, task.AssignedTo)
		if err != nil {
			logging.Logger.Warnf("Event ID: REMINDER_USER_LOOKUP_FAILED, Description: Assignee %s for task %s not found: %v", task.AssignedTo.Hex(), task.ID.Hex(), err)
			continue
		}

		if err := j.mailer.SendTaskReminder(user.Email, task.Title, task.DueDate); err != nil {
			// Leave reminderSent false so the next sweep retries.
			logging.Logger.Warnf("Event ID: REMINDER_SEND_FAILED, Description: Failed to send reminder for task %s to %s: %v", task.ID.Hex(), user.Email, err)
			continue
		}

		if err := j.tasks.MarkReminderSent(ctx, task.ID); err != nil {
			logging.Logger.Errorf("Event ID: REMINDER_FLAG_UPDATE_FAILED, Description: Reminder for task %s sent but flag not persisted: %v", task.ID.Hex(), err)
			continue
		}
		logging.Logger.Infof("Event ID: REMINDER_SENT, Description: Reminder for task %s sent to %s", task.ID.Hex(), user.Email)
	}
}
