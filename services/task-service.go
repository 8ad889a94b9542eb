package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/models"
)

type TaskService struct {
	tasks    TaskStore
	projects ProjectStore
}

func NewTaskService(tasks TaskStore, projects ProjectStore) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

type CreateTaskInput struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AssignedTo   *primitive.ObjectID `json:"assignedTo,omitempty"`
	DueDate      *time.Time          `json:"dueDate,omitempty"`
	ReminderDate *time.Time          `json:"reminderDate,omitempty"`
}

// CreateTask creates a task inside the requester's project. The assignee
// defaults to the requester and must be on the same team.
func (s *TaskService) CreateTask(ctx context.Context, requesterID primitive.ObjectID, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrInvalidInput
	}

	project, err := s.projects.FindByMember(ctx, requesterID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotInProject
		}
		return nil, err
	}

	assignee := requesterID
	if input.AssignedTo != nil {
		assignee = *input.AssignedTo
	}
	if !project.HasMember(assignee) {
		return nil, ErrInvalidAssignee
	}

	now := time.Now()
	task := &models.Task{
		ProjectID:    project.ID,
		Title:        input.Title,
		Description:  input.Description,
		AssignedBy:   requesterID,
		AssignedTo:   assignee,
		Status:       models.StatusPending,
		Progress:     0,
		DueDate:      input.DueDate,
		ReminderDate: input.ReminderDate,
		ReminderSent: false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a field patch. Any member of the task's project may
// update it; ownership is not checked.
func (s *TaskService) UpdateTask(ctx context.Context, requesterID, taskID primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.findForMember(ctx, requesterID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Progress != nil && (*patch.Progress < 0 || *patch.Progress > 100) {
		return nil, ErrInvalidInput
	}
	if patch.Status != nil && !validTaskStatus(*patch.Status) {
		return nil, ErrInvalidInput
	}

	return s.tasks.Update(ctx, task.ID, patch)
}

// DeleteTask hard-deletes a task after the same membership check as update.
func (s *TaskService) DeleteTask(ctx context.Context, requesterID, taskID primitive.ObjectID) error {
	task, err := s.findForMember(ctx, requesterID, taskID)
	if err != nil {
		return err
	}
	return s.tasks.Delete(ctx, task.ID)
}

func (s *TaskService) findForMember(ctx context.Context, requesterID, taskID primitive.ObjectID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	project, err := s.projects.FindByMember(ctx, requesterID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if project.ID != task.ProjectID {
		return nil, ErrForbidden
	}
	return task, nil
}

// ProjectTasks lists the tasks of the requester's own project.
func (s *TaskService) ProjectTasks(ctx context.Context, requesterID primitive.ObjectID) ([]models.Task, error) {
	project, err := s.projects.FindByMember(ctx, requesterID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotInProject
		}
		return nil, err
	}
	return s.tasks.FindByProject(ctx, project.ID)
}

// AllTasks is the admin view across every project.
func (s *TaskService) AllTasks(ctx context.Context) ([]models.Task, error) {
	return s.tasks.FindAll(ctx)
}

// ProjectProgressSummary rolls up a project's tasks.
func (s *TaskService) ProjectProgressSummary(ctx context.Context, projectID primitive.ObjectID) (models.ProgressSummary, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, ErrNoResult) {
			return models.ProgressSummary{}, ErrNotFound
		}
		return models.ProgressSummary{}, err
	}

	tasks, err := s.tasks.FindByProject(ctx, projectID)
	if err != nil {
		return models.ProgressSummary{}, err
	}
	return Summarize(tasks), nil
}

// MyTaskSummary rolls up the tasks assigned to one user.
func (s *TaskService) MyTaskSummary(ctx context.Context, userID primitive.ObjectID) (models.ProgressSummary, error) {
	tasks, err := s.tasks.FindByAssignee(ctx, userID)
	if err != nil {
		return models.ProgressSummary{}, err
	}
	return Summarize(tasks), nil
}

// ProjectStatus computes the On Track / Needs Attention flag.
func (s *TaskService) ProjectStatus(ctx context.Context, projectID primitive.ObjectID) (string, error) {
	tasks, err := s.tasks.FindByProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	return HealthStatus(tasks, time.Now()), nil
}

func validTaskStatus(status models.TaskStatus) bool {
	switch status {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted:
		return true
	}
	return false
}
