package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/models"
)

type SupervisorService struct {
	users      UserStore
	projects   ProjectStore
	tasks      TaskStore
	projectSvc *ProjectService
}

func NewSupervisorService(users UserStore, projects ProjectStore, tasks TaskStore, projectSvc *ProjectService) *SupervisorService {
	return &SupervisorService{
		users:      users,
		projects:   projects,
		tasks:      tasks,
		projectSvc: projectSvc,
	}
}

// UpdateStatus is the manual availability switch. Forcing "full" records an
// override so capacity recomputes leave it alone; switching back to
// "available" clears the override.
func (s *SupervisorService) UpdateStatus(ctx context.Context, supervisorID primitive.ObjectID, status models.SupervisorStatus) (*models.User, error) {
	if status != models.SupervisorAvailable && status != models.SupervisorFull {
		return nil, ErrInvalidInput
	}

	override := status == models.SupervisorFull
	if err := s.users.SetSupervisorStatus(ctx, supervisorID, status, override); err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.users.FindByID(ctx, supervisorID)
}

type CapacityResult struct {
	MaxProjects int                     `json:"maxProjects"`
	Status      models.SupervisorStatus `json:"status"`
}

// SetMaxProjects updates the team cap and recomputes availability from the
// live supervised-project count, unless the supervisor manually forced
// themselves full.
func (s *SupervisorService) SetMaxProjects(ctx context.Context, supervisorID primitive.ObjectID, maxProjects int) (*CapacityResult, error) {
	if maxProjects < 1 {
		return nil, ErrInvalidInput
	}

	supervisor, err := s.users.FindByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	status := supervisor.Status
	if !(supervisor.StatusOverride && supervisor.Status == models.SupervisorFull) {
		count, err := s.projects.CountBySupervisor(ctx, supervisorID)
		if err != nil {
			return nil, err
		}
		if count >= int64(maxProjects) {
			status = models.SupervisorFull
		} else {
			status = models.SupervisorAvailable
		}
	}

	if err := s.users.SetSupervisorCapacity(ctx, supervisorID, maxProjects, status); err != nil {
		return nil, err
	}

	return &CapacityResult{MaxProjects: maxProjects, Status: status}, nil
}

// AvailableSupervisors lists supervisors students can still pick.
func (s *SupervisorService) AvailableSupervisors(ctx context.Context) ([]models.User, error) {
	return s.users.FindAvailableSupervisors(ctx)
}

// SupervisedProjects returns the supervisor's teams with display fields.
func (s *SupervisorService) SupervisedProjects(ctx context.Context, supervisorID primitive.ObjectID) ([]models.ProjectView, error) {
	projects, err := s.projects.FindBySupervisor(ctx, supervisorID)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProjectView, 0, len(projects))
	for i := range projects {
		view, err := s.projectSvc.PopulateView(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// SupervisedStudents flattens leaders and members of all supervised teams
// into a deduplicated list.
func (s *SupervisorService) SupervisedStudents(ctx context.Context, supervisorID primitive.ObjectID) ([]models.UserRef, error) {
	projects, err := s.projects.FindBySupervisor(ctx, supervisorID)
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, p := range projects {
		for _, id := range append([]primitive.ObjectID{p.Leader}, p.Members...) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return []models.UserRef{}, nil
	}

	users, err := s.users.FindManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	refs := make([]models.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, u.Ref())
	}
	return refs, nil
}

type TeamDetails struct {
	Project           models.ProjectView        `json:"project"`
	ProgressSummary   models.ProgressSummary    `json:"progressSummary"`
	ProjectStatus     string                    `json:"projectStatus"`
	FinalPresentation *models.FinalPresentation `json:"finalPresentation"`
}

// TeamDetails returns one supervised team with its progress rollup. A
// project supervised by someone else is reported as not found, not
// forbidden, so the endpoint does not leak which project IDs exist.
func (s *SupervisorService) TeamDetails(ctx context.Context, supervisorID, projectID primitive.ObjectID) (*TeamDetails, error) {
	project, err := s.supervisedProject(ctx, supervisorID, projectID)
	if err != nil {
		return nil, err
	}

	view, err := s.projectSvc.PopulateView(ctx, project)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &TeamDetails{
		Project:           *view,
		ProgressSummary:   Summarize(tasks),
		ProjectStatus:     HealthStatus(tasks, time.Now()),
		FinalPresentation: project.FinalPresentation,
	}, nil
}

type TaskOverview struct {
	ID         primitive.ObjectID `json:"id"`
	Title      string             `json:"title"`
	Status     models.TaskStatus  `json:"status"`
	AssignedTo *models.UserRef    `json:"assignedTo"`
	DueDate    *time.Time         `json:"dueDate,omitempty"`
}

// TeamTasks returns a supervised team's tasks, newest first, trimmed to the
// fields the supervisor view renders.
func (s *SupervisorService) TeamTasks(ctx context.Context, supervisorID, projectID primitive.ObjectID) ([]TaskOverview, error) {
	if _, err := s.supervisedProject(ctx, supervisorID, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var assigneeIDs []primitive.ObjectID
	seen := make(map[primitive.ObjectID]bool)
	for _, t := range tasks {
		if !seen[t.AssignedTo] {
			seen[t.AssignedTo] = true
			assigneeIDs = append(assigneeIDs, t.AssignedTo)
		}
	}

	refs := make(map[primitive.ObjectID]models.UserRef)
	if len(assigneeIDs) > 0 {
		users, err := s.users.FindManyByIDs(ctx, assigneeIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			refs[u.ID] = u.Ref()
		}
	}

	overviews := make([]TaskOverview, 0, len(tasks))
	for _, t := range tasks {
		overview := TaskOverview{ID: t.ID, Title: t.Title, Status: t.Status, DueDate: t.DueDate}
		if ref, ok := refs[t.AssignedTo]; ok {
			refCopy := ref
			overview.AssignedTo = &refCopy
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}

func (s *SupervisorService) supervisedProject(ctx context.Context, supervisorID, projectID primitive.ObjectID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.Supervisor != supervisorID {
		return nil, ErrNotFound
	}
	return project, nil
}
