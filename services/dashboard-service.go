package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/models"
)

// DefaultDiscussionWindowDays is how far ahead the "upcoming discussion"
// hint looks.
const DefaultDiscussionWindowDays = 7

const recentProjectsLimit = 3

type DashboardService struct {
	users          UserStore
	projects       ProjectStore
	tasks          TaskStore
	projectSvc     *ProjectService
	taskSvc        *TaskService
	supervisorSvc  *SupervisorService
	discussionDays int
}

func NewDashboardService(users UserStore, projects ProjectStore, tasks TaskStore, projectSvc *ProjectService, taskSvc *TaskService, supervisorSvc *SupervisorService, discussionDays int) *DashboardService {
	if discussionDays <= 0 {
		discussionDays = DefaultDiscussionWindowDays
	}
	return &DashboardService{
		users:          users,
		projects:       projects,
		tasks:          tasks,
		projectSvc:     projectSvc,
		taskSvc:        taskSvc,
		supervisorSvc:  supervisorSvc,
		discussionDays: discussionDays,
	}
}

// GetDashboard assembles the role-specific view. The admin view replaces the
// role view entirely when the flag is set.
func (s *DashboardService) GetDashboard(ctx context.Context, userID primitive.ObjectID) (interface{}, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user.IsAdmin {
		return s.adminDashboard(ctx)
	}

	switch user.UserType {
	case models.UserTypeSupervisor:
		return s.supervisorDashboard(ctx, user)
	default:
		return s.studentDashboard(ctx, userID)
	}
}

type StudentDashboard struct {
	models.ProjectView
	ProgressSummary models.ProgressSummary `json:"progressSummary"`
	MyTaskSummary   models.ProgressSummary `json:"myTaskSummary"`
}

func (s *DashboardService) studentDashboard(ctx context.Context, userID primitive.ObjectID) (interface{}, error) {
	view, err := s.projectSvc.GetMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		// No project yet: the client renders an empty dashboard.
		return struct{}{}, nil
	}

	progressSummary, err := s.taskSvc.ProjectProgressSummary(ctx, view.ID)
	if err != nil {
		return nil, err
	}
	myTaskSummary, err := s.taskSvc.MyTaskSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StudentDashboard{
		ProjectView:     *view,
		ProgressSummary: progressSummary,
		MyTaskSummary:   myTaskSummary,
	}, nil
}

type EnrichedProject struct {
	models.ProjectView
	CompletionPercentage int    `json:"completionPercentage"`
	ProjectStatus        string `json:"projectStatus"`
}

type CapacityInfo struct {
	MaxProjects     int                     `json:"maxProjects"`
	CurrentProjects int                     `json:"currentProjects"`
	Status          models.SupervisorStatus `json:"status"`
}

type UpcomingDiscussions struct {
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

type RecentProject struct {
	ID          primitive.ObjectID `json:"id"`
	ProjectName string             `json:"projectName"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type SupervisorDashboard struct {
	Projects            []EnrichedProject   `json:"projects"`
	TotalTeams          int                 `json:"totalTeams"`
	Capacity            CapacityInfo        `json:"capacity"`
	UpcomingDiscussions UpcomingDiscussions `json:"upcomingDiscussions"`
	RecentProjects      []RecentProject     `json:"recentProjects"`
}

func (s *DashboardService) supervisorDashboard(ctx context.Context, supervisor *models.User) (interface{}, error) {
	views, err := s.supervisorSvc.SupervisedProjects(ctx, supervisor.ID)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedProject, 0, len(views))
	now := time.Now()
	for _, view := range views {
		tasks, err := s.tasks.FindByProject(ctx, view.ID)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, EnrichedProject{
			ProjectView:          view,
			CompletionPercentage: Summarize(tasks).CompletionPercentage,
			ProjectStatus:        HealthStatus(tasks, now),
		})
	}

	discussions, err := s.GetUpcomingDiscussions(ctx, supervisor.ID, s.discussionDays)
	if err != nil {
		return nil, err
	}

	recent, err := s.projects.FindRecentBySupervisor(ctx, supervisor.ID, recentProjectsLimit)
	if err != nil {
		return nil, err
	}
	recentProjects := make([]RecentProject, 0, len(recent))
	for _, p := range recent {
		recentProjects = append(recentProjects, RecentProject{ID: p.ID, ProjectName: p.ProjectName, UpdatedAt: p.UpdatedAt})
	}

	return &SupervisorDashboard{
		Projects:   enriched,
		TotalTeams: len(enriched),
		Capacity: CapacityInfo{
			MaxProjects:     supervisor.MaxProjects,
			CurrentProjects: supervisor.CurrentProjects,
			Status:          supervisor.Status,
		},
		UpcomingDiscussions: *discussions,
		RecentProjects:      recentProjects,
	}, nil
}

// GetUpcomingDiscussions counts all future final presentations for a
// supervisor and says whether any fall inside the hint window.
func (s *DashboardService) GetUpcomingDiscussions(ctx context.Context, supervisorID primitive.ObjectID, days int) (*UpcomingDiscussions, error) {
	today := time.Now()
	windowEnd := today.AddDate(0, 0, days)

	allUpcoming, err := s.projects.CountPresentationsBetween(ctx, supervisorID, today, nil)
	if err != nil {
		return nil, err
	}
	withinWindow, err := s.projects.CountPresentationsBetween(ctx, supervisorID, today, &windowEnd)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("No discussions within the next %d days", days)
	if withinWindow > 0 {
		message = fmt.Sprintf("There is an upcoming discussion within %d days", days)
	}

	return &UpcomingDiscussions{Count: allUpcoming, Message: message}, nil
}

type AdminDashboard struct {
	Projects      []EnrichedProject `json:"projects"`
	TotalProjects int               `json:"totalProjects"`
}

func (s *DashboardService) adminDashboard(ctx context.Context) (interface{}, error) {
	projects, err := s.projects.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedProject, 0, len(projects))
	now := time.Now()
	for i := range projects {
		view, err := s.projectSvc.PopulateView(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		tasks, err := s.tasks.FindByProject(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, EnrichedProject{
			ProjectView:          *view,
			CompletionPercentage: Summarize(tasks).CompletionPercentage,
			ProjectStatus:        HealthStatus(tasks, now),
		})
	}

	return &AdminDashboard{Projects: enriched, TotalProjects: len(enriched)}, nil
}
