package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/logging"
	"github.com/mohammedh897/graduation-backend/mailer"
	"github.com/mohammedh897/graduation-backend/models"
	"github.com/mohammedh897/graduation-backend/utils"
)

// teamCodeAttempts caps the generate-insert-retry loop. The code space is
// 31^6 so hitting this bound means something is wrong with the store.
const teamCodeAttempts = 20

type ProjectService struct {
	projects ProjectStore
	users    UserStore
	mailer   mailer.Service
}

func NewProjectService(projects ProjectStore, users UserStore, mailSvc mailer.Service) *ProjectService {
	return &ProjectService{
		projects: projects,
		users:    users,
		mailer:   mailSvc,
	}
}

type CreateProjectResult struct {
	ProjectID primitive.ObjectID `json:"projectId"`
	TeamCode  string             `json:"teamCode"`
}

// CreateProject registers a new team with the caller as leader and sole
// member, reserves a slot with the chosen supervisor and mails the team code
// to the invited addresses. Invite delivery is fire-and-forget.
func (s *ProjectService) CreateProject(ctx context.Context, leaderID primitive.ObjectID, name, description string, supervisorID primitive.ObjectID, inviteEmails []string) (*CreateProjectResult, error) {
	if name == "" || supervisorID.IsZero() {
		return nil, ErrInvalidInput
	}

	if _, err := s.projects.FindByMember(ctx, leaderID); err == nil {
		return nil, ErrAlreadyInProject
	} else if !errors.Is(err, ErrNoResult) {
		return nil, err
	}

	supervisor, err := s.users.FindByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrInvalidSupervisor
		}
		return nil, err
	}
	if supervisor.UserType != models.UserTypeSupervisor {
		return nil, ErrInvalidSupervisor
	}

	// The slot reservation doubles as the availability check: it only
	// matches a supervisor whose status is still "available".
	reserved, err := s.users.ReserveSupervisorSlot(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrSupervisorUnavailable
		}
		return nil, err
	}
	if reserved.CurrentProjects >= reserved.MaxProjects {
		if err := s.users.SetSupervisorStatus(ctx, supervisorID, models.SupervisorFull, false); err != nil {
			logging.Logger.Errorf("Event ID: SUPERVISOR_STATUS_UPDATE_FAILED, Description: Failed to flip supervisor %s to full: %v", supervisorID.Hex(), err)
		}
	}

	now := time.Now()
	project := &models.Project{
		ProjectName: name,
		Description: description,
		Supervisor:  supervisorID,
		Leader:      leaderID,
		Members:     []primitive.ObjectID{leaderID},
		Status:      models.ProjectOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The unique index on teamCode is the real uniqueness guarantee; a
	// duplicate-key insert just triggers another attempt.
	inserted := false
	for attempt := 0; attempt < teamCodeAttempts; attempt++ {
		project.TeamCode = utils.GenerateTeamCode()
		err := s.projects.Insert(ctx, project)
		if err == nil {
			inserted = true
			break
		}
		if !errors.Is(err, ErrDuplicateCode) {
			s.releaseSupervisorSlot(ctx, supervisorID)
			return nil, err
		}
	}
	if !inserted {
		s.releaseSupervisorSlot(ctx, supervisorID)
		return nil, fmt.Errorf("could not generate a unique team code after %d attempts", teamCodeAttempts)
	}

	if len(inviteEmails) > 0 {
		go s.sendInvites(inviteEmails, name, project.TeamCode)
	}

	return &CreateProjectResult{ProjectID: project.ID, TeamCode: project.TeamCode}, nil
}

// releaseSupervisorSlot undoes a reservation whose project insert failed, so
// a failed create does not eat supervisor capacity.
func (s *ProjectService) releaseSupervisorSlot(ctx context.Context, supervisorID primitive.ObjectID) {
	if err := s.users.ReleaseSupervisorSlot(ctx, supervisorID); err != nil {
		logging.Logger.Errorf("Event ID: SUPERVISOR_SLOT_RELEASE_FAILED, Description: Failed to release slot for supervisor %s: %v", supervisorID.Hex(), err)
	}
}

func (s *ProjectService) sendInvites(emails []string, projectName, teamCode string) {
	for _, email := range emails {
		if err := s.mailer.SendProjectInvite(email, projectName, teamCode); err != nil {
			logging.Logger.Warnf("Event ID: INVITE_SEND_FAILED, Description: Failed to send invite to %s: %v", email, err)
		}
	}
}

// JoinProject adds the caller to the team behind the code. The one-project
// guard also prevents joining the same team twice.
func (s *ProjectService) JoinProject(ctx context.Context, userID primitive.ObjectID, teamCode string) (*models.Project, error) {
	if teamCode == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.projects.FindByMember(ctx, userID); err == nil {
		return nil, ErrAlreadyInProject
	} else if !errors.Is(err, ErrNoResult) {
		return nil, err
	}

	project, err := s.projects.FindByTeamCode(ctx, teamCode)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if len(project.Members) >= models.MaxTeamSize {
		return nil, ErrProjectFull
	}

	// Conditional push: a miss here means the last slot went to a
	// concurrent join between our read and this write.
	updated, err := s.projects.AppendMember(ctx, teamCode, userID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrProjectFull
		}
		return nil, err
	}

	if len(updated.Members) >= models.MaxTeamSize && updated.Status != models.ProjectFull {
		updated.Status = models.ProjectFull
		if err := s.projects.SetStatus(ctx, updated.ID, models.ProjectFull); err != nil {
			logging.Logger.Errorf("Event ID: PROJECT_STATUS_UPDATE_FAILED, Description: Failed to mark project %s as full: %v", updated.ID.Hex(), err)
		}
	}

	return updated, nil
}

// GetMembership returns the user's project populated with display fields, or
// nil when the user has no project. Absence is not an error here.
func (s *ProjectService) GetMembership(ctx context.Context, userID primitive.ObjectID) (*models.ProjectView, error) {
	project, err := s.projects.FindByMember(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, nil
		}
		return nil, err
	}
	return s.PopulateView(ctx, project)
}

// PopulateView resolves supervisor, leader and member references into the
// trimmed display shape dashboards embed.
func (s *ProjectService) PopulateView(ctx context.Context, project *models.Project) (*models.ProjectView, error) {
	ids := make([]primitive.ObjectID, 0, len(project.Members)+2)
	ids = append(ids, project.Supervisor, project.Leader)
	ids = append(ids, project.Members...)

	users, err := s.users.FindManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	refs := make(map[primitive.ObjectID]models.UserRef, len(users))
	for _, u := range users {
		refs[u.ID] = u.Ref()
	}

	view := &models.ProjectView{Project: *project}
	view.SupervisorRef = refs[project.Supervisor]
	view.LeaderRef = refs[project.Leader]
	view.MemberRefs = make([]models.UserRef, 0, len(project.Members))
	for _, m := range project.Members {
		view.MemberRefs = append(view.MemberRefs, refs[m])
	}
	return view, nil
}

// GetProjectMembers lists the display refs for the caller's teammates.
func (s *ProjectService) GetProjectMembers(ctx context.Context, userID primitive.ObjectID) ([]models.UserRef, error) {
	project, err := s.projects.FindByMember(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	view, err := s.PopulateView(ctx, project)
	if err != nil {
		return nil, err
	}
	return view.MemberRefs, nil
}

// SetFinalPresentation schedules the final discussion. Only the project's
// supervisor may set it.
func (s *ProjectService) SetFinalPresentation(ctx context.Context, requesterID, projectID primitive.ObjectID, date time.Time) (*models.FinalPresentation, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.Supervisor != requesterID {
		return nil, ErrForbidden
	}

	fp := models.FinalPresentation{Date: date}
	if err := s.projects.SetFinalPresentation(ctx, projectID, fp); err != nil {
		return nil, err
	}
	return &fp, nil
}

// GetFinalPresentation is readable by the team and its supervisor; it
// returns nil when nothing has been scheduled yet.
func (s *ProjectService) GetFinalPresentation(ctx context.Context, requesterID, projectID primitive.ObjectID) (*models.FinalPresentation, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.Supervisor != requesterID && !project.HasMember(requesterID) {
		return nil, ErrForbidden
	}
	return project.FinalPresentation, nil
}
