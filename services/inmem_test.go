package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/models"
)

// In-memory store fakes so the membership and aggregation rules can be
// exercised without a running MongoDB.

type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *memUserStore) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNoResult
	}
	clone := *user
	return &clone, nil
}

func (s *memUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNoResult
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNoResult
}

func (s *memUserStore) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memUserStore) FindAll(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNoResult
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) FindAvailableSupervisors(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.UserType == models.UserTypeSupervisor && u.Status == models.SupervisorAvailable {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memUserStore) ReserveSupervisorSlot(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.UserType != models.UserTypeSupervisor || user.Status != models.SupervisorAvailable {
		return nil, ErrNoResult
	}
	user.CurrentProjects++
	clone := *user
	return &clone, nil
}

func (s *memUserStore) ReleaseSupervisorSlot(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.CurrentProjects == 0 {
		return ErrNoResult
	}
	user.CurrentProjects--
	if user.Status == models.SupervisorFull && !user.StatusOverride && user.CurrentProjects < user.MaxProjects {
		user.Status = models.SupervisorAvailable
	}
	return nil
}

func (s *memUserStore) SetSupervisorStatus(ctx context.Context, id primitive.ObjectID, status models.SupervisorStatus, override bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNoResult
	}
	user.Status = status
	user.StatusOverride = override
	return nil
}

func (s *memUserStore) SetSupervisorCapacity(ctx context.Context, id primitive.ObjectID, maxProjects int, status models.SupervisorStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNoResult
	}
	user.MaxProjects = maxProjects
	user.Status = status
	return nil
}

type memProjectStore struct {
	mu       sync.Mutex
	projects map[primitive.ObjectID]*models.Project
	// dupInserts forces the next N inserts to fail with ErrDuplicateCode,
	// simulating unique-index collisions.
	dupInserts int
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: make(map[primitive.ObjectID]*models.Project)}
}

func (s *memProjectStore) Insert(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dupInserts > 0 {
		s.dupInserts--
		return ErrDuplicateCode
	}
	for _, p := range s.projects {
		if p.TeamCode == project.TeamCode {
			return ErrDuplicateCode
		}
	}
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	clone := cloneProject(project)
	s.projects[project.ID] = clone
	return nil
}

func (s *memProjectStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNoResult
	}
	return cloneProject(p), nil
}

func (s *memProjectStore) FindByMember(ctx context.Context, userID primitive.ObjectID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.HasMember(userID) {
			return cloneProject(p), nil
		}
	}
	return nil, ErrNoResult
}

func (s *memProjectStore) FindByTeamCode(ctx context.Context, teamCode string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.TeamCode == teamCode {
			return cloneProject(p), nil
		}
	}
	return nil, ErrNoResult
}

func (s *memProjectStore) AppendMember(ctx context.Context, teamCode string, userID primitive.ObjectID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.TeamCode == teamCode {
			if len(p.Members) >= models.MaxTeamSize {
				return nil, ErrNoResult
			}
			p.Members = append(p.Members, userID)
			p.UpdatedAt = time.Now()
			return cloneProject(p), nil
		}
	}
	return nil, ErrNoResult
}

func (s *memProjectStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ProjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return ErrNoResult
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (s *memProjectStore) SetFinalPresentation(ctx context.Context, id primitive.ObjectID, fp models.FinalPresentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return ErrNoResult
	}
	p.FinalPresentation = &fp
	p.UpdatedAt = time.Now()
	return nil
}

func (s *memProjectStore) FindBySupervisor(ctx context.Context, supervisorID primitive.ObjectID) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, p := range s.projects {
		if p.Supervisor == supervisorID {
			out = append(out, *cloneProject(p))
		}
	}
	return out, nil
}

func (s *memProjectStore) FindRecentBySupervisor(ctx context.Context, supervisorID primitive.ObjectID, limit int64) ([]models.Project, error) {
	projects, _ := s.FindBySupervisor(ctx, supervisorID)
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	if int64(len(projects)) > limit {
		projects = projects[:limit]
	}
	return projects, nil
}

func (s *memProjectStore) FindAll(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, p := range s.projects {
		out = append(out, *cloneProject(p))
	}
	return out, nil
}

func (s *memProjectStore) CountBySupervisor(ctx context.Context, supervisorID primitive.ObjectID) (int64, error) {
	projects, _ := s.FindBySupervisor(ctx, supervisorID)
	return int64(len(projects)), nil
}

func (s *memProjectStore) CountPresentationsBetween(ctx context.Context, supervisorID primitive.ObjectID, from time.Time, to *time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, p := range s.projects {
		if p.Supervisor != supervisorID || p.FinalPresentation == nil {
			continue
		}
		date := p.FinalPresentation.Date
		if date.Before(from) {
			continue
		}
		if to != nil && date.After(*to) {
			continue
		}
		count++
	}
	return count, nil
}

func cloneProject(p *models.Project) *models.Project {
	clone := *p
	clone.Members = append([]primitive.ObjectID(nil), p.Members...)
	if p.FinalPresentation != nil {
		fp := *p.FinalPresentation
		clone.FinalPresentation = &fp
	}
	return &clone
}

type memTaskStore struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]*models.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[primitive.ObjectID]*models.Task)}
}

func (s *memTaskStore) Insert(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *memTaskStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNoResult
	}
	clone := *t
	return &clone, nil
}

func (s *memTaskStore) FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memTaskStore) FindByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.AssignedTo == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memTaskStore) FindAll(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (s *memTaskStore) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNoResult
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Progress != nil {
		t.Progress = *patch.Progress
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.ReminderDate != nil {
		t.ReminderDate = patch.ReminderDate
	}
	t.UpdatedAt = time.Now()
	clone := *t
	return &clone, nil
}

func (s *memTaskStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrNoResult
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) FindDueReminders(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.ReminderSent || t.ReminderDate == nil {
			continue
		}
		if t.ReminderDate.Before(from) || !t.ReminderDate.Before(to) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *memTaskStore) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return ErrNoResult
	}
	t.ReminderSent = true
	return nil
}

// recordingMailer captures sends for assertions.
type recordingMailer struct {
	mu      sync.Mutex
	invites []string
	fail    bool
}

func (m *recordingMailer) SendProjectInvite(to, projectName, teamCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errTestSend
	}
	m.invites = append(m.invites, to)
	return nil
}

func (m *recordingMailer) SendTaskReminder(to, taskTitle string, dueDate *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errTestSend
	}
	m.invites = append(m.invites, to)
	return nil
}

var errTestSend = &testSendError{}

type testSendError struct{}

func (*testSendError) Error() string { return "smtp unreachable" }
