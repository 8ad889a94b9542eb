package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/models"
)

func newSupervisorEnv(t *testing.T) (*testEnv, *SupervisorService) {
	t.Helper()
	env := newTestEnv()
	svc := NewSupervisorService(env.users, env.projects, env.tasks, env.svc)
	return env, svc
}

func TestUpdateStatusValidation(t *testing.T) {
	env, svc := newSupervisorEnv(t)
	ctx := context.Background()
	supervisor := seedSupervisor(t, env.users, "prof", 7)

	if _, err := svc.UpdateStatus(ctx, supervisor, "busy"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpdateStatus(busy) error = %v, want %v", err, ErrInvalidInput)
	}

	updated, err := svc.UpdateStatus(ctx, supervisor, models.SupervisorFull)
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}
	if updated.Status != models.SupervisorFull {
		t.Errorf("status = %q, want %q", updated.Status, models.SupervisorFull)
	}
	if !updated.StatusOverride {
		t.Error("forcing full should record an override")
	}

	updated, err = svc.UpdateStatus(ctx, supervisor, models.SupervisorAvailable)
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}
	if updated.StatusOverride {
		t.Error("setting available should clear the override")
	}
}

func TestSetMaxProjectsRecompute(t *testing.T) {
	env, svc := newSupervisorEnv(t)
	ctx := context.Background()
	supervisor := seedSupervisor(t, env.users, "prof", 7)

	// Two supervised teams.
	for _, name := range []string{"a", "b"} {
		leader := seedStudent(t, env.users, "leader-"+name)
		if _, err := env.svc.CreateProject(ctx, leader, "Project "+name, "", supervisor, nil); err != nil {
			t.Fatalf("CreateProject() failed: %v", err)
		}
	}

	if _, err := svc.SetMaxProjects(ctx, supervisor, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetMaxProjects(0) error = %v, want %v", err, ErrInvalidInput)
	}

	// Lowering the cap below the live count flips to full.
	result, err := svc.SetMaxProjects(ctx, supervisor, 2)
	if err != nil {
		t.Fatalf("SetMaxProjects() failed: %v", err)
	}
	if result.Status != models.SupervisorFull {
		t.Errorf("status = %q, want %q", result.Status, models.SupervisorFull)
	}

	// Raising it again frees the supervisor.
	result, err = svc.SetMaxProjects(ctx, supervisor, 5)
	if err != nil {
		t.Fatalf("SetMaxProjects() failed: %v", err)
	}
	if result.Status != models.SupervisorAvailable {
		t.Errorf("status = %q, want %q", result.Status, models.SupervisorAvailable)
	}
}

func TestSetMaxProjectsKeepsManualOverride(t *testing.T) {
	env, svc := newSupervisorEnv(t)
	ctx := context.Background()
	supervisor := seedSupervisor(t, env.users, "prof", 7)

	if _, err := svc.UpdateStatus(ctx, supervisor, models.SupervisorFull); err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	// No supervised projects, so a recompute would say available; the
	// manual override must win.
	result, err := svc.SetMaxProjects(ctx, supervisor, 10)
	if err != nil {
		t.Fatalf("SetMaxProjects() failed: %v", err)
	}
	if result.Status != models.SupervisorFull {
		t.Errorf("status = %q, want manual override to hold %q", result.Status, models.SupervisorFull)
	}
}

func TestTeamDetailsOwnership(t *testing.T) {
	env, svc := newSupervisorEnv(t)
	ctx := context.Background()
	supervisor := seedSupervisor(t, env.users, "prof", 7)
	other := seedSupervisor(t, env.users, "other", 7)
	leader := seedStudent(t, env.users, "leader")

	result, err := env.svc.CreateProject(ctx, leader, "Thesis", "", supervisor, nil)
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}

	if _, err := svc.TeamDetails(ctx, other, result.ProjectID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign supervisor error = %v, want %v", err, ErrNotFound)
	}
	if _, err := svc.TeamDetails(ctx, supervisor, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown project error = %v, want %v", err, ErrNotFound)
	}

	details, err := svc.TeamDetails(ctx, supervisor, result.ProjectID)
	if err != nil {
		t.Fatalf("TeamDetails() failed: %v", err)
	}
	if details.ProjectStatus != StatusOnTrack {
		t.Errorf("projectStatus = %q, want %q", details.ProjectStatus, StatusOnTrack)
	}
	if details.ProgressSummary.TotalTasks != 0 {
		t.Errorf("totalTasks = %d, want 0", details.ProgressSummary.TotalTasks)
	}
	if details.Project.LeaderRef.Username != "leader" {
		t.Errorf("leader ref = %q, want %q", details.Project.LeaderRef.Username, "leader")
	}
}

func TestSupervisedStudentsDeduplicates(t *testing.T) {
	env, svc := newSupervisorEnv(t)
	ctx := context.Background()
	supervisor := seedSupervisor(t, env.users, "prof", 7)

	leaderA := seedStudent(t, env.users, "leaderA")
	leaderB := seedStudent(t, env.users, "leaderB")
	resultA, err := env.svc.CreateProject(ctx, leaderA, "Alpha", "", supervisor, nil)
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	if _, err := env.svc.CreateProject(ctx, leaderB, "Beta", "", supervisor, nil); err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	member := seedStudent(t, env.users, "member")
	if _, err := env.svc.JoinProject(ctx, member, resultA.TeamCode); err != nil {
		t.Fatalf("JoinProject() failed: %v", err)
	}

	students, err := svc.SupervisedStudents(ctx, supervisor)
	if err != nil {
		t.Fatalf("SupervisedStudents() failed: %v", err)
	}
	// Leaders appear both as leader and in the member list; the result must
	// still hold each student once.
	if len(students) != 3 {
		t.Errorf("students = %d, want 3", len(students))
	}
}

func TestTeamTasksTrimmedView(t *testing.T) {
	env, svc := newSupervisorEnv(t)
	taskSvc := NewTaskService(env.tasks, env.projects)
	ctx := context.Background()
	supervisor := seedSupervisor(t, env.users, "prof", 7)
	leader := seedStudent(t, env.users, "leader")

	result, err := env.svc.CreateProject(ctx, leader, "Thesis", "", supervisor, nil)
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	if _, err := taskSvc.CreateTask(ctx, leader, CreateTaskInput{Title: "Write intro"}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	tasks, err := svc.TeamTasks(ctx, supervisor, result.ProjectID)
	if err != nil {
		t.Fatalf("TeamTasks() failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Title != "Write intro" {
		t.Errorf("title = %q, want %q", tasks[0].Title, "Write intro")
	}
	if tasks[0].AssignedTo == nil || tasks[0].AssignedTo.Username != "leader" {
		t.Errorf("assignedTo = %+v, want leader ref", tasks[0].AssignedTo)
	}
}
