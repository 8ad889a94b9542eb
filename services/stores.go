package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/models"
)

// Store-level sentinels. Implementations translate their driver errors into
// these so the services stay independent of the persistence layer.
var (
	// ErrNoResult means a lookup matched no document.
	ErrNoResult = errors.New("no matching document")
	// ErrDuplicateCode means an insert violated the unique teamCode index.
	ErrDuplicateCode = errors.New("team code already taken")
)

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	FindAvailableSupervisors(ctx context.Context) ([]models.User, error)
	// ReserveSupervisorSlot atomically increments currentProjects for an
	// available supervisor and returns the updated document. ErrNoResult
	// means the supervisor is missing or no longer available.
	ReserveSupervisorSlot(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// ReleaseSupervisorSlot undoes a reservation whose project never landed:
	// decrements currentProjects and restores availability unless the status
	// was manually forced.
	ReleaseSupervisorSlot(ctx context.Context, id primitive.ObjectID) error
	SetSupervisorStatus(ctx context.Context, id primitive.ObjectID, status models.SupervisorStatus, override bool) error
	SetSupervisorCapacity(ctx context.Context, id primitive.ObjectID, maxProjects int, status models.SupervisorStatus) error
}

type ProjectStore interface {
	// Insert persists a new project; ErrDuplicateCode signals a teamCode
	// collision and the caller retries with a fresh code.
	Insert(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	// FindByMember matches projects where the user is the leader or a member.
	FindByMember(ctx context.Context, userID primitive.ObjectID) (*models.Project, error)
	FindByTeamCode(ctx context.Context, teamCode string) (*models.Project, error)
	// AppendMember pushes the user onto the member list only while the team
	// has a free slot, in a single conditional update. ErrNoResult means the
	// project vanished or filled up in the meantime.
	AppendMember(ctx context.Context, teamCode string, userID primitive.ObjectID) (*models.Project, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.ProjectStatus) error
	SetFinalPresentation(ctx context.Context, id primitive.ObjectID, fp models.FinalPresentation) error
	FindBySupervisor(ctx context.Context, supervisorID primitive.ObjectID) ([]models.Project, error)
	FindRecentBySupervisor(ctx context.Context, supervisorID primitive.ObjectID, limit int64) ([]models.Project, error)
	FindAll(ctx context.Context) ([]models.Project, error)
	CountBySupervisor(ctx context.Context, supervisorID primitive.ObjectID) (int64, error)
	// CountPresentationsBetween counts supervised projects whose final
	// presentation falls in [from, to]; a nil to leaves the range unbounded.
	CountPresentationsBetween(ctx context.Context, supervisorID primitive.ObjectID, from time.Time, to *time.Time) (int64, error)
}

type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	// FindByProject returns the project's tasks sorted newest-first.
	FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error)
	FindByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error)
	FindAll(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindDueReminders returns unsent reminders with reminderDate in [from, to).
	FindDueReminders(ctx context.Context, from, to time.Time) ([]models.Task, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
}
