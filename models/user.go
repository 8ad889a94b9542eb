package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserType string

const (
	UserTypeStudent    UserType = "Student"
	UserTypeSupervisor UserType = "Supervisor"
)

type SupervisorStatus string

const (
	SupervisorAvailable SupervisorStatus = "available"
	SupervisorFull      SupervisorStatus = "full"
)

// DefaultMaxProjects is the number of teams a supervisor accepts unless changed.
const DefaultMaxProjects = 7

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	Email     string             `bson:"email" json:"email"`
	IsAdmin   bool               `bson:"isAdmin" json:"isAdmin"`
	UserType  UserType           `bson:"userType" json:"userType"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// Supervisor-only capacity fields. StatusOverride marks a manually forced
	// status so capacity recomputes do not clobber it.
	Status          SupervisorStatus `bson:"status,omitempty" json:"status,omitempty"`
	MaxProjects     int              `bson:"maxProjects,omitempty" json:"maxProjects,omitempty"`
	CurrentProjects int              `bson:"currentProjects" json:"currentProjects,omitempty"`
	StatusOverride  bool             `bson:"statusOverride" json:"-"`
}

// UserRef is the trimmed user shape embedded in populated project views.
type UserRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}
