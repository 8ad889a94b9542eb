package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectOpen ProjectStatus = "open"
	ProjectFull ProjectStatus = "full"
)

// MaxTeamSize caps the member list, leader included.
const MaxTeamSize = 4

type FinalPresentation struct {
	Date time.Time `bson:"date" json:"date"`
}

type Project struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProjectName       string               `bson:"projectName" json:"projectName"`
	Description       string               `bson:"description,omitempty" json:"description,omitempty"`
	Supervisor        primitive.ObjectID   `bson:"supervisor" json:"supervisor"`
	Leader            primitive.ObjectID   `bson:"leader" json:"leader"`
	Members           []primitive.ObjectID `bson:"members" json:"members"`
	TeamCode          string               `bson:"teamCode" json:"teamCode"`
	Status            ProjectStatus        `bson:"status" json:"status"`
	FinalPresentation *FinalPresentation   `bson:"finalPresentation,omitempty" json:"finalPresentation,omitempty"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether the user is the leader or a listed member.
func (p *Project) HasMember(userID primitive.ObjectID) bool {
	if p.Leader == userID {
		return true
	}
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// ProjectView is a project populated with display fields for dashboards.
type ProjectView struct {
	Project
	SupervisorRef UserRef   `json:"supervisorInfo"`
	LeaderRef     UserRef   `json:"leaderInfo"`
	MemberRefs    []UserRef `json:"memberInfo"`
}
