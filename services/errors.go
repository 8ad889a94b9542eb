package services

import "errors"

// Error kinds surfaced by the membership, task and dashboard services. The
// handler layer maps these onto HTTP status codes; anything not listed here
// is treated as an unexpected store or collaborator failure.
var (
	ErrInvalidInput          = errors.New("required fields are missing")
	ErrAlreadyInProject      = errors.New("you are already in a project")
	ErrInvalidSupervisor     = errors.New("invalid supervisor")
	ErrSupervisorUnavailable = errors.New("supervisor not available")
	ErrInvalidCode           = errors.New("invalid team code")
	ErrProjectFull           = errors.New("this project already has 4 members")
	ErrNotInProject          = errors.New("you are not part of any project")
	ErrInvalidAssignee       = errors.New("assignee is not a member of your project")
	ErrForbidden             = errors.New("access forbidden")
	ErrNotFound              = errors.New("not found")
)
