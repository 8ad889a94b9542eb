package services

import (
	"context"
	"errors"
	"html"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohammedh897/graduation-backend/models"
	"github.com/mohammedh897/graduation-backend/utils"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSelfDeletion       = errors.New("you cannot delete your own account")
)

type RegisterInput struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Email    string          `json:"email"`
	IsAdmin  bool            `json:"isAdmin"`
	UserType models.UserType `json:"userType"`
}

// Register creates an account. Supervisors start available with the default
// team cap.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Username == "" || input.Password == "" || input.Email == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrNoResult) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrNoResult) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userType := input.UserType
	switch userType {
	case "":
		userType = models.UserTypeStudent
	case models.UserTypeStudent, models.UserTypeSupervisor:
	default:
		return nil, ErrInvalidInput
	}

	user := &models.User{
		Username:  html.EscapeString(input.Username),
		Password:  string(hashed),
		Email:     html.EscapeString(input.Email),
		IsAdmin:   input.IsAdmin,
		UserType:  userType,
		CreatedAt: time.Now(),
	}
	if userType == models.UserTypeSupervisor {
		user.Status = models.SupervisorAvailable
		user.MaxProjects = models.DefaultMaxProjects
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password and issues a bearer token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrInvalidInput
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return utils.GenerateToken(user)
}

// ListUsers is admin-only plumbing.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

// DeleteUser removes an account; admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, requesterID, targetID primitive.ObjectID) error {
	if requesterID == targetID {
		return ErrSelfDeletion
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, ErrNoResult) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
