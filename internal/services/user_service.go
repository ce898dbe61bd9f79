package services

import (
	"context"
	"fmt"

	"github.com/opositest/notification-service/internal/models"
	"github.com/opositest/notification-service/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserService encapsulates the user operations this service needs: admin
// authentication and activity tracking.
type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// AuthenticateAdmin verifies credentials and requires the admin role.
func (s *UserService) AuthenticateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Admin login with wrong password")
		return nil, fmt.Errorf("invalid credentials")
	}

	if user.Role != "admin" {
		logrus.WithField("email", email).Warn("Non-admin attempted admin login")
		return nil, fmt.Errorf("invalid credentials")
	}

	return user, nil
}

// GetUser fetches a user by hex id.
func (s *UserService) GetUser(ctx context.Context, idHex string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}
	return s.repo.GetUserByID(ctx, id)
}

// UpdateLastActive stamps the user's last activity time.
func (s *UserService) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.UpdateLastActive(ctx, id)
}
