package services

import (
	"context"
	"errors"

	"task-manager/models"
)

// UserStore is the slice of the user repository the service needs.
type UserStore interface {
	GetByUUID(ctx context.Context, uuid string) (*models.User, error)
	FindOrCreate(ctx context.Context, user *models.User) (*models.User, error)
	SearchByName(ctx context.Context, name string) ([]models.User, error)
}

// UserService is a thin facade over the users collection. Identity itself is
// established by the external provider; this service only mirrors its
// records.
type UserService struct {
	repo UserStore
}

func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// EnsureUser registers the identity provider's record on first sight and
// returns the existing one afterwards.
func (s *UserService) EnsureUser(ctx context.Context, uuid, name, email, image string) (*models.User, error) {
	return s.repo.FindOrCreate(ctx, &models.User{
		UUID:  uuid,
		Name:  name,
		Email: email,
		Image: image,
	})
}

func (s *UserService) GetUserByUUID(ctx context.Context, uuid string) (*models.User, error) {
	user, err := s.repo.GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnknownUser
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsersByName(ctx context.Context, name string) ([]models.User, error) {
	return s.repo.SearchByName(ctx, name)
}
