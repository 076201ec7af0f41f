package users

import (
	"context"

	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, id string, token string) error
}
