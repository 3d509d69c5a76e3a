// File: internal/repository/user/interface.go
package user

import (
	"context"

	"github.com/healthadvisor/advisor-server/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, userID uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
