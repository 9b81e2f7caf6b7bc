package contract

import (
	"context"

	"github.com/google/uuid"

	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)

	CreateProvider(ctx context.Context, provider *entity.UserProvider) error
	FindProvider(ctx context.Context, specs ...specification.Specification) (*entity.UserProvider, error)

	CreateVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error
	FindVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error)
	DeleteVerificationToken(ctx context.Context, id uuid.UUID) error
}
