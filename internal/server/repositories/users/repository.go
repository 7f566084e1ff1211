// Package users is the credential store: user records keyed by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/signmanager/internal/server/models"
)

// Repository persists credential records. Create returns
// common.ErrorAlreadyExists when the email is taken, lookups return
// common.ErrorNotFound for unknown emails.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
