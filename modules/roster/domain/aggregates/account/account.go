package account

import (
	"context"
	"errors"

	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
)

var ErrNotFound = errors.New("account not found")

type Account struct {
	URI string
	ID  string
}

type Repository interface {
	// GetByOwner finds the person's account under the fixed identifier
	// scheme (dcterms:identifier = external id). Returns ErrNotFound when
	// the person has no matching account.
	GetByOwner(ctx context.Context, personURI, externalID string) (*Account, error)
	// Create mints a new account linked to the person. Optional organisation
	// and target-group-code attributes are attached when present on rec.
	Create(ctx context.Context, personURI string, rec roster.UserRecord) (*Account, error)
}
