package person

import (
	"context"
	"errors"

	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
)

var ErrNotFound = errors.New("person not found")

// Person is the store-side identity record. URI is store-assigned;
// ExternalID is the caller-supplied userId used as the stable matching key.
type Person struct {
	URI        string
	ExternalID string
}

type Repository interface {
	// GetByExternalID looks a person up by the caller-supplied external
	// identifier. Returns ErrNotFound when no such person exists.
	GetByExternalID(ctx context.Context, externalID string) (*Person, error)
	// Create mints a new person with its identifier and initial group
	// membership in a single write.
	Create(ctx context.Context, rec roster.UserRecord, groupURI string) (*Person, error)
	// ReplaceMembership drops every existing group membership of the person
	// and inserts the new one, atomically from the caller's perspective.
	ReplaceMembership(ctx context.Context, personURI, groupURI string) error
}
