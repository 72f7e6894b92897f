package group

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("group not found")

type Group struct {
	URI   string
	Label string
}

type Repository interface {
	// GetByLabel resolves the group whose display name matches label,
	// compared case-insensitively. When the store holds several matches the
	// first in result order wins. Returns ErrNotFound for zero matches.
	GetByLabel(ctx context.Context, label string) (*Group, error)
}
