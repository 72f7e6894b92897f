package persistence

import (
	"context"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/roster-import/modules/roster/domain/entities/group"
	"github.com/iota-uz/roster-import/pkg/sparql"
)

type GroupRepository struct {
	client sparql.Client
}

func NewGroupRepository(client sparql.Client) group.Repository {
	return &GroupRepository{client: client}
}

// GetByLabel matches foaf:name case-insensitively so buckets keyed by the
// lowercased role still find groups named with their original casing.
// When several groups share a name, the first binding wins and the rest are
// ignored.
func (r *GroupRepository) GetByLabel(ctx context.Context, label string) (*group.Group, error) {
	query := fmt.Sprintf(`%s
SELECT ?group ?name WHERE {
  ?group a foaf:Group ;
         foaf:name ?name .
  FILTER(LCASE(STR(?name)) = %s)
}`, prefixes, sparql.EscapeString(strings.ToLower(label)))

	results, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, gerrors.Wrapf(err, "lookup group %q", label)
	}
	binding, ok := results.First()
	if !ok {
		return nil, group.ErrNotFound
	}
	return &group.Group{
		URI:   binding.Value("group"),
		Label: binding.Value("name"),
	}, nil
}
