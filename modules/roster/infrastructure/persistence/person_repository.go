package persistence

import (
	"context"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/roster-import/modules/roster/domain/aggregates/person"
	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
	"github.com/iota-uz/roster-import/pkg/sparql"
)

type PersonRepository struct {
	client sparql.Client
	base   ResourceBase
}

func NewPersonRepository(client sparql.Client, base ResourceBase) person.Repository {
	return &PersonRepository{client: client, base: base}
}

func (r *PersonRepository) GetByExternalID(ctx context.Context, externalID string) (*person.Person, error) {
	query := fmt.Sprintf(`%s
SELECT ?person WHERE {
  ?person a foaf:Person ;
          adms:identifier ?identifier .
  ?identifier skos:notation %s .
}`, prefixes, sparql.EscapeString(externalID))

	results, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, gerrors.Wrapf(err, "lookup person %q", externalID)
	}
	binding, ok := results.First()
	if !ok {
		return nil, person.ErrNotFound
	}
	return &person.Person{
		URI:        binding.Value("person"),
		ExternalID: externalID,
	}, nil
}

func (r *PersonRepository) Create(ctx context.Context, rec roster.UserRecord, groupURI string) (*person.Person, error) {
	personID := uuid.New().String()
	personURI := r.base.PersonURI(personID)
	identifierID := uuid.New().String()
	identifierURI := r.base.IdentifierURI(identifierID)

	var b strings.Builder
	fmt.Fprintf(&b, `%s
INSERT DATA {
  %s a foaf:Person ;
     mu:uuid %s ;
     adms:identifier %s .
  %s foaf:member %s .
  %s a adms:Identifier ;
     mu:uuid %s ;
     skos:notation %s .
`,
		prefixes,
		sparql.EscapeURI(personURI),
		sparql.EscapeString(personID),
		sparql.EscapeURI(identifierURI),
		sparql.EscapeURI(groupURI),
		sparql.EscapeURI(personURI),
		sparql.EscapeURI(identifierURI),
		sparql.EscapeString(identifierID),
		sparql.EscapeString(rec.UserID),
	)
	if rec.FirstName != "" {
		fmt.Fprintf(&b, "  %s foaf:firstName %s .\n", sparql.EscapeURI(personURI), sparql.EscapeString(rec.FirstName))
	}
	if rec.LastName != "" {
		fmt.Fprintf(&b, "  %s foaf:familyName %s .\n", sparql.EscapeURI(personURI), sparql.EscapeString(rec.LastName))
	}
	b.WriteString("}\n")

	if err := r.client.Update(ctx, b.String()); err != nil {
		return nil, gerrors.Wrapf(err, "create person %q", rec.UserID)
	}
	return &person.Person{
		URI:        personURI,
		ExternalID: rec.UserID,
	}, nil
}

// ReplaceMembership sends a single update request with two operations so the
// delete and insert apply together from the caller's perspective.
func (r *PersonRepository) ReplaceMembership(ctx context.Context, personURI, groupURI string) error {
	update := fmt.Sprintf(`%s
DELETE WHERE {
  ?group foaf:member %s .
} ;
INSERT DATA {
  %s foaf:member %s .
}`,
		prefixes,
		sparql.EscapeURI(personURI),
		sparql.EscapeURI(groupURI),
		sparql.EscapeURI(personURI),
	)
	if err := r.client.Update(ctx, update); err != nil {
		return gerrors.Wrapf(err, "reconcile membership of %s", personURI)
	}
	return nil
}
