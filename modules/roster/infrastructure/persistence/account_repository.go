package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/roster-import/modules/roster/domain/aggregates/account"
	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
	"github.com/iota-uz/roster-import/pkg/sparql"
)

const accountServiceHomepage = "https://github.com/iota-uz/roster-import"

type AccountRepository struct {
	client sparql.Client
	base   ResourceBase
	now    func() time.Time
}

func NewAccountRepository(client sparql.Client, base ResourceBase) account.Repository {
	return &AccountRepository{client: client, base: base, now: time.Now}
}

func (r *AccountRepository) GetByOwner(ctx context.Context, personURI, externalID string) (*account.Account, error) {
	query := fmt.Sprintf(`%s
SELECT ?account ?accountId WHERE {
  %s foaf:account ?account .
  ?account a foaf:OnlineAccount ;
           mu:uuid ?accountId ;
           dcterms:identifier %s .
}`, prefixes, sparql.EscapeURI(personURI), sparql.EscapeString(externalID))

	results, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, gerrors.Wrapf(err, "lookup account of %s", personURI)
	}
	binding, ok := results.First()
	if !ok {
		return nil, account.ErrNotFound
	}
	return &account.Account{
		URI: binding.Value("account"),
		ID:  binding.Value("accountId"),
	}, nil
}

func (r *AccountRepository) Create(ctx context.Context, personURI string, rec roster.UserRecord) (*account.Account, error) {
	accountID := uuid.New().String()
	accountURI := r.base.AccountURI(accountID)

	var b strings.Builder
	fmt.Fprintf(&b, `%s
INSERT DATA {
  %s foaf:account %s .
  %s a foaf:OnlineAccount ;
     mu:uuid %s ;
     foaf:accountServiceHomepage %s ;
     dcterms:identifier %s ;
     dcterms:created %s .
`,
		prefixes,
		sparql.EscapeURI(personURI),
		sparql.EscapeURI(accountURI),
		sparql.EscapeURI(accountURI),
		sparql.EscapeString(accountID),
		sparql.EscapeURI(accountServiceHomepage),
		sparql.EscapeString(rec.UserID),
		sparql.EscapeDateTime(r.now()),
	)
	if rec.TargetGroupCode != "" {
		fmt.Fprintf(&b, "  %s ext:targetGroupCode %s .\n", sparql.EscapeURI(accountURI), sparql.EscapeString(rec.TargetGroupCode))
	}
	if rec.Organisation != "" {
		fmt.Fprintf(&b, "  %s ext:organisationName %s .\n", sparql.EscapeURI(accountURI), sparql.EscapeString(rec.Organisation))
	}
	b.WriteString("}\n")

	if err := r.client.Update(ctx, b.String()); err != nil {
		return nil, gerrors.Wrapf(err, "create account for %s", personURI)
	}
	return &account.Account{
		URI: accountURI,
		ID:  accountID,
	}, nil
}
