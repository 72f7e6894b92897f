package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/roster-import/modules/roster/domain/aggregates/account"
	"github.com/iota-uz/roster-import/modules/roster/domain/aggregates/person"
	"github.com/iota-uz/roster-import/modules/roster/domain/entities/group"
	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
	"github.com/iota-uz/roster-import/modules/roster/services"
	"github.com/iota-uz/roster-import/pkg/eventbus"
)

// fakeStore is an in-memory identity store shared by the three fake
// repositories, mimicking the membership semantics of the real one.
type fakeStore struct {
	mu sync.Mutex

	groups      map[string]string // lowercased label -> group URI
	persons     map[string]string // external id -> person URI
	memberships map[string]string // person URI -> group URI
	accounts    map[string]*account.Account
	accountOrgs map[string]string // account URI -> organisation stored at creation

	failPersonCreate map[string]bool
	seq              int
}

func newFakeStore(groups map[string]string) *fakeStore {
	normalized := make(map[string]string, len(groups))
	for label, uri := range groups {
		normalized[strings.ToLower(label)] = uri
	}
	return &fakeStore{
		groups:           normalized,
		persons:          map[string]string{},
		memberships:      map[string]string{},
		accounts:         map[string]*account.Account{},
		accountOrgs:      map[string]string{},
		failPersonCreate: map[string]bool{},
	}
}

func (s *fakeStore) nextID(kind string) string {
	s.seq++
	return fmt.Sprintf("http://store/%s/%d", kind, s.seq)
}

type fakeGroups struct{ store *fakeStore }

func (r fakeGroups) GetByLabel(_ context.Context, label string) (*group.Group, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uri, ok := r.store.groups[strings.ToLower(label)]
	if !ok {
		return nil, group.ErrNotFound
	}
	return &group.Group{URI: uri, Label: label}, nil
}

type fakePersons struct{ store *fakeStore }

func (r fakePersons) GetByExternalID(_ context.Context, externalID string) (*person.Person, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uri, ok := r.store.persons[externalID]
	if !ok {
		return nil, person.ErrNotFound
	}
	return &person.Person{URI: uri, ExternalID: externalID}, nil
}

func (r fakePersons) Create(_ context.Context, rec roster.UserRecord, groupURI string) (*person.Person, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failPersonCreate[rec.UserID] {
		return nil, fmt.Errorf("store rejected person %s", rec.UserID)
	}
	uri := r.store.nextID("person")
	r.store.persons[rec.UserID] = uri
	r.store.memberships[uri] = groupURI
	return &person.Person{URI: uri, ExternalID: rec.UserID}, nil
}

func (r fakePersons) ReplaceMembership(_ context.Context, personURI, groupURI string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.memberships[personURI] = groupURI
	return nil
}

type fakeAccounts struct{ store *fakeStore }

func (r fakeAccounts) GetByOwner(_ context.Context, personURI, _ string) (*account.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acc, ok := r.store.accounts[personURI]
	if !ok {
		return nil, account.ErrNotFound
	}
	return acc, nil
}

func (r fakeAccounts) Create(_ context.Context, personURI string, rec roster.UserRecord) (*account.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uri := r.store.nextID("account")
	acc := &account.Account{URI: uri, ID: uri}
	r.store.accounts[personURI] = acc
	r.store.accountOrgs[uri] = rec.Organisation
	return acc, nil
}

func newService(store *fakeStore, bus eventbus.EventBus) *services.ImportService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return services.NewImportService(services.ImportServiceOptions{
		Groups:     fakeGroups{store},
		Persons:    fakePersons{store},
		Accounts:   fakeAccounts{store},
		Publisher:  bus,
		Logger:     logger,
		Delimiter:  ';',
		HeaderRows: 1,
	})
}

const header = "lastName;firstName;userId;email;organisation;role\n"

func resultFor(t *testing.T, report *roster.ImportReport, userID string) roster.UserResult {
	t.Helper()
	for _, res := range report.Results {
		if res.UserID == userID {
			return res
		}
	}
	t.Fatalf("no result for user %s", userID)
	return roster.UserResult{}
}

func TestImportService_CreatesPersonsAndAccounts(t *testing.T) {
	store := newFakeStore(map[string]string{"Admin": "http://store/group/admin"})
	svc := newService(store, nil)

	csv := header +
		"Doe;Jane;1;a@x;ACME;Admin\n" +
		";John;2;b@x;ACME;Admin\n"
	report, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	for _, userID := range []string{"1", "2"} {
		res := resultFor(t, report, userID)
		assert.Equal(t, roster.StatusCreated, res.Status)
		assert.NotEmpty(t, res.AccountURI)
		assert.NotEmpty(t, res.AccountID)
	}
	assert.Len(t, store.persons, 2)
	assert.Len(t, store.accounts, 2)
	assert.Equal(t, "http://store/group/admin", store.memberships[store.persons["1"]])
}

func TestImportService_Idempotence(t *testing.T) {
	store := newFakeStore(map[string]string{"admin": "http://store/group/admin"})
	svc := newService(store, nil)

	csv := header + "Doe;Jane;1;a@x;ACME;Admin\n"

	first, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, roster.StatusCreated, first.Results[0].Status)

	second, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, roster.StatusUpdated, second.Results[0].Status)

	// no duplicates, identifiers stable across runs
	assert.Len(t, store.persons, 1)
	assert.Len(t, store.accounts, 1)
	assert.Equal(t, first.Results[0].AccountURI, second.Results[0].AccountURI)
	assert.Equal(t, first.Results[0].AccountID, second.Results[0].AccountID)
	assert.Len(t, store.memberships, 1)
}

func TestImportService_MixedCaseRolesShareOneBucket(t *testing.T) {
	store := newFakeStore(map[string]string{"ADMIN": "http://store/group/admin"})
	svc := newService(store, nil)

	csv := header +
		"Doe;Jane;1;a@x;ACME;Admin\n" +
		"Roe;John;2;b@x;ACME;admin\n" +
		"Poe;Anna;3;c@x;ACME;ADMIN\n"
	report, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	for _, userID := range []string{"1", "2", "3"} {
		res := resultFor(t, report, userID)
		assert.Equal(t, roster.StatusCreated, res.Status)
		assert.Equal(t, "admin", res.Role)
	}
	for _, personURI := range store.persons {
		assert.Equal(t, "http://store/group/admin", store.memberships[personURI])
	}
}

func TestImportService_MissingGroupSkipsBucket(t *testing.T) {
	store := newFakeStore(map[string]string{"admin": "http://store/group/admin"})
	svc := newService(store, nil)

	csv := header +
		"Doe;Jane;1;a@x;ACME;Admin\n" +
		"Roe;John;2;b@x;ACME;Editor\n"
	report, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Equal(t, roster.StatusCreated, resultFor(t, report, "1").Status)
	skipped := resultFor(t, report, "2")
	assert.Equal(t, roster.StatusSkippedNoGroup, skipped.Status)
	assert.Empty(t, skipped.AccountURI)
	assert.Len(t, store.persons, 1)
}

func TestImportService_EmptyRoleIsSkipped(t *testing.T) {
	store := newFakeStore(map[string]string{"admin": "http://store/group/admin"})
	svc := newService(store, nil)

	csv := header + "Doe;Jane;1;a@x;ACME;\n"
	report, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, roster.StatusSkippedNoGroup, report.Results[0].Status)
	assert.Empty(t, store.persons)
}

func TestImportService_RoleChangeMovesMembership(t *testing.T) {
	store := newFakeStore(map[string]string{
		"admin":  "http://store/group/admin",
		"editor": "http://store/group/editor",
	})
	svc := newService(store, nil)

	_, err := svc.Import(context.Background(), strings.NewReader(header+"Doe;Jane;1;a@x;ACME;Admin\n"))
	require.NoError(t, err)

	report, err := svc.Import(context.Background(), strings.NewReader(header+"Doe;Jane;1;a@x;ACME;Editor\n"))
	require.NoError(t, err)
	require.Equal(t, roster.StatusUpdated, report.Results[0].Status)

	// exactly one membership, now to the editor group
	require.Len(t, store.memberships, 1)
	assert.Equal(t, "http://store/group/editor", store.memberships[store.persons["1"]])
}

func TestImportService_AccountAttributesAreStable(t *testing.T) {
	store := newFakeStore(map[string]string{"admin": "http://store/group/admin"})
	svc := newService(store, nil)

	first, err := svc.Import(context.Background(), strings.NewReader(header+"Doe;Jane;1;a@x;ACME;Admin\n"))
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), strings.NewReader(header+"Doe;Jane;1;a@x;Globex;Admin\n"))
	require.NoError(t, err)

	// re-import never rewrites account attributes
	assert.Equal(t, "ACME", store.accountOrgs[first.Results[0].AccountURI])
}

func TestImportService_UserFailureDoesNotAbortSiblings(t *testing.T) {
	store := newFakeStore(map[string]string{"admin": "http://store/group/admin"})
	store.failPersonCreate["2"] = true
	svc := newService(store, nil)

	csv := header +
		"Doe;Jane;1;a@x;ACME;Admin\n" +
		"Roe;John;2;b@x;ACME;Admin\n" +
		"Poe;Anna;3;c@x;ACME;Admin\n"
	report, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	failed := resultFor(t, report, "2")
	assert.Equal(t, roster.StatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "store rejected")

	assert.Equal(t, roster.StatusCreated, resultFor(t, report, "1").Status)
	assert.Equal(t, roster.StatusCreated, resultFor(t, report, "3").Status)
}

func TestImportService_ParseErrorRejectsWholeImport(t *testing.T) {
	store := newFakeStore(map[string]string{"admin": "http://store/group/admin"})
	svc := newService(store, nil)

	csv := header +
		"Doe;Jane;1;a@x;ACME;Admin\n" +
		"\"broken;row\n"
	report, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.Nil(t, report)

	var parseErr *roster.ParseError
	require.ErrorAs(t, err, &parseErr)

	// nothing was applied
	assert.Empty(t, store.persons)
	assert.Empty(t, store.accounts)
}

func TestImportService_PublishesCompletionEvent(t *testing.T) {
	store := newFakeStore(map[string]string{"admin": "http://store/group/admin"})
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(logger)

	var got *roster.ImportCompletedEvent
	bus.Subscribe(func(e *roster.ImportCompletedEvent) { got = e })

	svc := newService(store, bus)
	csv := header +
		"Doe;Jane;1;a@x;ACME;Admin\n" +
		"Roe;John;2;b@x;ACME;Editor\n"
	_, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, 1, got.Created)
	assert.Equal(t, 1, got.SkippedNoGroup)
	assert.Equal(t, 0, got.Failed)
}
