package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/roster-import/modules/roster/domain/aggregates/account"
	"github.com/iota-uz/roster-import/modules/roster/domain/aggregates/person"
	"github.com/iota-uz/roster-import/modules/roster/domain/entities/group"
	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
	"github.com/iota-uz/roster-import/modules/roster/infrastructure/csvio"
	"github.com/iota-uz/roster-import/pkg/eventbus"
	"github.com/iota-uz/roster-import/pkg/metrics"
)

type ImportServiceOptions struct {
	Groups    group.Repository
	Persons   person.Repository
	Accounts  account.Repository
	Publisher eventbus.EventBus
	Logger    *logrus.Logger

	Delimiter  rune
	HeaderRows int
}

// ImportService drives the whole reconciliation pipeline: parse, bucket by
// role, resolve groups, upsert persons/accounts/memberships.
type ImportService struct {
	groups    group.Repository
	persons   person.Repository
	accounts  account.Repository
	publisher eventbus.EventBus
	logger    *logrus.Logger

	delimiter  rune
	headerRows int
}

func NewImportService(opts ImportServiceOptions) *ImportService {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportService{
		groups:     opts.Groups,
		persons:    opts.Persons,
		accounts:   opts.Accounts,
		publisher:  opts.Publisher,
		logger:     logger,
		delimiter:  opts.Delimiter,
		headerRows: opts.HeaderRows,
	}
}

// Import reconciles one roster stream against the identity store. A parse
// failure rejects the whole import; group-resolution and per-user upsert
// failures are contained to their bucket or user and reported as tagged
// entries in the returned report.
func (s *ImportService) Import(ctx context.Context, input io.Reader) (*roster.ImportReport, error) {
	start := time.Now()

	batch, err := csvio.NewReader(input, s.delimiter, s.headerRows).ReadAll()
	if err != nil {
		return nil, err
	}
	metrics.RowsParsed(len(batch))

	report := &roster.ImportReport{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, bucket := range GroupByRole(batch) {
		wg.Add(1)
		go func(b *roster.RoleBucket) {
			defer wg.Done()
			results := s.importBucket(ctx, b)
			mu.Lock()
			report.Results = append(report.Results, results...)
			mu.Unlock()
		}(bucket)
	}
	wg.Wait()

	for _, res := range report.Results {
		metrics.UserOutcome(string(res.Status))
	}
	metrics.ObserveImport(time.Since(start))
	if s.publisher != nil {
		s.publisher.Publish(roster.NewImportCompletedEvent(report))
	}
	return report, nil
}

func (s *ImportService) importBucket(ctx context.Context, b *roster.RoleBucket) []roster.UserResult {
	g, err := s.groups.GetByLabel(ctx, b.Role)
	if err != nil {
		status := roster.StatusFailed
		reason := err.Error()
		if errors.Is(err, group.ErrNotFound) {
			// soft: the whole bucket is skipped, the import carries on
			status = roster.StatusSkippedNoGroup
			reason = ""
			s.logger.WithField("role", b.Role).Warn("no group matches role, skipping bucket")
		} else {
			s.logger.WithField("role", b.Role).WithError(err).Error("group lookup failed")
		}
		results := make([]roster.UserResult, len(b.UsersToAdd))
		for i, rec := range b.UsersToAdd {
			results[i] = roster.UserResult{
				UserID: rec.UserID,
				Role:   rec.Role,
				Status: status,
				Error:  reason,
			}
		}
		return results
	}

	results := make([]roster.UserResult, len(b.UsersToAdd))
	var wg sync.WaitGroup
	for i, rec := range b.UsersToAdd {
		wg.Add(1)
		go func(i int, rec roster.UserRecord) {
			defer wg.Done()
			results[i] = s.upsertUser(ctx, rec, g.URI)
		}(i, rec)
	}
	wg.Wait()
	return results
}

// upsertUser runs the two-step find-or-create. There is no compensating
// rollback between the person and account steps; a failure after the person
// write leaves the person in place and reports the user as failed.
func (s *ImportService) upsertUser(ctx context.Context, rec roster.UserRecord, groupURI string) roster.UserResult {
	result := roster.UserResult{UserID: rec.UserID, Role: rec.Role}

	p, err := s.persons.GetByExternalID(ctx, rec.UserID)
	switch {
	case err == nil:
		if err := s.persons.ReplaceMembership(ctx, p.URI, groupURI); err != nil {
			return s.failed(result, rec, err)
		}
		result.Status = roster.StatusUpdated
	case errors.Is(err, person.ErrNotFound):
		p, err = s.persons.Create(ctx, rec, groupURI)
		if err != nil {
			return s.failed(result, rec, err)
		}
		result.Status = roster.StatusCreated
	default:
		return s.failed(result, rec, err)
	}

	acc, err := s.accounts.GetByOwner(ctx, p.URI, rec.UserID)
	if errors.Is(err, account.ErrNotFound) {
		acc, err = s.accounts.Create(ctx, p.URI, rec)
	}
	if err != nil {
		return s.failed(result, rec, err)
	}

	result.AccountURI = acc.URI
	result.AccountID = acc.ID
	return result
}

func (s *ImportService) failed(result roster.UserResult, rec roster.UserRecord, err error) roster.UserResult {
	s.logger.WithFields(logrus.Fields{
		"userId": rec.UserID,
		"role":   rec.Role,
	}).WithError(err).Error("user upsert failed")
	result.Status = roster.StatusFailed
	result.Error = err.Error()
	result.AccountURI = ""
	result.AccountID = ""
	return result
}
