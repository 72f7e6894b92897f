package roster

type ImportStatus string

const (
	StatusCreated        ImportStatus = "created"
	StatusUpdated        ImportStatus = "updated"
	StatusSkippedNoGroup ImportStatus = "skipped_no_group"
	StatusFailed         ImportStatus = "failed"
)

// UserResult is the tagged outcome of one user's upsert. Skipped and failed
// users appear here too; nothing vanishes from the report.
type UserResult struct {
	UserID     string
	Role       string
	AccountURI string
	AccountID  string
	Status     ImportStatus
	Error      string
}

type ImportReport struct {
	Results []UserResult
}

// Totals counts results per status.
func (r *ImportReport) Totals() map[ImportStatus]int {
	totals := make(map[ImportStatus]int, 4)
	for _, res := range r.Results {
		totals[res.Status]++
	}
	return totals
}

// ImportCompletedEvent is published on the event bus after every import run.
type ImportCompletedEvent struct {
	Created        int
	Updated        int
	SkippedNoGroup int
	Failed         int
}

func NewImportCompletedEvent(report *ImportReport) *ImportCompletedEvent {
	totals := report.Totals()
	return &ImportCompletedEvent{
		Created:        totals[StatusCreated],
		Updated:        totals[StatusUpdated],
		SkippedNoGroup: totals[StatusSkippedNoGroup],
		Failed:         totals[StatusFailed],
	}
}
