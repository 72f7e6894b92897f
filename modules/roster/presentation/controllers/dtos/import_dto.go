package dtos

import "github.com/iota-uz/roster-import/modules/roster/domain/roster"

// APIError standardizes JSON error responses.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type UserResult struct {
	UserID     string `json:"userId"`
	Role       string `json:"role"`
	AccountURI string `json:"accountUri,omitempty"`
	AccountID  string `json:"accountId,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type ImportTotals struct {
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	SkippedNoGroup int `json:"skippedNoGroup"`
	Failed         int `json:"failed"`
}

type ImportResponse struct {
	Results []UserResult `json:"results"`
	Totals  ImportTotals `json:"totals"`
}

func NewImportResponse(report *roster.ImportReport) *ImportResponse {
	resp := &ImportResponse{Results: make([]UserResult, 0, len(report.Results))}
	for _, res := range report.Results {
		resp.Results = append(resp.Results, UserResult{
			UserID:     res.UserID,
			Role:       res.Role,
			AccountURI: res.AccountURI,
			AccountID:  res.AccountID,
			Status:     string(res.Status),
			Error:      res.Error,
		})
	}
	totals := report.Totals()
	resp.Totals = ImportTotals{
		Created:        totals[roster.StatusCreated],
		Updated:        totals[roster.StatusUpdated],
		SkippedNoGroup: totals[roster.StatusSkippedNoGroup],
		Failed:         totals[roster.StatusFailed],
	}
	return resp
}
