package service

import (
	"strconv"

	"github.com/rentloop/crm-sync-worker/internal/config"
)

// Source status values that map directly to pipeline stages.
const (
	StatusNeedsSearch = "needs_search"
	StatusSearchSent  = "search_sent"
)

// SelectStage maps a tenant's check-in year and status to a pipeline
// stage id. First match wins: booked-next-year and booked-current-year
// precede the status rules, past years come after, and anything else is
// a new inquiry.
func SelectStage(checkInYear, status string, currentYear int, stages config.StageIDs) string {
	switch {
	case checkInYear == strconv.Itoa(currentYear+1):
		return stages.BookedNextYear
	case checkInYear == strconv.Itoa(currentYear):
		return stages.BookedCurrentYear
	case status == StatusNeedsSearch:
		return stages.NeedsSearch
	case status == StatusSearchSent:
		return stages.SearchSent
	}
	if year, err := strconv.Atoi(checkInYear); err == nil && year < currentYear {
		return stages.PastGuest
	}
	return stages.NewInquiry
}
