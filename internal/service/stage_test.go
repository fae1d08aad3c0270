package service

import (
	"testing"

	"github.com/rentloop/crm-sync-worker/internal/config"
)

var testStages = config.StageIDs{
	BookedNextYear:    "stage-next",
	BookedCurrentYear: "stage-current",
	NeedsSearch:       "stage-needs-search",
	SearchSent:        "stage-search-sent",
	PastGuest:         "stage-past",
	NewInquiry:        "stage-new",
}

func TestSelectStage(t *testing.T) {
	tests := []struct {
		name     string
		year     string
		status   string
		expected string
	}{
		{"next year booking", "2026", "", "stage-next"},
		{"current year booking", "2025", "", "stage-current"},
		{"needs search", "", "needs_search", "stage-needs-search"},
		{"search sent", "", "search_sent", "stage-search-sent"},
		{"past guest", "2023", "", "stage-past"},
		{"no match defaults to new inquiry", "", "confirmed", "stage-new"},
		{"non-numeric year defaults to new inquiry", "soon", "", "stage-new"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectStage(tt.year, tt.status, 2025, testStages)
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestSelectStage_YearPrecedesStatus(t *testing.T) {
	// A next-year booking wins even when the status would otherwise
	// match the needs-search rule.
	got := SelectStage("2026", "needs_search", 2025, testStages)
	if got != "stage-next" {
		t.Errorf("expected year rule to precede status rule, got %s", got)
	}

	got = SelectStage("2025", "search_sent", 2025, testStages)
	if got != "stage-current" {
		t.Errorf("expected current-year rule to precede status rule, got %s", got)
	}
}

func TestSelectStage_StatusPrecedesPastYear(t *testing.T) {
	got := SelectStage("2020", "needs_search", 2025, testStages)
	if got != "stage-needs-search" {
		t.Errorf("expected status rule to precede past-year rule, got %s", got)
	}
}
