package models

import (
	"testing"
	"time"
)

func TestStringList_Scan(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected StringList
	}{
		{"null", nil, nil},
		{"empty string", "", nil},
		{"bare string", "2036718335", StringList{"2036718335"}},
		{"json array", []byte(`["2036718335","8567805758"]`), StringList{"2036718335", "8567805758"}},
		{"malformed array falls back to bare string", "[not-json", StringList{"[not-json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			if err := l.Scan(tt.input); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(l) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, l)
			}
			for i := range l {
				if l[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, l)
				}
			}
		})
	}
}

func TestTenant_RentAmount(t *testing.T) {
	tests := []struct {
		name     string
		rent     string
		expected float64
	}{
		{"plain number", "1200", 1200},
		{"decimal string", "1200.50", 1200.50},
		{"currency formatted", "$1,200", 1200},
		{"empty", "", 0},
		{"garbage", "TBD", 0},
		{"negative", "-50", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := Tenant{Rent: tt.rent}
			if got := tenant.RentAmount(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTenant_CheckInYear(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{"iso date", "2025-07-18", "2025"},
		{"year only", "2026", "2026"},
		{"empty", "", ""},
		{"non-numeric", "July 18", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := Tenant{CheckInDate: tt.date}
			if got := tenant.CheckInYear(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTenant_ChangedAt(t *testing.T) {
	created := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	scraped := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	tenant := Tenant{CreatedAt: created, LastScrapedAt: scraped}
	if got := tenant.ChangedAt(); !got.Equal(scraped) {
		t.Errorf("expected %v, got %v", scraped, got)
	}

	tenant = Tenant{CreatedAt: scraped, LastScrapedAt: created}
	if got := tenant.ChangedAt(); !got.Equal(scraped) {
		t.Errorf("expected %v, got %v", scraped, got)
	}
}

func TestTenant_PrimaryRawPhone(t *testing.T) {
	tenant := Tenant{TenantPhone: StringList{"", "2036718335"}}
	if got := tenant.PrimaryRawPhone(); got != "2036718335" {
		t.Errorf("expected first non-empty phone, got %q", got)
	}

	tenant = Tenant{}
	if got := tenant.PrimaryRawPhone(); got != "" {
		t.Errorf("expected empty phone, got %q", got)
	}
}
