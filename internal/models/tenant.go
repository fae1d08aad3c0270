package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// StringList is a text column that the scraper writes inconsistently:
// SQL NULL, a bare string, or a JSON array of strings.
type StringList []string

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return errors.New("type assertion to []byte or string failed")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			*l = out
			return nil
		}
	}
	*l = StringList{raw}
	return nil
}

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Tenant represents one row from the scraper-owned tenants table.
// The worker only reads this table; the ingestion process owns writes.
type Tenant struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	TenantName       string     `gorm:"column:tenant_name"`
	Email            string     `gorm:"column:email"`
	TenantPhone      StringList `gorm:"column:tenant_phone"`
	Address          string     `gorm:"column:address"`
	UnitNumber       string     `gorm:"column:unit_number"`
	OwnerName        string     `gorm:"column:owner_name"`
	OwnerPhone       StringList `gorm:"column:owner_phone"`
	CheckInDate      string     `gorm:"column:check_in_date"`
	Status           string     `gorm:"column:status"`
	ConfirmationCode string     `gorm:"column:confirmation_code"`
	Rent             string     `gorm:"column:rent"`
	SourceUserID     *string    `gorm:"column:source_user_id"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	LastScrapedAt    time.Time  `gorm:"column:last_scraped_at"`
}

// TableName specifies the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// PrimaryRawPhone returns the first non-empty phone entry, unnormalized.
func (t *Tenant) PrimaryRawPhone() string {
	for _, p := range t.TenantPhone {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}

// RentAmount parses the rent column, tolerating currency symbols and
// thousands separators. Unparseable rent reads as 0.
func (t *Tenant) RentAmount() float64 {
	raw := strings.TrimSpace(t.Rent)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}

// CheckInYear returns the four-digit year of the check-in date, or ""
// when no year can be derived.
func (t *Tenant) CheckInYear() string {
	raw := strings.TrimSpace(t.CheckInDate)
	if len(raw) < 4 {
		return ""
	}
	year := raw[:4]
	if _, err := strconv.Atoi(year); err != nil {
		return ""
	}
	return year
}

// ChangedAt returns the later of created_at and last_scraped_at, the
// value the sync checkpoint advances by.
func (t *Tenant) ChangedAt() time.Time {
	if t.LastScrapedAt.After(t.CreatedAt) {
		return t.LastScrapedAt
	}
	return t.CreatedAt
}
