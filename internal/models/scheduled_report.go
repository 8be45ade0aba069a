package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScheduleType enumerates the supported report cadences.
type ScheduleType string

const (
	ScheduleDaily        ScheduleType = "daily"
	ScheduleWeekly       ScheduleType = "weekly"
	ScheduleMonthly      ScheduleType = "monthly"
	ScheduleFirstOfMonth ScheduleType = "first_of_month"
	ScheduleLastOfMonth  ScheduleType = "last_of_month"
)

// Valid reports whether the cadence is one of the known values.
func (s ScheduleType) Valid() bool {
	switch s {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly, ScheduleFirstOfMonth, ScheduleLastOfMonth:
		return true
	default:
		return false
	}
}

// ScheduleConfig holds cadence detail persisted as JSONB.
type ScheduleConfig struct {
	DayOfWeek  *int   `json:"dayOfWeek,omitempty"`
	DayOfMonth *int   `json:"dayOfMonth,omitempty"`
	TimeUTC    string `json:"timeUtc,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

// Value marshals the config for persistence.
func (c ScheduleConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule config: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB column into the config.
func (c *ScheduleConfig) Scan(value interface{}) error {
	*c = ScheduleConfig{}
	return scanJSON(value, c, "schedule config")
}

// Recipient is a single report delivery target.
type Recipient struct {
	Email  string  `json:"email" validate:"required,email"`
	UserID *string `json:"userId,omitempty"`
}

// Recipients is the ordered recipient list stored as JSONB.
type Recipients []Recipient

// Value marshals recipients, persisting an empty array instead of null.
func (r Recipients) Value() (driver.Value, error) {
	if r == nil {
		r = Recipients{}
	}
	data, err := json.Marshal([]Recipient(r))
	if err != nil {
		return nil, fmt.Errorf("marshal recipients: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB array of recipients.
func (r *Recipients) Scan(value interface{}) error {
	*r = nil
	return scanJSON(value, r, "recipients")
}

// ReportFilters is a free-form filter map stored as JSONB.
type ReportFilters map[string]interface{}

// Value marshals the filters.
func (f ReportFilters) Value() (driver.Value, error) {
	if f == nil {
		f = ReportFilters{}
	}
	data, err := json.Marshal(map[string]interface{}(f))
	if err != nil {
		return nil, fmt.Errorf("marshal report filters: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB object of filters.
func (f *ReportFilters) Scan(value interface{}) error {
	*f = nil
	return scanJSON(value, f, "report filters")
}

// LocationID returns the location filter when set to a non-empty string.
func (f ReportFilters) LocationID() (string, bool) {
	raw, ok := f["locationId"]
	if !ok || raw == nil {
		return "", false
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ScheduledReport is a persisted recurring report definition.
type ScheduledReport struct {
	ID             string         `db:"id" json:"id"`
	OrganizationID string         `db:"organization_id" json:"organizationId"`
	TemplateID     *string        `db:"template_id" json:"templateId,omitempty"`
	ReportType     *string        `db:"report_type" json:"reportType,omitempty"`
	Name           string         `db:"name" json:"name"`
	ScheduleType   ScheduleType   `db:"schedule_type" json:"scheduleType"`
	ScheduleConfig ScheduleConfig `db:"schedule_config" json:"scheduleConfig"`
	Recipients     Recipients     `db:"recipients" json:"recipients"`
	Format         string         `db:"format" json:"format"`
	Filters        ReportFilters  `db:"filters" json:"filters"`
	NextRunAt      time.Time      `db:"next_run_at" json:"nextRunAt"`
	LastRunAt      *time.Time     `db:"last_run_at" json:"lastRunAt,omitempty"`
	IsActive       bool           `db:"is_active" json:"isActive"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// ScheduledReportFilter narrows admin listings.
type ScheduledReportFilter struct {
	OrganizationID string
	Active         *bool
	Page           int
	PageSize       int
}

func scanJSON(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
