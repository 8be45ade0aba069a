package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Aggregation names a metric reduction function.
type Aggregation string

const (
	AggregationSum   Aggregation = "sum"
	AggregationAvg   Aggregation = "avg"
	AggregationCount Aggregation = "count"
	AggregationMin   Aggregation = "min"
	AggregationMax   Aggregation = "max"
)

// TemplateMetric is one requested metric of a custom template.
type TemplateMetric struct {
	ID          string      `json:"id"`
	Aggregation Aggregation `json:"aggregation"`
	Label       string      `json:"label,omitempty"`
}

// TemplateDimension is read but not used for grouping.
type TemplateDimension struct {
	ID      string `json:"id"`
	GroupBy string `json:"groupBy,omitempty"`
}

// TemplateConfig is the JSONB definition of what a template computes.
type TemplateConfig struct {
	Metrics         []TemplateMetric       `json:"metrics"`
	Dimensions      []TemplateDimension    `json:"dimensions,omitempty"`
	Filters         map[string]interface{} `json:"filters,omitempty"`
	Visualization   string                 `json:"visualization,omitempty"`
	DateRange       string                 `json:"dateRange,omitempty"`
	CustomDateRange *CustomDateRange       `json:"customDateRange,omitempty"`
}

// CustomDateRange is an explicit template date range.
type CustomDateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Value marshals the template config.
func (c TemplateConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal template config: %w", err)
	}
	return data, nil
}

// Scan unmarshals the JSONB template config.
func (c *TemplateConfig) Scan(value interface{}) error {
	*c = TemplateConfig{}
	return scanJSON(value, c, "template config")
}

// ReportTemplate is a reusable custom report definition.
type ReportTemplate struct {
	ID             string         `db:"id" json:"id"`
	OrganizationID string         `db:"organization_id" json:"organizationId"`
	Name           string         `db:"name" json:"name"`
	Config         TemplateConfig `db:"config" json:"config"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}
