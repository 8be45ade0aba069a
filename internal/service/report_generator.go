package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/salon-reports-api/internal/dto"
	"github.com/noah-isme/salon-reports-api/internal/models"
)

type salesSummarySource interface {
	List(ctx context.Context, filter models.SalesSummaryFilter) ([]models.SalesSummaryRow, error)
}

// MetricFieldMap maps template metric ids to sales summary columns.
type MetricFieldMap map[string]string

// DefaultMetricFieldMap returns the stock metric mapping.
func DefaultMetricFieldMap() MetricFieldMap {
	return MetricFieldMap{
		"total_revenue":     "total_revenue",
		"service_revenue":   "service_revenue",
		"product_revenue":   "product_revenue",
		"appointment_count": "total_transactions",
	}
}

// Field resolves the column for a metric. Unmapped metrics read the column of the same name.
func (m MetricFieldMap) Field(metricID string) string {
	if field, ok := m[metricID]; ok && field != "" {
		return field
	}
	return metricID
}

// Merge returns a copy of m overlaid with overrides.
func (m MetricFieldMap) Merge(overrides map[string]string) MetricFieldMap {
	merged := make(MetricFieldMap, len(m)+len(overrides))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// ReportGeneratorConfig configures a ReportGenerator.
type ReportGeneratorConfig struct {
	Fields MetricFieldMap
	Clock  func() time.Time
}

// ReportGenerator turns a scheduled report definition into a data payload.
type ReportGenerator struct {
	rows   salesSummarySource
	fields MetricFieldMap
	now    func() time.Time
	logger *zap.Logger
}

// NewReportGenerator constructs a generator. A nil field map uses DefaultMetricFieldMap.
func NewReportGenerator(rows salesSummarySource, cfg ReportGeneratorConfig, logger *zap.Logger) *ReportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Fields == nil {
		cfg.Fields = DefaultMetricFieldMap()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &ReportGenerator{rows: rows, fields: cfg.Fields, now: cfg.Clock, logger: logger}
}

// Generate loads the report's rows for its rolling window. With a template the metrics
// are aggregated into totals; without one the raw rows are returned under the report type.
// Any failure is returned untouched so callers can record its message verbatim.
func (g *ReportGenerator) Generate(ctx context.Context, report *models.ScheduledReport, tpl *models.ReportTemplate) (*dto.ReportPayload, error) {
	now := g.now().UTC()
	window := DateWindow(report.ScheduleType, now)

	filter := models.SalesSummaryFilter{
		OrganizationID: report.OrganizationID,
		DateFrom:       window.From,
		DateTo:         window.To,
	}
	if loc, ok := report.Filters.LocationID(); ok {
		filter.LocationID = &loc
	}

	rows, err := g.rows.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	payload := &dto.ReportPayload{
		DateRange:   window,
		RowCount:    len(rows),
		GeneratedAt: now,
	}

	if tpl == nil {
		payload.Title = report.Name
		if report.ReportType != nil {
			payload.ReportType = *report.ReportType
		}
		payload.Rows = rows
		return payload, nil
	}

	payload.Title = tpl.Name
	payload.TemplateID = tpl.ID
	payload.Totals = make(map[string]float64, len(tpl.Config.Metrics))
	payload.Labels = make(map[string]string, len(tpl.Config.Metrics))
	for _, metric := range tpl.Config.Metrics {
		value, err := Aggregate(rows, g.fields.Field(metric.ID), metric.Aggregation)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", metric.ID, err)
		}
		payload.Totals[metric.ID] = value
		label := metric.Label
		if label == "" {
			label = metric.ID
		}
		payload.Labels[metric.ID] = label
	}

	g.logger.Debug("report generated",
		zap.String("report_id", report.ID),
		zap.String("template_id", tpl.ID),
		zap.Int("rows", len(rows)),
	)
	return payload, nil
}

// Aggregate reduces field across rows. Missing or non-numeric values count as 0,
// avg divides by the total row count, and avg/min/max over no rows are 0.
func Aggregate(rows []models.SalesSummaryRow, field string, agg models.Aggregation) (float64, error) {
	switch agg {
	case models.AggregationCount:
		return float64(len(rows)), nil
	case models.AggregationSum, models.AggregationAvg:
		var sum float64
		for _, row := range rows {
			sum += toNumber(row[field])
		}
		if agg == models.AggregationSum {
			return sum, nil
		}
		if len(rows) == 0 {
			return 0, nil
		}
		return sum / float64(len(rows)), nil
	case models.AggregationMin, models.AggregationMax:
		if len(rows) == 0 {
			return 0, nil
		}
		result := toNumber(rows[0][field])
		for _, row := range rows[1:] {
			v := toNumber(row[field])
			if agg == models.AggregationMin {
				result = math.Min(result, v)
			} else {
				result = math.Max(result, v)
			}
		}
		return result, nil
	default:
		return 0, fmt.Errorf("unsupported aggregation %q", agg)
	}
}

func toNumber(value interface{}) float64 {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case string:
		f = parseNumber(v)
	case []byte:
		f = parseNumber(string(v))
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumber(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}
