package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/salon-reports-api/internal/dto"
	"github.com/noah-isme/salon-reports-api/internal/models"
)

const (
	defaultRunHour   = 9
	defaultRunMinute = 0
	dateLayout       = "2006-01-02"
)

// NextRunAt returns the next due time for report, counted one cadence period from now
// rather than from the previous next_run_at, so missed runs never pile up.
// Month arithmetic relies on time.Date normalising out-of-range days and months.
func NextRunAt(report models.ScheduledReport, now time.Time) time.Time {
	now = now.UTC()
	y, m, d := now.Date()

	var next time.Time
	switch report.ScheduleType {
	case models.ScheduleWeekly:
		next = time.Date(y, m, d+7, 0, 0, 0, 0, time.UTC)
	case models.ScheduleMonthly, models.ScheduleFirstOfMonth:
		shifted := time.Date(y, m+1, d, 0, 0, 0, 0, time.UTC)
		next = time.Date(shifted.Year(), shifted.Month(), 1, 0, 0, 0, 0, time.UTC)
	case models.ScheduleLastOfMonth:
		// Two months forward, then day 0 of the landed month. A day-of-month overflow on the
		// first step shifts the landed month, e.g. Jul 31 lands on Oct 1 and resolves to Sep 30.
		shifted := time.Date(y, m+2, d, 0, 0, 0, 0, time.UTC)
		next = time.Date(shifted.Year(), shifted.Month(), 0, 0, 0, 0, 0, time.UTC)
	default:
		next = time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	}

	hour, minute, ok := ParseTimeOfDay(report.ScheduleConfig.TimeUTC)
	if !ok {
		hour, minute = defaultRunHour, defaultRunMinute
	}
	return time.Date(next.Year(), next.Month(), next.Day(), hour, minute, 0, 0, time.UTC)
}

// ParseTimeOfDay parses "HH:MM" in 24h form. Trailing parts such as seconds are ignored.
func ParseTimeOfDay(raw string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, mi := parts[0], parts[1]
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(mi)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// DateWindow returns the rolling reporting window for a cadence, anchored on now.
// Windows are not snapped to calendar weeks or months.
func DateWindow(scheduleType models.ScheduleType, now time.Time) dto.DateRange {
	now = now.UTC()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var from, to time.Time
	switch scheduleType {
	case models.ScheduleDaily:
		from = today.AddDate(0, 0, -1)
		to = from
	case models.ScheduleWeekly:
		from = today.AddDate(0, 0, -7)
		to = today
	case models.ScheduleMonthly, models.ScheduleFirstOfMonth:
		from = time.Date(y, m-1, d, 0, 0, 0, 0, time.UTC)
		to = today
	default:
		from = today.AddDate(0, 0, -30)
		to = today
	}
	return dto.DateRange{From: from.Format(dateLayout), To: to.Format(dateLayout)}
}
