package services

import (
	"fmt"
	"time"

	"gsc-exporter/models"
)

// MonthLabel is the label format for calendar-month windows.
const MonthLabel = "2006-01"

// MonthlyWindows returns the n most recent complete calendar months
// strictly before ref, most recent first. Window i ends the day before
// the first of the month i steps back from ref and starts on the first
// of that same month.
func MonthlyWindows(ref time.Time, n int) []models.DateWindow {
	windows := make([]models.DateWindow, 0, n)
	for i := 1; i <= n; i++ {
		end := firstOfMonth(ref).AddDate(0, -(i - 1), 0).AddDate(0, 0, -1)
		start := firstOfMonth(end)
		windows = append(windows, models.DateWindow{
			Start: start,
			End:   end,
			Label: start.Format(MonthLabel),
		})
	}
	return windows
}

// LastMonth returns the single most recent complete calendar month
// before ref.
func LastMonth(ref time.Time) models.DateWindow {
	return MonthlyWindows(ref, 1)[0]
}

// LastNDays returns the window covering the n days ending at ref
// inclusive.
func LastNDays(ref time.Time, n int) models.DateWindow {
	start := ref.AddDate(0, 0, -(n - 1))
	return models.DateWindow{
		Start: start,
		End:   ref,
		Label: fmt.Sprintf("last %d days", n),
	}
}

// LastQuarter returns the most recent complete civil quarter before
// ref. Quarters start in January, April, July and October; this is a
// calendar boundary, not a rolling 91-day window.
func LastQuarter(ref time.Time) models.DateWindow {
	quarterStartMonth := ((int(ref.Month())-1)/3)*3 + 1
	currentQuarterStart := time.Date(ref.Year(), time.Month(quarterStartMonth), 1, 0, 0, 0, 0, ref.Location())
	start := currentQuarterStart.AddDate(0, -3, 0)
	end := currentQuarterStart.AddDate(0, 0, -1)
	return models.DateWindow{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%d-Q%d", start.Year(), (int(start.Month())-1)/3+1),
	}
}

// CustomWindow builds a window from explicit YYYY-MM-DD boundaries.
func CustomWindow(startDate, endDate string) (models.DateWindow, error) {
	start, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return models.DateWindow{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse(models.DateLayout, endDate)
	if err != nil {
		return models.DateWindow{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return models.DateWindow{}, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	return models.DateWindow{
		Start: start,
		End:   end,
		Label: startDate + " to " + endDate,
	}, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
