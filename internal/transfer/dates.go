package transfer

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
)

// Spreadsheet serials outside this range are treated as plain numbers.
const (
	minSerial = 1
	maxSerial = 2958466 // 9999-12-31
)

// ParseCellDate reads a date cell. Tried in order: spreadsheet serial, ISO
// text, en-US M/D/YYYY, then day/month/year with '/', '-' or '.'. Serials and
// zone-less text are read as wall-clock time in loc.
func ParseCellDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, ok := parseSerial(raw, loc); ok {
		return t, true
	}
	if ts := models.ParseTimestamp(raw); ts.Valid {
		if hasZone(raw) {
			return ts.Time, true
		}
		return wallClock(ts.Time, loc), true
	}
	for _, layout := range []string{config.LocaleDateLayout, "1/2/2006 15:04:05", "1/2/2006, 3:04:05 PM"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return parseDayMonthYear(raw, loc)
}

func parseSerial(raw string, loc *time.Location) (time.Time, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < minSerial || f > maxSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return wallClock(t, loc), true
}

func parseDayMonthYear(raw string, loc *time.Location) (time.Time, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func hasZone(raw string) bool {
	if strings.HasSuffix(raw, "Z") {
		return true
	}
	i := strings.IndexByte(raw, 'T')
	if i < 0 {
		return false
	}
	return strings.ContainsAny(raw[i:], "+-")
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
