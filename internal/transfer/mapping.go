package transfer

import (
	"strings"
	"time"

	"github.com/akyairhashvil/problemtracker/internal/database"
	"github.com/akyairhashvil/problemtracker/internal/models"
)

// Header aliases per field; the first non-empty cell wins.
var (
	numberHeaders      = []string{"رقم المشكلة", "رقم_المشكلة", "problem_number", "Problem Number"}
	entityHeaders      = []string{"الجهة", "جهة"}
	descriptionHeaders = []string{"المشكلة", "وصف"}
	addedHeaders       = []string{"تاريخ الإضافة", "added_date"}
	completedHeaders   = []string{"تاريخ الإكمال", "completed_date"}
	reporterHeaders    = []string{"المبلّغ", "المبلغ"}
	phoneHeaders       = []string{"الهاتف", "Phone"}
	statusHeaders      = []string{"الحالة"}
)

func (r Record) first(names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r[name]); v != "" {
			return v
		}
	}
	return ""
}

// MapRecords converts records into import rows. An unparseable added date
// becomes now; an unparseable completed date is dropped. An unknown status
// fails the whole file.
func MapRecords(records []Record, now time.Time, loc *time.Location) ([]database.ImportRow, error) {
	rows := make([]database.ImportRow, 0, len(records))
	for i, rec := range records {
		row, err := mapRecord(rec, now, loc)
		if err != nil {
			return nil, &ImportError{Row: i + 1, Number: row.ProblemNumber, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func mapRecord(rec Record, now time.Time, loc *time.Location) (database.ImportRow, error) {
	row := database.ImportRow{
		ProblemNumber: rec.first(numberHeaders),
		Entity:        rec.first(entityHeaders),
		Description:   rec.first(descriptionHeaders),
		Reporter:      rec.first(reporterHeaders),
		Phone:         rec.first(phoneHeaders),
		Status:        models.StatusNew,
		AddedDate:     models.NewTimestamp(now),
	}
	if raw := rec.first(statusHeaders); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return row, err
		}
		row.Status = status
	}
	if t, ok := ParseCellDate(rec.first(addedHeaders), loc); ok {
		row.AddedDate = models.NewTimestamp(t)
	}
	if t, ok := ParseCellDate(rec.first(completedHeaders), loc); ok {
		row.CompletedDate = models.NewTimestamp(t)
	}
	return row, nil
}
