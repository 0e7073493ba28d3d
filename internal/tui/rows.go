package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/lifecycle"
	"github.com/akyairhashvil/problemtracker/internal/models"
)

// RowView is one register row formatted for display.
type RowView struct {
	ID          int64
	Number      string
	Entity      string
	Description string
	Added       string
	Completed   string
	Days        string
	Reporter    string
	Phone       string
	Link        string
	Status      models.Status
}

func NewRowView(p models.Problem, linkBase string) RowView {
	days := "-"
	if n, ok := p.DaysToResolve(); ok {
		days = strconv.Itoa(n)
	}
	number := p.ProblemNumber
	if number == "" {
		number = "-"
	}
	return RowView{
		ID:          p.ID,
		Number:      number,
		Entity:      p.Entity,
		Description: p.Description,
		Added:       displayDate(p.AddedDate),
		Completed:   displayDate(p.CompletedDate),
		Days:        days,
		Reporter:    p.Reporter,
		Phone:       p.Phone,
		Link:        lifecycle.ContactLink(linkBase, p.Phone),
		Status:      p.Status,
	}
}

func displayDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(config.LocaleDateLayout, ts.Raw)
}

func buildRows(problems []models.Problem, linkBase string) []RowView {
	rows := make([]RowView, 0, len(problems))
	for _, p := range problems {
		rows = append(rows, NewRowView(p, linkBase))
	}
	return rows
}

func (r RowView) cells(compact bool) table.Row {
	if compact {
		return table.Row{r.Number, r.Entity, r.Description, r.Added, r.Completed, r.Days, string(r.Status)}
	}
	return table.Row{r.Number, r.Entity, r.Description, r.Added, r.Completed, r.Days, r.Reporter, r.Phone, string(r.Status)}
}

// tableColumns sizes the register columns for width. The problem column
// takes whatever the fixed columns leave.
func tableColumns(width int) ([]table.Column, bool) {
	compact := width > 0 && width < config.CompactModeThreshold
	cols := []table.Column{
		{Title: "رقم المشكلة", Width: 11},
		{Title: "الجهة", Width: 14},
		{Title: "المشكلة", Width: 0},
		{Title: "الإضافة", Width: 10},
		{Title: "الإكمال", Width: 10},
		{Title: "أيام", Width: 4},
	}
	if !compact {
		cols = append(cols,
			table.Column{Title: "المبلّغ", Width: 12},
			table.Column{Title: "الهاتف", Width: 12},
		)
	}
	cols = append(cols, table.Column{Title: "الحالة", Width: 15})

	used := 0
	for _, c := range cols {
		used += c.Width + 2
	}
	desc := width - used - 4
	if desc < config.MinDescriptionWidth {
		desc = config.MinDescriptionWidth
	}
	cols[2].Width = desc
	return cols, compact
}
