package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/akyairhashvil/problemtracker/internal/models"
)

// ImportRow is one spreadsheet record after header mapping and date parsing.
type ImportRow struct {
	ProblemNumber string
	Entity        string
	Description   string
	Reporter      string
	Phone         string
	Status        models.Status
	AddedDate     models.Timestamp
	CompletedDate models.Timestamp
}

type ImportResult struct {
	Inserted int
	Updated  int
	Numbers  []string
}

func (r ImportResult) Total() int { return r.Inserted + r.Updated }

// ImportProblems applies rows in one transaction. A row whose problem number
// already exists updates that record in place; any other row is inserted.
// The first failing row rolls back the whole batch.
func (d *Database) ImportProblems(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	var result ImportResult
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		for i, row := range rows {
			number, updated, err := d.importRow(ctx, tx, row)
			if err != nil {
				return &ImportRowError{Row: i + 1, Number: number, Err: err}
			}
			if updated {
				result.Updated++
			} else {
				result.Inserted++
			}
			result.Numbers = append(result.Numbers, number)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	d.log.Info("import committed",
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated))
	d.flush(ctx)
	return result, nil
}

func (d *Database) importRow(ctx context.Context, tx *sql.Tx, row ImportRow) (string, bool, error) {
	number := strings.TrimSpace(row.ProblemNumber)
	if number == "" {
		next, err := nextProblemNumber(ctx, tx)
		if err != nil {
			return "", false, err
		}
		number = next
	}
	status := row.Status
	if status == "" {
		status = models.StatusNew
	}
	if !status.Valid() {
		return number, false, fmt.Errorf("%w: %q", models.ErrUnknownStatus, status)
	}
	added := row.AddedDate
	if !added.Valid {
		added = models.NewTimestamp(d.now())
	}
	completed := row.CompletedDate
	if !completed.Valid {
		completed = models.Timestamp{}
	}

	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM problems WHERE problem_number = ?", number).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO problems (entity, description, reporter, phone, status, added_date, completed_date, problem_number)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.Entity, row.Description, row.Reporter, row.Phone, string(status), added, completed, number)
		if err != nil {
			return number, false, wrapErr(EntityProblem, "import insert", 0, err)
		}
		return number, false, nil
	case err != nil:
		return number, false, wrapErr(EntityProblem, "import lookup", 0, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE problems SET entity = ?, description = ?, reporter = ?, phone = ?, status = ?, added_date = ?, completed_date = ?
		WHERE id = ?`,
		row.Entity, row.Description, row.Reporter, row.Phone, string(status), added, completed, id)
	if err != nil {
		return number, true, wrapErr(EntityProblem, "import update", id, err)
	}
	return number, true, nil
}
