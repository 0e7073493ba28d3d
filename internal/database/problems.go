package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProblem(s rowScanner) (models.Problem, error) {
	var (
		p                                                 models.Problem
		number, entity, description, reporter, phone, st sql.NullString
	)
	err := s.Scan(&p.ID, &number, &entity, &description, &reporter, &phone, &st, &p.AddedDate, &p.CompletedDate)
	if err != nil {
		return models.Problem{}, err
	}
	p.ProblemNumber = number.String
	p.Entity = entity.String
	p.Description = description.String
	p.Reporter = reporter.String
	p.Phone = phone.String
	p.Status = models.Status(st.String)
	return p, nil
}

func (d *Database) queryProblems(ctx context.Context, op string, q *ProblemQuery) ([]models.Problem, error) {
	query, args := q.Build()
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(EntityProblem, op, 0, err)
	}
	defer rows.Close()

	var problems []models.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, wrapErr(EntityProblem, op, 0, err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(EntityProblem, op, 0, err)
	}
	return problems, nil
}

// ListProblems returns every record, newest first.
func (d *Database) ListProblems(ctx context.Context) ([]models.Problem, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) ([]models.Problem, error) {
		return d.queryProblems(ctx, "list", NewProblemQuery())
	})
}

// ListOpenProblems returns records that are not completed, newest first.
func (d *Database) ListOpenProblems(ctx context.Context) ([]models.Problem, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) ([]models.Problem, error) {
		q := NewProblemQuery().WhereStatusNot(string(models.StatusCompleted))
		return d.queryProblems(ctx, "list open", q)
	})
}

// ListPage returns one page of the register. The page number is clamped to
// the available range; an empty register yields page 0 of 0.
func (d *Database) ListPage(ctx context.Context, page, size int) (models.Page, error) {
	if size <= 0 {
		size = d.pageSize
	}
	return withDBContextResult(d, ctx, func(ctx context.Context) (models.Page, error) {
		var total int
		if err := d.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM problems").Scan(&total); err != nil {
			return models.Page{}, wrapErr(EntityProblem, "count", 0, err)
		}
		if total == 0 {
			return models.Page{Size: size}, nil
		}
		totalPages := util.CeilDiv(total, size)
		page = util.Clamp(page, 1, totalPages)

		items, err := d.queryProblems(ctx, "page", NewProblemQuery().Limit(size).Offset((page-1)*size))
		if err != nil {
			return models.Page{}, err
		}
		return models.Page{Items: items, Page: page, TotalPages: totalPages, Total: total, Size: size}, nil
	})
}

func (d *Database) GetProblem(ctx context.Context, id int64) (models.Problem, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) (models.Problem, error) {
		query, args := NewProblemQuery().WhereID(id).Build()
		p, err := scanProblem(d.DB.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return models.Problem{}, wrapErr(EntityProblem, "get", id, ErrNotFound)
		}
		if err != nil {
			return models.Problem{}, wrapErr(EntityProblem, "get", id, err)
		}
		return p, nil
	})
}

func (d *Database) FindByNumber(ctx context.Context, number string) (models.Problem, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) (models.Problem, error) {
		query, args := NewProblemQuery().WhereNumber(strings.TrimSpace(number)).Build()
		p, err := scanProblem(d.DB.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return models.Problem{}, wrapErr(EntityProblem, "find "+number, 0, ErrNotFound)
		}
		if err != nil {
			return models.Problem{}, wrapErr(EntityProblem, "find "+number, 0, err)
		}
		return p, nil
	})
}

// NextProblemNumber returns P-NNNN one above the highest numeric suffix in use.
func (d *Database) NextProblemNumber(ctx context.Context) (string, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) (string, error) {
		return nextProblemNumber(ctx, d.DB)
	})
}

func nextProblemNumber(ctx context.Context, q queryer) (string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT problem_number FROM problems WHERE problem_number GLOB ?", config.ProblemNumberPrefix+"[0-9]*")
	if err != nil {
		return "", wrapErr(EntityProblem, "next number", 0, err)
	}
	defer rows.Close()

	var highest int64
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return "", wrapErr(EntityProblem, "next number", 0, err)
		}
		// Suffixes past int64 are foreign numbers and never seed the sequence.
		n, ok := numberSuffix(number)
		if ok && n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", wrapErr(EntityProblem, "next number", 0, err)
	}
	if highest == math.MaxInt64 {
		return "", wrapErr(EntityProblem, "next number", 0, ErrNumberSpaceExhausted)
	}
	return formatProblemNumber(highest + 1), nil
}

// numberSuffix parses the leading digits after the prefix.
func numberSuffix(number string) (int64, bool) {
	digits := strings.TrimPrefix(number, config.ProblemNumberPrefix)
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatProblemNumber(n int64) string {
	return fmt.Sprintf("%s%0*d", config.ProblemNumberPrefix, config.ProblemNumberDigits, n)
}

func validateInput(in models.ProblemInput) (models.ProblemInput, error) {
	in.ProblemNumber = strings.TrimSpace(in.ProblemNumber)
	in.Entity = strings.TrimSpace(in.Entity)
	in.Description = strings.TrimSpace(in.Description)
	in.Reporter = strings.TrimSpace(in.Reporter)
	in.Phone = strings.TrimSpace(in.Phone)

	required := []struct {
		name  string
		value string
	}{
		{"entity", in.Entity},
		{"description", in.Description},
		{"reporter", in.Reporter},
		{"phone", in.Phone},
		{"status", string(in.Status)},
	}
	for _, f := range required {
		if f.value == "" {
			return in, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	if !in.Status.Valid() {
		return in, fmt.Errorf("%w: %q", models.ErrUnknownStatus, in.Status)
	}
	return in, nil
}

// InsertProblem stores a new record stamped with the current time. An empty
// problem number is replaced with the next generated one.
func (d *Database) InsertProblem(ctx context.Context, in models.ProblemInput) (int64, error) {
	in, err := validateInput(in)
	if err != nil {
		return 0, wrapErr(EntityProblem, "insert", 0, err)
	}
	var id int64
	err = d.withDBContext(ctx, func(ctx context.Context) error {
		return d.WithTx(ctx, func(tx *sql.Tx) error {
			number := in.ProblemNumber
			if number == "" {
				next, err := nextProblemNumber(ctx, tx)
				if err != nil {
					return err
				}
				number = next
			}
			var completed models.Timestamp
			if in.Status == models.StatusCompleted {
				completed = models.NewTimestamp(d.now())
			}
			res, err := tx.ExecContext(ctx,
				`INSERT INTO problems (problem_number, entity, description, reporter, phone, status, added_date, completed_date)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				number, in.Entity, in.Description, in.Reporter, in.Phone, string(in.Status),
				models.NewTimestamp(d.now()), completed)
			if err != nil {
				return wrapErr(EntityProblem, "insert "+number, 0, err)
			}
			id, err = res.LastInsertId()
			if err != nil {
				return wrapErr(EntityProblem, "insert "+number, 0, err)
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	d.flush(ctx)
	return id, nil
}

// UpdateProblem rewrites the editable fields. An empty problem number keeps
// the stored one. Moving into COMPLETED stamps completed_date if it is
// absent; moving out of COMPLETED clears it.
func (d *Database) UpdateProblem(ctx context.Context, id int64, in models.ProblemInput) error {
	in, err := validateInput(in)
	if err != nil {
		return wrapErr(EntityProblem, "update", id, err)
	}
	err = d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, `UPDATE problems SET
				problem_number = COALESCE(NULLIF(?, ''), problem_number),
				entity = ?, description = ?, reporter = ?, phone = ?, status = ?,
				completed_date = CASE WHEN ? = ? THEN COALESCE(completed_date, ?) ELSE NULL END
			WHERE id = ?`,
			in.ProblemNumber, in.Entity, in.Description, in.Reporter, in.Phone, string(in.Status),
			string(in.Status), string(models.StatusCompleted), models.NewTimestamp(d.now()),
			id)
		if err != nil {
			return wrapErr(EntityProblem, "update", id, err)
		}
		return requireAffected(res, "update", id)
	})
	if err != nil {
		return err
	}
	d.flush(ctx)
	return nil
}

// UpdateStatus sets the status and completion stamp in one statement.
func (d *Database) UpdateStatus(ctx context.Context, id int64, status models.Status, completed models.Timestamp) error {
	if !status.Valid() {
		return wrapErr(EntityProblem, "update status", id, fmt.Errorf("%w: %q", models.ErrUnknownStatus, status))
	}
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "UPDATE problems SET status = ?, completed_date = ? WHERE id = ?",
			string(status), completed, id)
		if err != nil {
			return wrapErr(EntityProblem, "update status", id, err)
		}
		return requireAffected(res, "update status", id)
	})
	if err != nil {
		return err
	}
	d.flush(ctx)
	return nil
}

func (d *Database) DeleteProblem(ctx context.Context, id int64) error {
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "DELETE FROM problems WHERE id = ?", id)
		if err != nil {
			return wrapErr(EntityProblem, "delete", id, err)
		}
		return requireAffected(res, "delete", id)
	})
	if err != nil {
		return err
	}
	d.flush(ctx)
	return nil
}

// CountByStatus returns the header counters.
func (d *Database) CountByStatus(ctx context.Context) (models.Stats, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) (models.Stats, error) {
		rows, err := d.DB.QueryContext(ctx, "SELECT COALESCE(status, ''), COUNT(*) FROM problems GROUP BY status")
		if err != nil {
			return models.Stats{}, wrapErr(EntityProblem, "count", 0, err)
		}
		defer rows.Close()

		var stats models.Stats
		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return models.Stats{}, wrapErr(EntityProblem, "count", 0, err)
			}
			stats.Total += n
			switch models.Status(status) {
			case models.StatusNew:
				stats.New += n
			case models.StatusInProgress:
				stats.InProgress += n
			case models.StatusCompleted:
				stats.Completed += n
			}
		}
		if err := rows.Err(); err != nil {
			return models.Stats{}, wrapErr(EntityProblem, "count", 0, err)
		}
		return stats, nil
	})
}

func requireAffected(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(EntityProblem, op, id, err)
	}
	if n == 0 {
		return wrapErr(EntityProblem, op, id, ErrNotFound)
	}
	return nil
}
