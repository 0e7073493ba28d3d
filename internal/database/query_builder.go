package database

import (
	"fmt"
	"strings"
)

const problemColumns = "id, problem_number, entity, description, reporter, phone, status, added_date, completed_date"

type ProblemQuery struct {
	columns string
	filters []string
	args    []interface{}
	orderBy string
	limit   int
	offset  int
}

func NewProblemQuery() *ProblemQuery {
	return &ProblemQuery{columns: problemColumns, orderBy: "id DESC"}
}

func (q *ProblemQuery) Where(filter string, args ...interface{}) *ProblemQuery {
	q.filters = append(q.filters, filter)
	q.args = append(q.args, args...)
	return q
}

func (q *ProblemQuery) WhereID(id int64) *ProblemQuery {
	return q.Where("id = ?", id)
}

func (q *ProblemQuery) WhereNumber(number string) *ProblemQuery {
	return q.Where("problem_number = ?", number)
}

func (q *ProblemQuery) WhereStatusNot(status string) *ProblemQuery {
	return q.Where("status IS NULL OR status <> ?", status)
}

func (q *ProblemQuery) OrderBy(orderBy string) *ProblemQuery {
	q.orderBy = orderBy
	return q
}

func (q *ProblemQuery) Limit(limit int) *ProblemQuery {
	q.limit = limit
	return q
}

func (q *ProblemQuery) Offset(offset int) *ProblemQuery {
	q.offset = offset
	return q
}

func (q *ProblemQuery) Build() (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM problems", q.columns)
	if len(q.filters) > 0 {
		parts := make([]string, len(q.filters))
		for i, f := range q.filters {
			parts[i] = "(" + f + ")"
		}
		query += " WHERE " + strings.Join(parts, " AND ")
	}
	if q.orderBy != "" {
		query += " ORDER BY " + q.orderBy
	}
	args := append([]interface{}(nil), q.args...)
	if q.limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.limit, q.offset)
	}
	return query, args
}
