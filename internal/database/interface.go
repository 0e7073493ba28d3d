package database

import (
	"context"

	"github.com/akyairhashvil/problemtracker/internal/models"
)

// ProblemReader defines read-only register queries.
type ProblemReader interface {
	ListProblems(ctx context.Context) ([]models.Problem, error)
	ListOpenProblems(ctx context.Context) ([]models.Problem, error)
	ListPage(ctx context.Context, page, size int) (models.Page, error)
	GetProblem(ctx context.Context, id int64) (models.Problem, error)
	FindByNumber(ctx context.Context, number string) (models.Problem, error)
	NextProblemNumber(ctx context.Context) (string, error)
	CountByStatus(ctx context.Context) (models.Stats, error)
}

// ProblemWriter defines register mutations. Each flushes the snapshot.
type ProblemWriter interface {
	InsertProblem(ctx context.Context, in models.ProblemInput) (int64, error)
	UpdateProblem(ctx context.Context, id int64, in models.ProblemInput) error
	UpdateStatus(ctx context.Context, id int64, status models.Status, completed models.Timestamp) error
	DeleteProblem(ctx context.Context, id int64) error
	ImportProblems(ctx context.Context, rows []ImportRow) (ImportResult, error)
}

var (
	_ ProblemReader = (*Database)(nil)
	_ ProblemWriter = (*Database)(nil)
)
