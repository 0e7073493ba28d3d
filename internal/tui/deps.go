package tui

import (
	"context"
	"time"

	"github.com/akyairhashvil/problemtracker/internal/database"
	"github.com/akyairhashvil/problemtracker/internal/lifecycle"
	"github.com/akyairhashvil/problemtracker/internal/staleness"
)

// Store is the register the screen reads and edits.
type Store interface {
	database.ProblemReader
	database.ProblemWriter
}

type Lifecycle interface {
	Prepare(ctx context.Context, id int64) (lifecycle.Pending, error)
	Commit(ctx context.Context, pending lifecycle.Pending, notify bool) (lifecycle.Result, error)
}

type StaleChecker interface {
	Check(ctx context.Context, now time.Time) (staleness.Report, error)
}

// FileOps are the file-producing and file-consuming actions.
type FileOps interface {
	ExportCSV(ctx context.Context) (string, error)
	ExportBackup(ctx context.Context, passphrase string) (string, error)
	Import(ctx context.Context, path string) (database.ImportResult, error)
	RestoreFile(ctx context.Context, path, passphrase string) error
	WriteReport(ctx context.Context) (string, error)
}

// Deps are the collaborators of Model. Files and Opener may be nil; the
// matching keys then report the action as unavailable.
type Deps struct {
	Store         Store
	Lifecycle     Lifecycle
	Checker       StaleChecker
	Files         FileOps
	Opener        lifecycle.LinkOpener
	Clock         func() time.Time
	PageSize      int
	StaleInterval time.Duration
	LinkBase      string
}
