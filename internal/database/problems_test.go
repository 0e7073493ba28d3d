package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/testutil"
)

func TestGeneratedProblemNumbers(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)

	for i, want := range []string{"P-0001", "P-0002", "P-0003"} {
		id := insertTestProblem(t, ctx, db, testutil.NewProblem())
		p, err := db.GetProblem(ctx, id)
		if err != nil {
			t.Fatalf("GetProblem failed: %v", err)
		}
		if p.ProblemNumber != want {
			t.Fatalf("insert %d: number = %q, want %q", i, p.ProblemNumber, want)
		}
	}

	insertTestProblem(t, ctx, db, testutil.NewProblem().WithNumber("P-0042"))
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithNumber("EXT-900"))
	next, err := db.NextProblemNumber(ctx)
	if err != nil {
		t.Fatalf("NextProblemNumber failed: %v", err)
	}
	if next != "P-0043" {
		t.Fatalf("NextProblemNumber = %q, want P-0043", next)
	}
}

func TestOversizedNumberDoesNotSeedSequence(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithNumber("P-99999999999999999999"))
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithNumber("P-0005"))

	next, err := db.NextProblemNumber(ctx)
	if err != nil {
		t.Fatalf("NextProblemNumber failed: %v", err)
	}
	if next != "P-0006" {
		t.Fatalf("NextProblemNumber = %q, want P-0006", next)
	}
	for _, want := range []string{"P-0006", "P-0007"} {
		id := insertTestProblem(t, ctx, db, testutil.NewProblem())
		p, err := db.GetProblem(ctx, id)
		if err != nil {
			t.Fatalf("GetProblem failed: %v", err)
		}
		if p.ProblemNumber != want {
			t.Fatalf("number = %q, want %q", p.ProblemNumber, want)
		}
	}
}

func TestNumberSequenceExhausted(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithNumber("P-9223372036854775807"))

	if _, err := db.NextProblemNumber(ctx); !errors.Is(err, ErrNumberSpaceExhausted) {
		t.Fatalf("expected ErrNumberSpaceExhausted, got %v", err)
	}
	if _, err := db.InsertProblem(ctx, testutil.NewProblem().Input()); !errors.Is(err, ErrNumberSpaceExhausted) {
		t.Fatalf("blank insert should fail with ErrNumberSpaceExhausted, got %v", err)
	}
}

func TestNumberSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"P-0042", 42, true},
		{"P-12abc", 12, true},
		{"P-", 0, false},
		{"P-x1", 0, false},
		{"P-99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := numberSuffix(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("numberSuffix(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDuplicateProblemNumber(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithNumber("P-0007"))

	_, err := db.InsertProblem(ctx, testutil.NewProblem().WithNumber(" P-0007 ").Input())
	if !errors.Is(err, ErrDuplicateProblemNumber) {
		t.Fatalf("expected ErrDuplicateProblemNumber, got %v", err)
	}
	all, _ := db.ListProblems(ctx)
	if len(all) != 1 {
		t.Fatalf("failed insert must not add a row, got %d", len(all))
	}
}

func TestInsertRequiresFields(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)

	_, err := db.InsertProblem(ctx, testutil.NewProblem().WithEntity("  ").Input())
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	_, err = db.InsertProblem(ctx, testutil.NewProblem().WithStatus("archived").Input())
	if !errors.Is(err, models.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestListPagePagination(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	for i := 1; i <= 25; i++ {
		insertTestProblem(t, ctx, db, testutil.NewProblem().WithDescription(fmt.Sprintf("problem %d", i)))
	}

	cases := []struct {
		request  int
		wantPage int
		firstID  int64
		lastID   int64
		count    int
	}{
		{1, 1, 25, 16, 10},
		{2, 2, 15, 6, 10},
		{3, 3, 5, 1, 5},
		{4, 3, 5, 1, 5},
		{0, 1, 25, 16, 10},
	}
	for _, tc := range cases {
		page, err := db.ListPage(ctx, tc.request, 10)
		if err != nil {
			t.Fatalf("ListPage(%d) failed: %v", tc.request, err)
		}
		if page.Page != tc.wantPage || page.TotalPages != 3 || page.Total != 25 {
			t.Fatalf("ListPage(%d) = page %d of %d (total %d)", tc.request, page.Page, page.TotalPages, page.Total)
		}
		if len(page.Items) != tc.count {
			t.Fatalf("ListPage(%d) returned %d items, want %d", tc.request, len(page.Items), tc.count)
		}
		if page.Items[0].ID != tc.firstID || page.Items[len(page.Items)-1].ID != tc.lastID {
			t.Fatalf("ListPage(%d) ids %d..%d, want %d..%d", tc.request,
				page.Items[0].ID, page.Items[len(page.Items)-1].ID, tc.firstID, tc.lastID)
		}
	}

	defaultSize, err := db.ListPage(ctx, 1, 0)
	if err != nil || defaultSize.Size != 10 {
		t.Fatalf("expected default page size 10, got %d err=%v", defaultSize.Size, err)
	}
}

func TestUpdateProblem(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	id := insertTestProblem(t, ctx, db, testutil.NewProblem())

	in := testutil.NewProblem().WithEntity("HR").WithDescription("badge reader").Input()
	if err := db.UpdateProblem(ctx, id, in); err != nil {
		t.Fatalf("UpdateProblem failed: %v", err)
	}
	p, err := db.GetProblem(ctx, id)
	if err != nil {
		t.Fatalf("GetProblem failed: %v", err)
	}
	if p.Entity != "HR" || p.Description != "badge reader" {
		t.Fatalf("fields not updated: %+v", p)
	}
	if p.ProblemNumber != "P-0001" {
		t.Fatalf("empty number should keep stored value, got %q", p.ProblemNumber)
	}

	in.ProblemNumber = "HR-1"
	in.Status = models.StatusCompleted
	if err := db.UpdateProblem(ctx, id, in); err != nil {
		t.Fatalf("UpdateProblem failed: %v", err)
	}
	p, _ = db.GetProblem(ctx, id)
	if p.ProblemNumber != "HR-1" || !p.CompletedDate.Valid {
		t.Fatalf("expected renumbered completed record, got %+v", p)
	}

	in.Status = models.StatusNew
	if err := db.UpdateProblem(ctx, id, in); err != nil {
		t.Fatalf("UpdateProblem failed: %v", err)
	}
	p, _ = db.GetProblem(ctx, id)
	if !p.CompletedDate.IsZero() {
		t.Fatalf("leaving completed must clear completed_date, got %+v", p.CompletedDate)
	}

	if err := db.UpdateProblem(ctx, 999, in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	id := insertTestProblem(t, ctx, db, testutil.NewProblem())

	done := models.NewTimestamp(testNow.Add(48 * time.Hour))
	if err := db.UpdateStatus(ctx, id, models.StatusCompleted, done); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	p, _ := db.GetProblem(ctx, id)
	if p.Status != models.StatusCompleted || p.CompletedDate.Raw != done.Raw {
		t.Fatalf("unexpected status update: %+v", p)
	}
	if days, ok := p.DaysToResolve(); !ok || days != 2 {
		t.Fatalf("DaysToResolve = %d,%v", days, ok)
	}
	if err := db.UpdateStatus(ctx, id, "bogus", models.Timestamp{}); !errors.Is(err, models.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}

	if err := db.DeleteProblem(ctx, id); err != nil {
		t.Fatalf("DeleteProblem failed: %v", err)
	}
	if _, err := db.GetProblem(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteProblem(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}

	// ids are never reused
	next := insertTestProblem(t, ctx, db, testutil.NewProblem())
	if next <= id {
		t.Fatalf("id reused: %d after deleting %d", next, id)
	}
}

func TestCountsAndOpenProblems(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	insertTestProblem(t, ctx, db, testutil.NewProblem())
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithStatus(models.StatusInProgress))
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithStatus(models.StatusInProgress))
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithStatus(models.StatusCompleted))

	stats, err := db.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	want := models.Stats{Total: 4, New: 1, InProgress: 2, Completed: 1}
	if stats != want {
		t.Fatalf("CountByStatus = %+v, want %+v", stats, want)
	}

	open, err := db.ListOpenProblems(ctx)
	if err != nil {
		t.Fatalf("ListOpenProblems failed: %v", err)
	}
	if len(open) != 3 {
		t.Fatalf("expected 3 open problems, got %d", len(open))
	}
	for _, p := range open {
		if p.IsCompleted() {
			t.Fatalf("completed problem listed as open: %+v", p)
		}
	}
}

func TestFindByNumber(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	insertTestProblem(t, ctx, db, testutil.NewProblem().WithNumber("IT-5").WithReporter("Omar", "0509999999"))

	p, err := db.FindByNumber(ctx, "IT-5")
	if err != nil {
		t.Fatalf("FindByNumber failed: %v", err)
	}
	if p.Reporter != "Omar" {
		t.Fatalf("unexpected record: %+v", p)
	}
	if _, err := db.FindByNumber(ctx, "IT-6"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
