package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/staleness"
	"github.com/akyairhashvil/problemtracker/internal/testutil"
)

func sampleProblems() []models.Problem {
	added := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return []models.Problem{
		testutil.NewProblem().WithNumber("P-0003").WithDescription("A very long description that will not fit in its column at all").AddedAt(added).Build(),
		testutil.NewProblem().WithNumber("P-0002").WithStatus(models.StatusInProgress).AddedAt(added).Build(),
		testutil.NewProblem().WithNumber("P-0001").WithStatus(models.StatusCompleted).AddedAt(added).CompletedAt(added.Add(48 * time.Hour)).Build(),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	problems := sampleProblems()
	stale := staleness.Report{Count: 1, Items: []staleness.Item{{Problem: problems[0], Days: 9}}}

	var buf bytes.Buffer
	if err := Render(&buf, problems, stale, Options{GeneratedAt: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderMissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleProblems(), staleness.Report{}, Options{FontPath: filepath.Join(t.TempDir(), "missing.ttf")})
	if err == nil {
		t.Fatalf("expected error for missing font")
	}
}

func TestWritePDFCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "problems_report_2024-03-10.pdf")
	if err := WritePDF(path, nil, staleness.Report{}, Options{}); err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat report: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("report is empty")
	}
}

func TestCountStatuses(t *testing.T) {
	stats := countStatuses(sampleProblems())
	if stats.Total != 3 || stats.New != 1 || stats.InProgress != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
