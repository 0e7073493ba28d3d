// Package staleness flags open problems added on an earlier calendar day.
package staleness

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

// Source lists the problems that are not completed.
type Source interface {
	ListOpenProblems(ctx context.Context) ([]models.Problem, error)
}

type Item struct {
	Problem models.Problem
	Days    int
}

type Report struct {
	CheckedAt time.Time
	Count     int
	Items     []Item
}

type Checker struct {
	source  Source
	loc     *time.Location
	minDays int
	now     func() time.Time
	log     *zap.Logger
}

type Options struct {
	Location *time.Location
	MinDays  int
	// Clock stamps the checks made by Run. Defaults to time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

func NewChecker(source Source, opts Options) *Checker {
	c := &Checker{source: source, loc: opts.Location, minDays: opts.MinDays, now: opts.Clock, log: opts.Logger}
	if c.now == nil {
		c.now = time.Now
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.minDays <= 0 {
		c.minDays = config.StaleAfterDays
	}
	if c.log == nil {
		c.log = util.Logger()
	}
	return c
}

// Check never mutates the register. Records with an unparseable added date
// are skipped.
func (c *Checker) Check(ctx context.Context, now time.Time) (Report, error) {
	open, err := c.source.ListOpenProblems(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("staleness check: %w", err)
	}
	report := Report{CheckedAt: now}
	for _, p := range open {
		if p.IsCompleted() || !p.AddedDate.Valid {
			continue
		}
		if CalendarDays(p.AddedDate.Time, now, c.loc) < c.minDays {
			continue
		}
		report.Items = append(report.Items, Item{Problem: p, Days: models.CeilDays(now.Sub(p.AddedDate.Time))})
	}
	report.Count = len(report.Items)
	return report, nil
}

// CalendarDays is the number of local midnights between from and to.
func CalendarDays(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, loc)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, loc)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// Run checks once immediately, then every interval until ctx ends. Each
// check finishes before the next one starts.
func (c *Checker) Run(ctx context.Context, interval time.Duration, fn func(Report)) error {
	if interval <= 0 {
		interval = config.StaleCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.runOnce(ctx, c.now(), fn)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.runOnce(ctx, c.now(), fn)
		}
	}
}

func (c *Checker) runOnce(ctx context.Context, now time.Time, fn func(Report)) {
	report, err := c.Check(ctx, now)
	if err != nil {
		c.log.Warn("staleness check failed", zap.Error(err))
		return
	}
	c.log.Debug("staleness check", zap.Int("stale", report.Count))
	fn(report)
}

func statusMarker(s models.Status) string {
	switch s {
	case models.StatusNew:
		return "🔴"
	case models.StatusInProgress:
		return "🟡"
	}
	return "⚪"
}

// Lines renders the notification panel, one block per stale problem.
func (r Report) Lines() []string {
	if r.Count == 0 {
		return []string{"لا توجد مشكلات متأخرة"}
	}
	lines := []string{fmt.Sprintf("مشكلات غير مكتملة: %d", r.Count)}
	for _, item := range r.Items {
		p := item.Problem
		lines = append(lines,
			fmt.Sprintf("⚠️ %s %s", statusMarker(p.Status), labelOrDash(p.ProblemNumber)),
			fmt.Sprintf("   المشكلة: \"%s\"", p.Description),
			fmt.Sprintf("   الجهة: %s", p.Entity),
			fmt.Sprintf("   الحالة: %s", p.Status),
			fmt.Sprintf("   مضى عليها: %d يوم", item.Days),
		)
	}
	return lines
}

func (r Report) String() string {
	return strings.Join(r.Lines(), "\n")
}

func labelOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
