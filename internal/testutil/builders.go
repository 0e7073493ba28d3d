package testutil

import (
	"time"

	"github.com/akyairhashvil/problemtracker/internal/models"
)

// ProblemBuilder provides fluent API for creating test problems.
type ProblemBuilder struct {
	problem models.Problem
}

func NewProblem() *ProblemBuilder {
	return &ProblemBuilder{
		problem: models.Problem{
			Entity:      "Test Entity",
			Description: "Test Problem",
			Reporter:    "Reporter",
			Phone:       "0500000000",
			Status:      models.StatusNew,
			AddedDate:   models.NewTimestamp(time.Now()),
		},
	}
}

func (b *ProblemBuilder) WithNumber(n string) *ProblemBuilder {
	b.problem.ProblemNumber = n
	return b
}

func (b *ProblemBuilder) WithEntity(e string) *ProblemBuilder {
	b.problem.Entity = e
	return b
}

func (b *ProblemBuilder) WithDescription(d string) *ProblemBuilder {
	b.problem.Description = d
	return b
}

func (b *ProblemBuilder) WithReporter(name, phone string) *ProblemBuilder {
	b.problem.Reporter = name
	b.problem.Phone = phone
	return b
}

func (b *ProblemBuilder) WithStatus(s models.Status) *ProblemBuilder {
	b.problem.Status = s
	return b
}

func (b *ProblemBuilder) AddedAt(t time.Time) *ProblemBuilder {
	b.problem.AddedDate = models.NewTimestamp(t)
	return b
}

func (b *ProblemBuilder) CompletedAt(t time.Time) *ProblemBuilder {
	b.problem.CompletedDate = models.NewTimestamp(t)
	return b
}

func (b *ProblemBuilder) Build() models.Problem {
	return b.problem
}

// Input returns the editable fields of the built problem.
func (b *ProblemBuilder) Input() models.ProblemInput {
	p := b.problem
	return models.ProblemInput{
		ProblemNumber: p.ProblemNumber,
		Entity:        p.Entity,
		Description:   p.Description,
		Reporter:      p.Reporter,
		Phone:         p.Phone,
		Status:        p.Status,
	}
}
