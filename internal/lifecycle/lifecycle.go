// Package lifecycle advances problems through NEW -> IN_PROGRESS ->
// COMPLETED -> NEW and composes the stakeholder notification link.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

var (
	ErrUnknownStatus = models.ErrUnknownStatus
	ErrStalePending  = errors.New("problem status changed since the transition was prepared")
)

// Next returns the status that follows s.
func Next(s models.Status) (models.Status, error) {
	switch s {
	case models.StatusNew:
		return models.StatusInProgress, nil
	case models.StatusInProgress:
		return models.StatusCompleted, nil
	case models.StatusCompleted:
		return models.StatusNew, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// NeedsConfirmation reports whether the edge from -> to offers a notification.
func NeedsConfirmation(from, to models.Status) bool {
	return from == models.StatusNew && to == models.StatusInProgress
}

// Store is the part of the repository the engine mutates through.
type Store interface {
	GetProblem(ctx context.Context, id int64) (models.Problem, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status, completed models.Timestamp) error
}

// LinkOpener hands a composed message link to the user.
type LinkOpener interface {
	OpenLink(ctx context.Context, link string) error
}

type Options struct {
	LinkBase string
	Message  string
	Opener   LinkOpener
	Clock    func() time.Time
	Logger   *zap.Logger
}

type Engine struct {
	store    Store
	linkBase string
	message  string
	opener   LinkOpener
	now      func() time.Time
	log      *zap.Logger
}

func NewEngine(store Store, opts Options) *Engine {
	e := &Engine{
		store:    store,
		linkBase: opts.LinkBase,
		message:  opts.Message,
		opener:   opts.Opener,
		now:      opts.Clock,
		log:      opts.Logger,
	}
	if e.linkBase == "" {
		e.linkBase = config.DefaultLinkBase
	}
	if e.message == "" {
		e.message = config.DefaultNotifyText
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = util.Logger()
	}
	return e
}

// Pending is a prepared transition awaiting Commit.
type Pending struct {
	Problem           models.Problem
	From              models.Status
	To                models.Status
	NeedsConfirmation bool
	Prompt            string
}

type Result struct {
	ID       int64
	From     models.Status
	To       models.Status
	Link     string
	Notified bool
}

func (e *Engine) Prepare(ctx context.Context, id int64) (Pending, error) {
	p, err := e.store.GetProblem(ctx, id)
	if err != nil {
		return Pending{}, err
	}
	to, err := Next(p.Status)
	if err != nil {
		return Pending{}, fmt.Errorf("problem %d: %w", id, err)
	}
	pending := Pending{Problem: p, From: p.Status, To: to}
	if NeedsConfirmation(p.Status, to) {
		pending.NeedsConfirmation = true
		pending.Prompt = fmt.Sprintf("هل تريد إشعار المستفيد %s بخصوص المشكلة \"%s\"؟", p.Reporter, p.Description)
	}
	return pending, nil
}

// Commit applies the transition. The status always changes; the message
// link is composed and opened only when notify is set on a gated edge.
func (e *Engine) Commit(ctx context.Context, pending Pending, notify bool) (Result, error) {
	id := pending.Problem.ID
	current, err := e.store.GetProblem(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if current.Status != pending.From {
		return Result{}, fmt.Errorf("problem %d: %w", id, ErrStalePending)
	}

	var completed models.Timestamp
	if pending.To == models.StatusCompleted {
		completed = models.NewTimestamp(e.now())
	}
	if err := e.store.UpdateStatus(ctx, id, pending.To, completed); err != nil {
		return Result{}, err
	}
	e.log.Info("status advanced",
		zap.Int64("id", id),
		zap.String("from", pending.From.Code()),
		zap.String("to", pending.To.Code()))

	res := Result{ID: id, From: pending.From, To: pending.To}
	if notify && pending.NeedsConfirmation {
		res.Link = MessageLink(e.linkBase, current, e.message)
		if e.opener == nil {
			return res, nil
		}
		if err := e.opener.OpenLink(ctx, res.Link); err != nil {
			e.log.Warn("notify link not opened", zap.Int64("id", id), zap.Error(err))
		} else {
			res.Notified = true
		}
	}
	return res, nil
}

// Advance prepares and commits in one step.
func (e *Engine) Advance(ctx context.Context, id int64, notify bool) (Result, error) {
	pending, err := e.Prepare(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return e.Commit(ctx, pending, notify)
}
