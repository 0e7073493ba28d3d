package models

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a problem. The persisted value is the
// Arabic label so that existing snapshots load unchanged.
type Status string

const (
	StatusNew        Status = "جديد"
	StatusInProgress Status = "جاري حل المشكلة"
	StatusCompleted  Status = "مكتملة"
)

var ErrUnknownStatus = errors.New("unknown status")

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusCompleted}

// Code returns the stable English code (NEW, IN_PROGRESS, COMPLETED).
func (s Status) Code() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return string(s)
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts the stored labels and the English codes, ignoring case,
// surrounding space, and '-' or ' ' in place of '_'.
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.TrimSpace(raw)
	for _, s := range Statuses {
		if trimmed == string(s) {
			return s, nil
		}
	}
	code := strings.ToUpper(trimmed)
	code = strings.NewReplacer("-", "_", " ", "_").Replace(code)
	switch code {
	case "NEW":
		return StatusNew, nil
	case "IN_PROGRESS", "INPROGRESS":
		return StatusInProgress, nil
	case "COMPLETED", "DONE":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Problem is one row of the register.
type Problem struct {
	ID            int64
	ProblemNumber string
	Entity        string
	Description   string
	Reporter      string
	Phone         string
	Status        Status
	AddedDate     Timestamp
	CompletedDate Timestamp
}

func (p Problem) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// DaysToResolve is ceil(|completed - added| / 24h); ok is false unless both
// dates are valid.
func (p Problem) DaysToResolve() (int, bool) {
	if !p.AddedDate.Valid || !p.CompletedDate.Valid {
		return 0, false
	}
	return CeilDays(p.CompletedDate.Time.Sub(p.AddedDate.Time)), true
}

// ProblemInput carries the user-editable fields for insert and update.
type ProblemInput struct {
	ProblemNumber string
	Entity        string
	Description   string
	Reporter      string
	Phone         string
	Status        Status
}

// Page is one window of the register, newest first.
type Page struct {
	Items      []Problem
	Page       int
	TotalPages int
	Total      int
	Size       int
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Stats are the header counters.
type Stats struct {
	Total      int
	New        int
	InProgress int
	Completed  int
}
