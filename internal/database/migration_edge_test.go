package database

import (
	"errors"
	"testing"
)

func TestIsIgnorableMigrationErr(t *testing.T) {
	if !isIgnorableMigrationErr(errors.New("duplicate column name: problem_number")) {
		t.Fatalf("expected duplicate column error to be ignorable")
	}
	if isIgnorableMigrationErr(errors.New("no such table: problems")) {
		t.Fatalf("expected non-duplicate error to be non-ignorable")
	}
}

func TestQueryBuilder(t *testing.T) {
	query, args := NewProblemQuery().WhereStatusNot("مكتملة").Limit(10).Offset(20).Build()
	want := "SELECT " + problemColumns + " FROM problems WHERE (status IS NULL OR status <> ?) ORDER BY id DESC LIMIT ? OFFSET ?"
	if query != want {
		t.Fatalf("query = %q\nwant   %q", query, want)
	}
	if len(args) != 3 || args[1] != 10 || args[2] != 20 {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestOpErrorFormatting(t *testing.T) {
	err := wrapErr(EntityProblem, "delete", 7, ErrNotFound)
	if err.Error() != "delete problem 7: not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound")
	}
	if wrapErr(EntityProblem, "noop", 0, nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
