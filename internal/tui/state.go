package tui

import (
	"github.com/akyairhashvil/problemtracker/internal/lifecycle"
	"github.com/akyairhashvil/problemtracker/internal/staleness"
)

// Mode is the interaction mode of the screen.
type Mode int

const (
	ModeList Mode = iota
	ModeForm
	ModeConfirmNotify
	ModeConfirmDelete
	ModePrompt
)

// PromptKind says what a single-line prompt is collecting.
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptImportPath
	PromptRestorePath
	PromptRestorePassphrase
	PromptBackupPassphrase
)

// State is the session state: everything that survives between key presses
// apart from widget internals.
type State struct {
	Mode        Mode
	Page        int
	EditID      int64
	DeleteID    int64
	Pending     *lifecycle.Pending
	Prompt      PromptKind
	RestorePath string
	ShowStale   bool
	Stale       staleness.Report
	Message     string
	Err         error
}

func newState() State {
	return State{Mode: ModeList, Page: 1}
}

func (s *State) setMessage(msg string) {
	s.Message = msg
	s.Err = nil
}

func (s *State) setError(err error) {
	s.Err = err
	s.Message = ""
}

// backToList leaves any modal and drops its transient data.
func (s *State) backToList() {
	s.Mode = ModeList
	s.EditID = 0
	s.DeleteID = 0
	s.Pending = nil
	s.Prompt = PromptNone
	s.RestorePath = ""
}
