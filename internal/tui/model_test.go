package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/akyairhashvil/problemtracker/internal/database"
	"github.com/akyairhashvil/problemtracker/internal/lifecycle"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/staleness"
	"github.com/akyairhashvil/problemtracker/internal/testutil"
	"github.com/akyairhashvil/problemtracker/internal/transfer"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type recordingOpener struct {
	links []string
}

func (r *recordingOpener) OpenLink(_ context.Context, link string) error {
	r.links = append(r.links, link)
	return nil
}

type fakeFiles struct {
	csvErr      error
	csvCalls    int
	backupPass  []string
	imported    []string
	restorePath string
	restorePass string
	reports     int
}

func (f *fakeFiles) ExportCSV(context.Context) (string, error) {
	f.csvCalls++
	if f.csvErr != nil {
		return "", f.csvErr
	}
	return "/tmp/problems_report_2024-03-10.csv", nil
}

func (f *fakeFiles) ExportBackup(_ context.Context, pass string) (string, error) {
	f.backupPass = append(f.backupPass, pass)
	return "/tmp/backup.sqlite", nil
}

func (f *fakeFiles) Import(_ context.Context, path string) (database.ImportResult, error) {
	f.imported = append(f.imported, path)
	return database.ImportResult{Inserted: 2, Updated: 1}, nil
}

func (f *fakeFiles) RestoreFile(_ context.Context, path, pass string) error {
	f.restorePath, f.restorePass = path, pass
	return nil
}

func (f *fakeFiles) WriteReport(context.Context) (string, error) {
	f.reports++
	return "/tmp/report.pdf", nil
}

type testEnv struct {
	db     *database.Database
	opener *recordingOpener
	files  *fakeFiles
	deps   Deps
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return testNow }
	db, err := database.Open(ctx, database.Options{Clock: clock})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("db close failed: %v", err)
		}
	})
	env := &testEnv{db: db, opener: &recordingOpener{}, files: &fakeFiles{}}
	env.deps = Deps{
		Store:     db,
		Lifecycle: lifecycle.NewEngine(db, lifecycle.Options{Opener: env.opener, Clock: clock}),
		Checker:   staleness.NewChecker(db, staleness.Options{Location: time.UTC}),
		Files:     env.files,
		Opener:    env.opener,
		Clock:     clock,
		PageSize:  10,
	}
	return env
}

func (e *testEnv) insert(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := e.db.InsertProblem(context.Background(), testutil.NewProblem().Input()); err != nil {
			t.Fatalf("InsertProblem failed: %v", err)
		}
	}
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, key string) Model {
	return send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = press(m, string(r))
	}
	return m
}

func TestNewModelLoadsFirstPage(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 25)

	m := NewModel(context.Background(), env.deps)
	if len(m.rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(m.rows))
	}
	if m.rows[0].Number != "P-0025" {
		t.Fatalf("expected newest first, got %s", m.rows[0].Number)
	}
	if m.page.TotalPages != 3 || m.stats.Total != 25 || m.stats.New != 25 {
		t.Fatalf("unexpected page/stats: %+v %+v", m.page, m.stats)
	}
	if !strings.Contains(m.View(), "صفحة 1 من 3") {
		t.Fatalf("expected pager in view")
	}
}

func TestPagingClampsAtEnds(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 25)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "p")
	if m.state.Page != 1 {
		t.Fatalf("expected page 1, got %d", m.state.Page)
	}
	m = press(m, "n")
	m = press(m, "n")
	m = press(m, "n")
	if m.state.Page != 3 {
		t.Fatalf("expected page 3, got %d", m.state.Page)
	}
	if len(m.rows) != 5 || m.rows[4].Number != "P-0001" {
		t.Fatalf("unexpected last page: %d rows", len(m.rows))
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.state.Page != 2 {
		t.Fatalf("expected page 2, got %d", m.state.Page)
	}
}

func TestEmptyRegister(t *testing.T) {
	env := setupTestEnv(t)
	m := NewModel(context.Background(), env.deps)
	if len(m.rows) != 0 || m.page.TotalPages != 0 {
		t.Fatalf("expected empty page, got %+v", m.page)
	}
	if !strings.Contains(m.View(), "صفحة 0 من 0") {
		t.Fatalf("expected page 0 of 0")
	}
	m = press(m, "s")
	m = press(m, "d")
	if m.state.Mode != ModeList || m.state.Err != nil {
		t.Fatalf("row actions on empty table should be no-ops, got mode %d err %v", m.state.Mode, m.state.Err)
	}
}

func TestAddProblemThroughForm(t *testing.T) {
	env := setupTestEnv(t)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "a")
	if m.state.Mode != ModeForm {
		t.Fatalf("expected form mode")
	}
	if m.form.inputs[fieldNumber].Placeholder != "P-0001" {
		t.Fatalf("expected next number hint, got %q", m.form.inputs[fieldNumber].Placeholder)
	}
	m = typeText(m, "IT")
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "printer")
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Ali")
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "0551234567")
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.state.Mode != ModeList {
		t.Fatalf("expected list mode after save, err %v", m.state.Err)
	}
	if len(m.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(m.rows))
	}
	row := m.rows[0]
	if row.Number != "P-0001" || row.Entity != "IT" || row.Status != models.StatusNew {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.Link != "https://wa.me/966551234567" {
		t.Fatalf("unexpected link %q", row.Link)
	}
}

func TestFormRejectsMissingFields(t *testing.T) {
	env := setupTestEnv(t)
	m := NewModel(context.Background(), env.deps)
	m = press(m, "a")
	m = typeText(m, "IT")
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.state.Mode != ModeForm {
		t.Fatalf("expected to stay in form")
	}
	if !errors.Is(m.state.Err, database.ErrMissingField) {
		t.Fatalf("expected missing field error, got %v", m.state.Err)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state.Mode != ModeList || m.stats.Total != 0 {
		t.Fatalf("expected cancel without insert")
	}
}

func TestEditCyclesStatus(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 1)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "e")
	if m.state.Mode != ModeForm || m.state.EditID == 0 {
		t.Fatalf("expected edit form")
	}
	m.form.setFocus(fieldStatus)
	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.form.status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", m.form.status)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.stats.Completed != 1 {
		t.Fatalf("expected completed count 1, got %+v", m.stats)
	}
	if m.rows[0].Completed == "-" {
		t.Fatalf("expected completion date to be stamped")
	}
}

func TestAdvanceWithNotification(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 1)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "s")
	if m.state.Mode != ModeConfirmNotify || m.state.Pending == nil {
		t.Fatalf("expected confirmation modal")
	}
	if !strings.Contains(m.View(), "Reporter") {
		t.Fatalf("expected reporter in confirmation prompt")
	}
	m = press(m, "y")
	if m.rows[0].Status != models.StatusInProgress {
		t.Fatalf("expected in progress, got %s", m.rows[0].Status)
	}
	if len(env.opener.links) != 1 || !strings.HasPrefix(env.opener.links[0], "https://wa.me/966500000000") {
		t.Fatalf("expected notify link, got %v", env.opener.links)
	}

	m = press(m, "s")
	if m.state.Mode != ModeList {
		t.Fatalf("in progress to completed should not ask")
	}
	if m.rows[0].Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", m.rows[0].Status)
	}
	if len(env.opener.links) != 1 {
		t.Fatalf("expected no further links")
	}
}

func TestAdvanceDeclinedStillChangesStatus(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 1)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "s")
	m = press(m, "n")
	if m.rows[0].Status != models.StatusInProgress {
		t.Fatalf("expected in progress, got %s", m.rows[0].Status)
	}
	if len(env.opener.links) != 0 {
		t.Fatalf("declined notification must not open a link")
	}
}

func TestDeleteConfirm(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 2)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "d")
	m = press(m, "n")
	if m.stats.Total != 2 {
		t.Fatalf("expected no delete on n")
	}
	m = press(m, "d")
	m = press(m, "y")
	if m.stats.Total != 1 || m.rows[0].Number != "P-0001" {
		t.Fatalf("expected newest row deleted, got %+v", m.rows)
	}
}

func TestTickReportsStaleProblems(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 1)
	m := NewModel(context.Background(), env.deps)

	next, cmd := m.Update(TickMsg(testNow.Add(2 * time.Hour)))
	m = next.(Model)
	if m.state.Stale.Count != 0 || cmd == nil {
		t.Fatalf("expected no stale items and a rescheduled tick")
	}

	m = send(m, TickMsg(testNow.Add(48*time.Hour)))
	if m.state.Stale.Count != 1 || !m.state.ShowStale {
		t.Fatalf("expected stale panel to open, got %+v", m.state.Stale)
	}
	if !strings.Contains(m.View(), "مشكلات غير مكتملة: 1") {
		t.Fatalf("expected stale panel in view")
	}
	m = press(m, "t")
	if m.state.ShowStale {
		t.Fatalf("expected toggle to hide panel")
	}
}

func TestCopyLink(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 1)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "c")
	if len(env.opener.links) != 1 || env.opener.links[0] != "https://wa.me/966500000000" {
		t.Fatalf("unexpected links %v", env.opener.links)
	}
}

func TestFileActions(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 1)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "x")
	if env.files.csvCalls != 1 || !strings.Contains(m.state.Message, ".csv") {
		t.Fatalf("expected csv export message, got %q", m.state.Message)
	}
	env.files.csvErr = transfer.ErrNothingToExport
	m = press(m, "x")
	if m.state.Err != nil || m.state.Message == "" {
		t.Fatalf("empty export should be a message, got err %v", m.state.Err)
	}

	m = press(m, "b")
	m = press(m, "B")
	if m.state.Mode != ModePrompt || m.state.Prompt != PromptBackupPassphrase {
		t.Fatalf("expected passphrase prompt")
	}
	m = typeText(m, "long-secret")
	if strings.Contains(m.View(), "long-secret") {
		t.Fatalf("passphrase must be masked")
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(env.files.backupPass) != 2 || env.files.backupPass[0] != "" || env.files.backupPass[1] != "long-secret" {
		t.Fatalf("unexpected backup calls %v", env.files.backupPass)
	}

	m = press(m, "P")
	if env.files.reports != 1 {
		t.Fatalf("expected report")
	}
}

func TestImportPrompt(t *testing.T) {
	env := setupTestEnv(t)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "i")
	m = typeText(m, "data.xlsx")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(env.files.imported) != 1 || env.files.imported[0] != "data.xlsx" {
		t.Fatalf("unexpected imports %v", env.files.imported)
	}
	if !strings.Contains(m.state.Message, "3") {
		t.Fatalf("expected total in message, got %q", m.state.Message)
	}

	m = press(m, "i")
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state.Mode != ModeList || len(env.files.imported) != 1 {
		t.Fatalf("esc should cancel the prompt")
	}
}

func TestRestoreAsksPassphraseForSealedBackup(t *testing.T) {
	env := setupTestEnv(t)
	m := NewModel(context.Background(), env.deps)

	m = press(m, "r")
	m = typeText(m, "backup.enc")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state.Prompt != PromptRestorePassphrase || m.state.RestorePath != "backup.enc" {
		t.Fatalf("expected passphrase prompt, got %+v", m.state)
	}
	m = typeText(m, "long-secret")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if env.files.restorePath != "backup.enc" || env.files.restorePass != "long-secret" {
		t.Fatalf("unexpected restore %q %q", env.files.restorePath, env.files.restorePass)
	}
	if m.state.Mode != ModeList {
		t.Fatalf("expected list mode")
	}

	m = press(m, "r")
	m = typeText(m, "backup.sqlite")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if env.files.restorePath != "backup.sqlite" || env.files.restorePass != "" {
		t.Fatalf("plain backup should restore without passphrase")
	}
}

func TestMissingFilesReportsUnavailable(t *testing.T) {
	env := setupTestEnv(t)
	env.deps.Files = nil
	m := NewModel(context.Background(), env.deps)
	m = press(m, "x")
	if !errors.Is(m.state.Err, errUnavailable) {
		t.Fatalf("expected unavailable error, got %v", m.state.Err)
	}
}

func TestResizeSwitchesCompactColumns(t *testing.T) {
	env := setupTestEnv(t)
	env.insert(t, 3)
	m := NewModel(context.Background(), env.deps)

	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 30})
	if !m.compact || len(m.table.Columns()) != 7 {
		t.Fatalf("expected compact columns, got %d", len(m.table.Columns()))
	}
	m = send(m, tea.WindowSizeMsg{Width: 160, Height: 30})
	if m.compact || len(m.table.Columns()) != 9 {
		t.Fatalf("expected full columns, got %d", len(m.table.Columns()))
	}
	if len(m.table.Rows()[0]) != 9 {
		t.Fatalf("rows should follow column layout")
	}
}

func TestCycleTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("default") })
	env := setupTestEnv(t)
	m := NewModel(context.Background(), env.deps)
	before := m.theme.Name
	m = press(m, "T")
	if m.theme.Name == before {
		t.Fatalf("expected theme to change")
	}
}

func TestHelpLineListsBindings(t *testing.T) {
	help := defaultRegistry().HelpLine()
	if !strings.HasPrefix(help, "a ") || !strings.Contains(help, "q خروج") {
		t.Fatalf("unexpected help line %q", help)
	}
	if strings.Contains(help, "T ") {
		t.Fatalf("bindings without description should be hidden")
	}
}
