package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/lifecycle"
	"github.com/akyairhashvil/problemtracker/internal/transfer"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state.Mode {
	case ModeForm:
		return m.handleFormKey(msg)
	case ModeConfirmNotify:
		return m.handleConfirmNotify(key)
	case ModeConfirmDelete:
		return m.handleConfirmDelete(key)
	case ModePrompt:
		return m.handlePromptKey(msg)
	}

	if key == "esc" {
		m.state.ShowStale = false
		m.state.setMessage("")
		return m, nil
	}
	if next, cmd, handled := m.keys.Handle(m, key); handled {
		return next, cmd
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.state.backToList()
		return m, nil
	}
	form, cmd, submit := m.form.update(msg)
	m.form = form
	if !submit {
		return m, cmd
	}
	return m.saveForm()
}

func (m Model) saveForm() (Model, tea.Cmd) {
	in := m.form.input()
	if m.state.EditID != 0 {
		if err := m.deps.Store.UpdateProblem(m.ctx, m.state.EditID, in); err != nil {
			m.state.setError(err)
			return m, nil
		}
		m.state.setMessage("تم تحديث المشكلة")
	} else {
		if _, err := m.deps.Store.InsertProblem(m.ctx, in); err != nil {
			m.state.setError(err)
			return m, nil
		}
		m.state.Page = 1
		m.table.SetCursor(0)
		m.state.setMessage("تمت إضافة المشكلة")
	}
	m.state.backToList()
	m.reload()
	return m, nil
}

func (m Model) handleConfirmNotify(key string) (Model, tea.Cmd) {
	switch key {
	case "y", "Y", "enter":
		return m.commit(true)
	case "n", "N", "esc":
		return m.commit(false)
	}
	return m, nil
}

// commit applies the pending transition. The status changes whatever the
// answer; only the notification depends on it.
func (m Model) commit(notify bool) (Model, tea.Cmd) {
	if m.state.Pending == nil {
		m.state.backToList()
		return m, nil
	}
	res, err := m.deps.Lifecycle.Commit(m.ctx, *m.state.Pending, notify)
	m.state.backToList()
	if err != nil {
		m.state.setError(err)
		m.reload()
		return m, nil
	}
	msg := fmt.Sprintf("تم تغيير الحالة إلى: %s", res.To)
	switch {
	case res.Notified:
		msg += " • تم نسخ رابط الإشعار"
	case res.Link != "":
		msg += " • " + res.Link
	}
	m.state.setMessage(msg)
	m.reload()
	return m, nil
}

func (m Model) handleConfirmDelete(key string) (Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		id := m.state.DeleteID
		m.state.backToList()
		if err := m.deps.Store.DeleteProblem(m.ctx, id); err != nil {
			m.state.setError(err)
			return m, nil
		}
		m.state.setMessage("تم حذف المشكلة")
		m.reload()
	case "n", "N", "esc":
		m.state.backToList()
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		m.state.backToList()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.prompt.Value())
		kind := m.state.Prompt
		m.closePrompt()
		return m.submitPrompt(kind, value)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) openPrompt(kind PromptKind) tea.Cmd {
	m.state.Mode = ModePrompt
	m.state.Prompt = kind
	m.prompt.Reset()
	m.prompt.EchoMode = textinput.EchoNormal
	switch kind {
	case PromptRestorePassphrase, PromptBackupPassphrase:
		m.prompt.EchoMode = textinput.EchoPassword
		m.prompt.EchoCharacter = '•'
	}
	m.prompt.Focus()
	return textinput.Blink
}

func (m *Model) closePrompt() {
	m.prompt.Reset()
	m.prompt.Blur()
}

func (m Model) submitPrompt(kind PromptKind, value string) (Model, tea.Cmd) {
	restorePath := m.state.RestorePath
	m.state.backToList()
	if m.deps.Files == nil {
		m.state.setError(errUnavailable)
		return m, nil
	}
	switch kind {
	case PromptImportPath:
		if value == "" {
			return m, nil
		}
		res, err := m.deps.Files.Import(m.ctx, value)
		if err != nil {
			m.state.setError(err)
			return m, nil
		}
		m.state.Page = 1
		m.state.setMessage(fmt.Sprintf("تم استيراد %d سجل (جديد %d، محدث %d)", res.Total(), res.Inserted, res.Updated))
		m.reload()
	case PromptRestorePath:
		if value == "" {
			return m, nil
		}
		if strings.HasSuffix(value, config.EncryptedBackupExt) {
			cmd := m.openPrompt(PromptRestorePassphrase)
			m.state.RestorePath = value
			return m, cmd
		}
		return m.restore(value, "")
	case PromptRestorePassphrase:
		return m.restore(restorePath, value)
	case PromptBackupPassphrase:
		path, err := m.deps.Files.ExportBackup(m.ctx, value)
		if err != nil {
			m.state.setError(err)
			return m, nil
		}
		m.state.setMessage("تم حفظ النسخة المشفرة: " + path)
	}
	return m, nil
}

func (m Model) restore(path, passphrase string) (Model, tea.Cmd) {
	if err := m.deps.Files.RestoreFile(m.ctx, path, passphrase); err != nil {
		m.state.setError(err)
		return m, nil
	}
	m.state.Page = 1
	m.state.setMessage("تمت استعادة قاعدة البيانات")
	m.reload()
	return m, nil
}

func handleAdd(m Model, _ string) (Model, tea.Cmd, bool) {
	m.form = newProblemForm()
	if next, err := m.deps.Store.NextProblemNumber(m.ctx); err == nil {
		m.form.inputs[fieldNumber].Placeholder = next
	}
	m.state.EditID = 0
	m.state.Mode = ModeForm
	return m, textinput.Blink, true
}

func handleEdit(m Model, _ string) (Model, tea.Cmd, bool) {
	row, ok := m.selected()
	if !ok {
		return m, nil, true
	}
	p, err := m.deps.Store.GetProblem(m.ctx, row.ID)
	if err != nil {
		m.state.setError(err)
		return m, nil, true
	}
	m.form = formFor(p)
	m.state.EditID = p.ID
	m.state.Mode = ModeForm
	return m, textinput.Blink, true
}

func handleAdvance(m Model, _ string) (Model, tea.Cmd, bool) {
	row, ok := m.selected()
	if !ok {
		return m, nil, true
	}
	pending, err := m.deps.Lifecycle.Prepare(m.ctx, row.ID)
	if err != nil {
		m.state.setError(err)
		return m, nil, true
	}
	m.state.Pending = &pending
	if pending.NeedsConfirmation {
		m.state.Mode = ModeConfirmNotify
		return m, nil, true
	}
	next, cmd := m.commit(false)
	return next, cmd, true
}

func handleDelete(m Model, _ string) (Model, tea.Cmd, bool) {
	row, ok := m.selected()
	if !ok {
		return m, nil, true
	}
	m.state.DeleteID = row.ID
	m.state.Mode = ModeConfirmDelete
	return m, nil, true
}

func handleNextPage(m Model, _ string) (Model, tea.Cmd, bool) {
	if !m.page.HasNext() {
		return m, nil, true
	}
	m.state.Page++
	m.table.SetCursor(0)
	m.reload()
	return m, nil, true
}

func handlePrevPage(m Model, _ string) (Model, tea.Cmd, bool) {
	if !m.page.HasPrev() {
		return m, nil, true
	}
	m.state.Page--
	m.table.SetCursor(0)
	m.reload()
	return m, nil, true
}

func handleCopyLink(m Model, _ string) (Model, tea.Cmd, bool) {
	row, ok := m.selected()
	if !ok {
		return m, nil, true
	}
	if m.deps.Opener == nil {
		m.state.setError(errUnavailable)
		return m, nil, true
	}
	if lifecycle.NormalizePhone(row.Phone) == "" {
		m.state.setError(errors.New("لا يوجد رقم هاتف لهذه المشكلة"))
		return m, nil, true
	}
	if err := m.deps.Opener.OpenLink(m.ctx, row.Link); err != nil {
		m.state.setError(err)
		return m, nil, true
	}
	m.state.setMessage("تم نسخ الرابط: " + row.Link)
	return m, nil, true
}

func handleToggleStale(m Model, _ string) (Model, tea.Cmd, bool) {
	m.state.ShowStale = !m.state.ShowStale
	return m, nil, true
}

func handleExportCSV(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.deps.Files == nil {
		m.state.setError(errUnavailable)
		return m, nil, true
	}
	path, err := m.deps.Files.ExportCSV(m.ctx)
	switch {
	case errors.Is(err, transfer.ErrNothingToExport):
		m.state.setMessage("لا توجد بيانات للتصدير")
	case err != nil:
		m.state.setError(err)
	default:
		m.state.setMessage("تم التصدير: " + path)
	}
	return m, nil, true
}

func handleBackup(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.deps.Files == nil {
		m.state.setError(errUnavailable)
		return m, nil, true
	}
	path, err := m.deps.Files.ExportBackup(m.ctx, "")
	if err != nil {
		m.state.setError(err)
		return m, nil, true
	}
	m.state.setMessage("تم حفظ النسخة الاحتياطية: " + path)
	return m, nil, true
}

func handleEncryptedBackup(m Model, _ string) (Model, tea.Cmd, bool) {
	cmd := m.openPrompt(PromptBackupPassphrase)
	return m, cmd, true
}

func handleImport(m Model, _ string) (Model, tea.Cmd, bool) {
	cmd := m.openPrompt(PromptImportPath)
	return m, cmd, true
}

func handleRestore(m Model, _ string) (Model, tea.Cmd, bool) {
	cmd := m.openPrompt(PromptRestorePath)
	return m, cmd, true
}

func handleReport(m Model, _ string) (Model, tea.Cmd, bool) {
	if m.deps.Files == nil {
		m.state.setError(errUnavailable)
		return m, nil, true
	}
	path, err := m.deps.Files.WriteReport(m.ctx)
	if err != nil {
		m.state.setError(err)
		return m, nil, true
	}
	m.state.setMessage("تم إنشاء التقرير: " + path)
	return m, nil, true
}

func handleCycleTheme(m Model, _ string) (Model, tea.Cmd, bool) {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	next := names[0]
	for i, name := range names {
		if Themes[name].Name == m.theme.Name {
			next = names[(i+1)%len(names)]
		}
	}
	SetTheme(next)
	m.theme = CurrentTheme
	m.table.SetStyles(m.theme.TableStyles())
	return m, nil, true
}

func handleQuit(m Model, _ string) (Model, tea.Cmd, bool) {
	return m, tea.Quit, true
}
