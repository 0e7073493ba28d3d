package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/akyairhashvil/problemtracker/internal/config"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderPager())
	b.WriteString("\n")
	if line := m.renderStatusLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.state.ShowStale && m.state.Stale.Count > 0 {
		b.WriteString(m.renderStalePanel())
		b.WriteString("\n")
	}
	switch m.state.Mode {
	case ModeForm:
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	case ModeConfirmNotify:
		b.WriteString(m.renderConfirmNotify())
		b.WriteString("\n")
	case ModeConfirmDelete:
		b.WriteString(m.theme.Modal.Render("حذف المشكلة المحددة؟ (y/n)"))
		b.WriteString("\n")
	case ModePrompt:
		b.WriteString(m.renderPrompt())
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())
	return m.theme.Base.Render(b.String())
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render("سجل المشاكل")
	counters := fmt.Sprintf("الإجمالي %d", m.stats.Total)
	parts := []string{
		m.theme.Counter.Render(counters),
		m.theme.StatusNew.Render(fmt.Sprintf("جديد %d", m.stats.New)),
		m.theme.StatusWIP.Render(fmt.Sprintf("جاري %d", m.stats.InProgress)),
		m.theme.StatusDone.Render(fmt.Sprintf("مكتملة %d", m.stats.Completed)),
	}
	if m.state.Stale.Count > 0 {
		parts = append(parts, m.theme.Warning.Render(fmt.Sprintf("متأخرة %d", m.state.Stale.Count)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(parts, "  "))
}

func (m Model) renderPager() string {
	return m.theme.Dim.Render(fmt.Sprintf("صفحة %d من %d", m.page.Page, m.page.TotalPages))
}

func (m Model) renderStatusLine() string {
	var line string
	switch {
	case m.state.Err != nil:
		line = m.theme.Error.Render("خطأ: " + m.state.Err.Error())
	case m.state.Message != "":
		line = m.theme.Success.Render(m.state.Message)
	default:
		return ""
	}
	if m.width > 0 {
		line = ansi.Truncate(line, m.width-2, config.TruncationSuffix)
	}
	return line
}

func (m Model) renderStalePanel() string {
	shown := m.state.Stale
	rest := 0
	if len(shown.Items) > config.MaxStaleShown {
		rest = len(shown.Items) - config.MaxStaleShown
		shown.Items = shown.Items[:config.MaxStaleShown]
	}
	lines := shown.Lines()
	lines[0] = m.theme.Warning.Render(lines[0])
	for i := 1; i < len(lines); i++ {
		if m.width > 0 {
			lines[i] = ansi.Truncate(lines[i], m.width-8, config.TruncationSuffix)
		}
	}
	if rest > 0 {
		lines = append(lines, m.theme.Dim.Render(fmt.Sprintf("و %d أخرى", rest)))
	}
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderForm() string {
	title := "إضافة مشكلة"
	if m.state.EditID != 0 {
		title = "تعديل المشكلة"
	}
	lines := []string{m.theme.Header.Render(title)}
	for i := 0; i < fieldCount; i++ {
		label := fieldLabels[i]
		if i == m.form.focus {
			label = m.theme.Focused.Render("› " + label)
		} else {
			label = m.theme.Dim.Render("  " + label)
		}
		var value string
		if i == fieldStatus {
			value = m.theme.StatusStyle(m.form.status).Render("‹ " + string(m.form.status) + " ›")
		} else {
			value = m.form.inputs[i].View()
		}
		lines = append(lines, label, m.theme.Input.Render(value))
	}
	lines = append(lines, m.theme.Dim.Render("tab تنقل • ctrl+s حفظ • esc إلغاء"))
	return m.theme.Modal.Render(strings.Join(lines, "\n"))
}

func (m Model) renderConfirmNotify() string {
	if m.state.Pending == nil {
		return ""
	}
	p := m.state.Pending
	lines := []string{
		m.theme.Header.Render(fmt.Sprintf("%s ← %s", p.From, p.To)),
		p.Prompt,
		m.theme.Dim.Render("y إشعار • n تغيير الحالة فقط"),
	}
	return m.theme.Modal.Render(strings.Join(lines, "\n"))
}

func (m Model) renderPrompt() string {
	var label string
	switch m.state.Prompt {
	case PromptImportPath:
		label = "مسار ملف الاستيراد (csv, xlsx, xls)"
	case PromptRestorePath:
		label = "مسار ملف النسخة الاحتياطية"
	case PromptRestorePassphrase:
		label = "كلمة مرور النسخة"
	case PromptBackupPassphrase:
		label = fmt.Sprintf("كلمة مرور التشفير (%d أحرف على الأقل)", config.MinPassphraseChars)
	}
	lines := []string{
		m.theme.Header.Render(label),
		m.theme.Input.Render(m.prompt.View()),
		m.theme.Dim.Render("enter تأكيد • esc إلغاء"),
	}
	return m.theme.Modal.Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	help := m.keys.HelpLine()
	if m.width > 0 {
		help = ansi.Truncate(help, m.width-2, config.TruncationSuffix)
	}
	return m.theme.Dim.Render(help)
}
