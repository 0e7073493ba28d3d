package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type KeyHandler func(m Model, key string) (Model, tea.Cmd, bool)

type KeyBinding struct {
	Keys        []string
	Handler     KeyHandler
	Description string
	Priority    int
}

func (b KeyBinding) matches(key string) bool {
	for _, k := range b.Keys {
		if k == key {
			return true
		}
	}
	return false
}

type HandlerRegistry struct {
	bindings []KeyBinding
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

func (r *HandlerRegistry) Register(b KeyBinding) {
	r.bindings = append(r.bindings, b)
	sort.SliceStable(r.bindings, func(i, j int) bool {
		return r.bindings[i].Priority > r.bindings[j].Priority
	})
}

func (r *HandlerRegistry) Handle(m Model, key string) (Model, tea.Cmd, bool) {
	for _, b := range r.bindings {
		if b.matches(key) {
			next, cmd, handled := b.Handler(m, key)
			if handled {
				return next, cmd, true
			}
		}
	}
	return m, nil, false
}

// HelpLine renders "key desc" pairs in registration priority order.
func (r *HandlerRegistry) HelpLine() string {
	parts := make([]string, 0, len(r.bindings))
	for _, b := range r.bindings {
		if b.Description == "" {
			continue
		}
		parts = append(parts, b.Keys[0]+" "+b.Description)
	}
	return strings.Join(parts, " • ")
}

func defaultRegistry() *HandlerRegistry {
	r := NewHandlerRegistry()
	r.Register(KeyBinding{Keys: []string{"a"}, Handler: handleAdd, Description: "إضافة", Priority: 100})
	r.Register(KeyBinding{Keys: []string{"e", "enter"}, Handler: handleEdit, Description: "تعديل", Priority: 95})
	r.Register(KeyBinding{Keys: []string{"s"}, Handler: handleAdvance, Description: "تغيير الحالة", Priority: 90})
	r.Register(KeyBinding{Keys: []string{"d", "delete"}, Handler: handleDelete, Description: "حذف", Priority: 85})
	r.Register(KeyBinding{Keys: []string{"n", "right"}, Handler: handleNextPage, Description: "التالي", Priority: 80})
	r.Register(KeyBinding{Keys: []string{"p", "left"}, Handler: handlePrevPage, Description: "السابق", Priority: 79})
	r.Register(KeyBinding{Keys: []string{"c"}, Handler: handleCopyLink, Description: "نسخ رابط التواصل", Priority: 70})
	r.Register(KeyBinding{Keys: []string{"t"}, Handler: handleToggleStale, Description: "الإشعارات", Priority: 65})
	r.Register(KeyBinding{Keys: []string{"x"}, Handler: handleExportCSV, Description: "تصدير CSV", Priority: 60})
	r.Register(KeyBinding{Keys: []string{"b"}, Handler: handleBackup, Description: "نسخة احتياطية", Priority: 55})
	r.Register(KeyBinding{Keys: []string{"B"}, Handler: handleEncryptedBackup, Description: "نسخة مشفرة", Priority: 54})
	r.Register(KeyBinding{Keys: []string{"i"}, Handler: handleImport, Description: "استيراد", Priority: 50})
	r.Register(KeyBinding{Keys: []string{"r"}, Handler: handleRestore, Description: "استعادة", Priority: 45})
	r.Register(KeyBinding{Keys: []string{"P"}, Handler: handleReport, Description: "تقرير PDF", Priority: 40})
	r.Register(KeyBinding{Keys: []string{"T"}, Handler: handleCycleTheme, Priority: 10})
	r.Register(KeyBinding{Keys: []string{"q"}, Handler: handleQuit, Description: "خروج", Priority: 1})
	return r
}
