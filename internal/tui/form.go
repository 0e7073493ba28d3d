package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
)

const (
	fieldNumber = iota
	fieldEntity
	fieldDescription
	fieldReporter
	fieldPhone
	fieldStatus
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"رقم المشكلة",
	"الجهة",
	"المشكلة",
	"المبلّغ",
	"الهاتف",
	"الحالة",
}

// problemForm edits one record. The status field is a selector cycled with
// left/right rather than a text input.
type problemForm struct {
	inputs [fieldStatus]textinput.Model
	status models.Status
	focus  int
}

func newProblemForm() problemForm {
	limits := [fieldStatus]int{
		config.MaxNumberLength,
		config.MaxEntityLength,
		config.MaxDescriptionLength,
		config.MaxReporterLength,
		config.MaxPhoneLength,
	}
	var f problemForm
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = limits[i]
		ti.Width = 44
		f.inputs[i] = ti
	}
	f.inputs[fieldNumber].Placeholder = "تلقائي"
	f.inputs[fieldPhone].Placeholder = "05XXXXXXXX"
	f.status = models.StatusNew
	f.setFocus(fieldEntity)
	return f
}

// formFor prefills the form from an existing record.
func formFor(p models.Problem) problemForm {
	f := newProblemForm()
	f.inputs[fieldNumber].SetValue(p.ProblemNumber)
	f.inputs[fieldEntity].SetValue(p.Entity)
	f.inputs[fieldDescription].SetValue(p.Description)
	f.inputs[fieldReporter].SetValue(p.Reporter)
	f.inputs[fieldPhone].SetValue(p.Phone)
	if p.Status.Valid() {
		f.status = p.Status
	}
	return f
}

func (f *problemForm) setFocus(i int) {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *problemForm) cycleStatus(step int) {
	idx := 0
	for i, s := range models.Statuses {
		if s == f.status {
			idx = i
		}
	}
	n := len(models.Statuses)
	f.status = models.Statuses[((idx+step)%n+n)%n]
}

func (f problemForm) input() models.ProblemInput {
	return models.ProblemInput{
		ProblemNumber: strings.TrimSpace(f.inputs[fieldNumber].Value()),
		Entity:        strings.TrimSpace(f.inputs[fieldEntity].Value()),
		Description:   strings.TrimSpace(f.inputs[fieldDescription].Value()),
		Reporter:      strings.TrimSpace(f.inputs[fieldReporter].Value()),
		Phone:         strings.TrimSpace(f.inputs[fieldPhone].Value()),
		Status:        f.status,
	}
}

// update handles navigation keys and forwards the rest to the focused input.
// submit reports that the user asked to save.
func (f problemForm) update(msg tea.KeyMsg) (form problemForm, cmd tea.Cmd, submit bool) {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return f, nil, false
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return f, nil, false
	case "ctrl+s":
		return f, nil, true
	case "enter":
		if f.focus == fieldStatus {
			return f, nil, true
		}
		f.setFocus(f.focus + 1)
		return f, nil, false
	}
	if f.focus == fieldStatus {
		switch msg.String() {
		case "left", "h":
			f.cycleStatus(-1)
		case "right", "l", " ":
			f.cycleStatus(1)
		}
		return f, nil, false
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}
