package vip

import (
	"errors"
	"fmt"
	"strings"

	"archives/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Step is a state of the flow.
type Step string

const (
	StepClosed  Step = "closed"
	StepIntro   Step = "intro"
	StepName    Step = "name"
	StepDate    Step = "date"
	StepSuccess Step = "success"
)

// Inline error texts shown on a mismatch.
const (
	ErrTextUnknownName = "I don't recall that name in these archives."
	ErrTextWrongDate   = "Name matches, but the timing is wrong."
)

// ErrWrongStep is returned when an action does not apply to the current step.
var ErrWrongStep = errors.New("action not available at this step")

// Flow is one visitor's pass through the gate. Entries is the guest list
// snapshot taken when the flow was opened.
type Flow struct {
	Step    Step              `json:"step"`
	Entries []models.VIPEntry `json:"entries,omitempty"`
	Name    string            `json:"name,omitempty"`
	Matched *models.VIPEntry  `json:"matched,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// NewFlow returns a closed flow.
func NewFlow() *Flow {
	return &Flow{Step: StepClosed}
}

// View is the part of a flow that may be shown to the visitor. The matched
// entry's message appears only on success.
type View struct {
	Step     Step   `json:"step"`
	Error    string `json:"error,omitempty"`
	Greeting string `json:"greeting,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (f *Flow) reset() {
	*f = Flow{Step: StepClosed}
}

func (f *Flow) require(step Step) error {
	if f.Step != step {
		return fmt.Errorf("%w: at %s, need %s", ErrWrongStep, f.Step, step)
	}
	return nil
}

// Open starts (or restarts) the flow at the intro with a fresh guest list.
func (f *Flow) Open(entries []models.VIPEntry) {
	f.reset()
	f.Step = StepIntro
	f.Entries = entries
}

// Accept moves from the intro to the name prompt.
func (f *Flow) Accept() error {
	if err := f.require(StepIntro); err != nil {
		return err
	}
	f.Step = StepName
	f.Error = ""
	return nil
}

// Decline closes the flow from the intro.
func (f *Flow) Decline() error {
	if err := f.require(StepIntro); err != nil {
		return err
	}
	f.reset()
	return nil
}

// SubmitName checks name against the guest list. It reports whether the
// name matched; a miss leaves the flow at the name prompt with an error.
func (f *Flow) SubmitName(name string) (bool, error) {
	if err := f.require(StepName); err != nil {
		return false, err
	}
	entry, ok := MatchName(f.Entries, name)
	if !ok {
		f.Error = ErrTextUnknownName
		return false, nil
	}
	matched := *entry
	f.Matched = &matched
	f.Name = strings.TrimSpace(name)
	f.Error = ""
	f.Step = StepDate
	return true, nil
}

// SubmitDate checks the month and day of date against the matched entry.
func (f *Flow) SubmitDate(date string) (bool, error) {
	if err := f.require(StepDate); err != nil {
		return false, err
	}
	if f.Matched == nil || !SameMonthDay(date, f.Matched.Date) {
		f.Error = ErrTextWrongDate
		return false, nil
	}
	f.Error = ""
	f.Step = StepSuccess
	return true, nil
}

// Close resets the flow from any step.
func (f *Flow) Close() {
	f.reset()
}

// View renders the visitor-facing state.
func (f *Flow) View() View {
	v := View{Step: f.Step, Error: f.Error}
	if f.Step == StepSuccess && f.Matched != nil {
		v.Greeting = Greeting(f.Name)
		v.Message = f.Matched.Message
	}
	return v
}

// Greeting personalises the success screen with the name the visitor typed.
func Greeting(name string) string {
	return "Welcome, " + cases.Title(language.Und).String(strings.TrimSpace(name)) + "."
}
