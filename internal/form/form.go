package form

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a change names a field the form does not have.
var ErrUnknownField = errors.New("unknown form field")

// ContactForm is the stateful contact form. Every change re-runs validation
// synchronously; the submitted snapshot only moves on a valid submit.
//
// A ContactForm is owned by a single session and is not safe for concurrent use.
type ContactForm struct {
	rules     Rules
	values    Values
	errors    Errors
	touched   map[Field]bool
	submitted *Values
	attempts  int
}

// Option configures a ContactForm.
type Option func(*ContactForm)

// WithRules overrides the default rule set.
func WithRules(r Rules) Option {
	return func(f *ContactForm) {
		f.rules = r
	}
}

// New returns an empty form.
func New(opts ...Option) *ContactForm {
	f := &ContactForm{
		rules:   DefaultRules(),
		touched: make(map[Field]bool, len(Fields)),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.errors = f.rules.Validate(f.values)

	return f
}

// Change records the full current value of one field, marks it touched and
// recomputes the errors.
func (f *ContactForm) Change(field Field, value string) error {
	if !f.values.Set(field, value) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.touched[field] = true
	f.errors = f.rules.Validate(f.values)

	return nil
}

// Fill applies a change for every field of v.
func (f *ContactForm) Fill(v Values) {
	for _, field := range Fields {
		_ = f.Change(field, v.Get(field))
	}
}

// Submit re-validates every field and touches them all. When nothing is
// violated the current values become the submitted snapshot and Submit
// returns true; otherwise the previous snapshot is kept.
func (f *ContactForm) Submit() bool {
	f.attempts++
	for _, field := range Fields {
		f.touched[field] = true
	}
	f.errors = f.rules.Validate(f.values)
	if len(f.errors) > 0 {
		return false
	}

	snapshot := f.values
	f.submitted = &snapshot

	return true
}

// Reset returns the form to its freshly mounted state.
func (f *ContactForm) Reset() {
	f.values = Values{}
	f.touched = make(map[Field]bool, len(Fields))
	f.submitted = nil
	f.attempts = 0
	f.errors = f.rules.Validate(f.values)
}

// Values returns the current field values.
func (f *ContactForm) Values() Values {
	return f.values
}

// Errors returns every current violation, touched or not.
func (f *ContactForm) Errors() Errors {
	return f.errors.Clone()
}

// VisibleErrors returns the violations of touched fields only. These are the
// errors a user sees.
func (f *ContactForm) VisibleErrors() Errors {
	out := make(Errors, len(f.errors))
	for field, msg := range f.errors {
		if f.touched[field] {
			out[field] = msg
		}
	}

	return out
}

// Touched reports whether the field has been changed or submitted.
func (f *ContactForm) Touched(field Field) bool {
	return f.touched[field]
}

// Valid reports whether the current values pass every rule.
func (f *ContactForm) Valid() bool {
	return len(f.errors) == 0
}

// Submitted returns the last successfully submitted values.
func (f *ContactForm) Submitted() (Values, bool) {
	if f.submitted == nil {
		return Values{}, false
	}

	return *f.submitted, true
}

// Attempts counts submit actions since the last reset.
func (f *ContactForm) Attempts() int {
	return f.attempts
}

// Rules returns the rule set in use.
func (f *ContactForm) Rules() Rules {
	return f.rules
}

// State is the render-ready view of a form.
type State struct {
	Values    Values
	Errors    Errors
	Submitted *Values
}

// State captures what should be displayed right now.
func (f *ContactForm) State() State {
	s := State{
		Values: f.values,
		Errors: f.VisibleErrors(),
	}
	if f.submitted != nil {
		snapshot := *f.submitted
		s.Submitted = &snapshot
	}

	return s
}
