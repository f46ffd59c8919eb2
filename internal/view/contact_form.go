// Package view renders the contact form as templ components.
//
// Elements tests and scripts rely on carry stable data-testid markers:
// "error" on every displayed validation message, "results" around the
// submitted values and one "<field>Display" line per submitted value.
package view

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/contactform/internal/form"
)

// DefaultTitle is the heading shown above the form.
const DefaultTitle = "Contact Form"

// Test ids.
const (
	TestIDError   = "error"
	TestIDResults = "results"
)

// Props drives a ContactForm render.
type Props struct {
	Title string
	State form.State
	// Action is the POST target of the form; "/" when empty.
	Action string
	// LiveURL enables the websocket session script when set.
	LiveURL string
}

func (p Props) title() string {
	if p.Title == "" {
		return DefaultTitle
	}
	return p.Title
}

func (p Props) action() string {
	if p.Action == "" {
		return "/"
	}
	return p.Action
}

// htmlWriter keeps the first write error so rendering code can stay linear.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// ContactForm renders the heading, the four inputs with their error slots,
// the submit button and the results area.
func ContactForm(p Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}

		h.raw(`<div class="contact-form" id="contact-form">`)
		h.raw(`<form method="post" novalidate action="`)
		h.text(p.action())
		h.raw(`"`)
		if p.LiveURL != "" {
			h.raw(` data-live="`)
			h.text(p.LiveURL)
			h.raw(`"`)
		}
		h.raw(`><h1>`)
		h.text(p.title())
		h.raw(`</h1>`)

		for _, field := range form.Fields {
			h.render(Input(field, p.State.Values.Get(field), p.State.Errors[field]))
		}

		h.raw(`<button type="submit">Submit</button></form>`)
		h.raw(`<div id="results">`)
		if p.State.Submitted != nil {
			h.render(Results(*p.State.Submitted))
		}
		h.raw(`</div></div>`)

		return h.err
	})
}

// Input renders one labelled control and its error slot.
func Input(field form.Field, value, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		id := string(field)

		h.raw(`<div class="field"><label for="`)
		h.text(id)
		h.raw(`">`)
		h.text(field.Label())
		if field.Required() {
			h.raw(`*`)
		}
		h.raw(`</label>`)

		if field == form.FieldMessage {
			h.raw(`<textarea id="`)
			h.text(id)
			h.raw(`" name="`)
			h.text(id)
			h.raw(`">`)
			h.text(value)
			h.raw(`</textarea>`)
		} else {
			inputType := "text"
			if field == form.FieldEmail {
				inputType = "email"
			}
			h.raw(`<input type="` + inputType + `" id="`)
			h.text(id)
			h.raw(`" name="`)
			h.text(id)
			h.raw(`" value="`)
			h.text(value)
			h.raw(`">`)
		}

		h.raw(`<div class="error-slot" id="`)
		h.text(id)
		h.raw(`-error">`)
		if errMsg != "" {
			h.render(FieldError(errMsg))
		}
		h.raw(`</div></div>`)

		return h.err
	})
}

// FieldError renders a single validation message.
func FieldError(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw(`<p data-testid="` + TestIDError + `">`)
		h.text(msg)
		h.raw(`</p>`)
		return h.err
	})
}

// Results renders the submitted snapshot. The message line is omitted when
// the message is empty.
func Results(v form.Values) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}

		h.raw(`<section data-testid="` + TestIDResults + `"><h2>You Submitted:</h2>`)
		for _, field := range form.Fields {
			value := v.Get(field)
			if field == form.FieldMessage && value == "" {
				continue
			}
			h.raw(`<p data-testid="`)
			h.text(DisplayTestID(field))
			h.raw(`">`)
			h.text(field.Label())
			h.raw(`: `)
			h.text(value)
			h.raw(`</p>`)
		}
		h.raw(`</section>`)

		return h.err
	})
}

// DisplayTestID returns the test id of a submitted value line, for example
// "messageDisplay".
func DisplayTestID(field form.Field) string {
	switch field {
	case form.FieldFirstName:
		return "firstnameDisplay"
	case form.FieldLastName:
		return "lastnameDisplay"
	case form.FieldEmail:
		return "emailDisplay"
	case form.FieldMessage:
		return "messageDisplay"
	default:
		return string(field) + "Display"
	}
}
