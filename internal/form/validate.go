package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultFirstNameMinLength is the minimum number of characters in a first name.
const DefaultFirstNameMinLength = 5

// Messages rendered for rule violations.
const (
	MsgLastNameRequired = "lastName is a required field."
	MsgEmailRequired    = "email is a required field."
	MsgEmailInvalid     = "email must be a valid email address."
)

// emailPattern accepts local@domain.tld where the domain has at least one dot.
var emailPattern = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@" +
		`[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?` +
		`(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`,
)

// Rules parameterises the validation rule set.
type Rules struct {
	FirstNameMinLength int
}

// DefaultRules returns the stock rule set.
func DefaultRules() Rules {
	return Rules{FirstNameMinLength: DefaultFirstNameMinLength}
}

func (r Rules) firstNameMin() int {
	if r.FirstNameMinLength <= 0 {
		return DefaultFirstNameMinLength
	}

	return r.FirstNameMinLength
}

// FirstNameMessage is the violation message for a short or missing first name.
func (r Rules) FirstNameMessage() string {
	return fmt.Sprintf("firstName must have at least %d characters.", r.firstNameMin())
}

// ValidateField checks one field and returns its violation message, or ""
// when the value passes.
func (r Rules) ValidateField(f Field, value string) string {
	value = normalize(value)

	switch f {
	case FieldFirstName:
		if utf8.RuneCountInString(value) < r.firstNameMin() {
			return r.FirstNameMessage()
		}
	case FieldLastName:
		if value == "" {
			return MsgLastNameRequired
		}
	case FieldEmail:
		if value == "" {
			return MsgEmailRequired
		}
		if !emailPattern.MatchString(value) {
			return MsgEmailInvalid
		}
	}

	return ""
}

// Validate evaluates every field independently. Valid fields are absent
// from the result.
func (r Rules) Validate(v Values) Errors {
	errs := make(Errors)
	for _, f := range Fields {
		if msg := r.ValidateField(f, v.Get(f)); msg != "" {
			errs[f] = msg
		}
	}

	return errs
}

// Validate runs the default rule set.
func Validate(v Values) Errors {
	return DefaultRules().Validate(v)
}

// normalize trims surrounding whitespace and composes the value to NFC so
// that "e" + combining acute counts as one character.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Errors maps a field to its current violation message.
type Errors map[Field]string

// FieldError is one entry of an ordered error list.
type FieldError struct {
	Field   Field  `json:"field"   yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Count returns the number of violated fields.
func (e Errors) Count() int {
	return len(e)
}

// Has reports whether the field currently violates a rule.
func (e Errors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Ordered returns the errors in field display order.
func (e Errors) Ordered() []FieldError {
	out := make([]FieldError, 0, len(e))
	for _, f := range Fields {
		if msg, ok := e[f]; ok {
			out = append(out, FieldError{Field: f, Message: msg})
		}
	}

	return out
}

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}

	return out
}
