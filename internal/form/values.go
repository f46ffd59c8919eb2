// Package form holds the contact form state machine: the field values a user
// has typed, the validation errors derived from them, and the snapshot taken
// when a submission passes every rule.
package form

// Field names one input of the contact form.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldEmail     Field = "email"
	FieldMessage   Field = "message"
)

// Fields lists every field in display order. Error lists and results are
// always emitted in this order.
var Fields = []Field{FieldFirstName, FieldLastName, FieldEmail, FieldMessage}

// ParseField resolves a wire name such as "firstName" to a Field.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}

	return "", false
}

// Label returns the human readable label rendered next to the input.
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldEmail:
		return "Email"
	case FieldMessage:
		return "Message"
	default:
		return string(f)
	}
}

// Required reports whether the field must be filled for a valid submission.
func (f Field) Required() bool {
	return f != FieldMessage
}

// Values is the record of everything typed into the form.
type Values struct {
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName"  yaml:"lastName"`
	Email     string `json:"email"     yaml:"email"`
	Message   string `json:"message"   yaml:"message"`
}

// Get returns the value of a single field.
func (v Values) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return v.FirstName
	case FieldLastName:
		return v.LastName
	case FieldEmail:
		return v.Email
	case FieldMessage:
		return v.Message
	default:
		return ""
	}
}

// Set assigns a single field and reports whether the field is known.
func (v *Values) Set(f Field, value string) bool {
	switch f {
	case FieldFirstName:
		v.FirstName = value
	case FieldLastName:
		v.LastName = value
	case FieldEmail:
		v.Email = value
	case FieldMessage:
		v.Message = value
	default:
		return false
	}

	return true
}
