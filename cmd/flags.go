package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/conneroisu/contactform/internal/form"
)

// addFormFlags registers one flag per form field, writing into v.
func addFormFlags(fs *pflag.FlagSet, v *form.Values) {
	fs.StringVar(&v.FirstName, "first-name", "", "First name (at least 5 characters)")
	fs.StringVar(&v.LastName, "last-name", "", "Last name")
	fs.StringVar(&v.Email, "email", "", "Email address")
	fs.StringVarP(&v.Message, "message", "m", "", "Optional message")
}

// outputFormat is a pflag.Value restricted to the supported encodings.
type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

var _ pflag.Value = (*outputFormat)(nil)

func (o *outputFormat) String() string { return string(*o) }

func (o *outputFormat) Type() string { return "format" }

func (o *outputFormat) Set(s string) error {
	switch f := outputFormat(strings.ToLower(s)); f {
	case outputText, outputJSON, outputYAML:
		*o = f
		return nil
	default:
		return fmt.Errorf("unsupported format %q (supported: text, json, yaml)", s)
	}
}

func addOutputFlag(fs *pflag.FlagSet, o *outputFormat) {
	*o = outputText
	fs.VarP(o, "output", "o", "Output format (text|json|yaml)")
}

// resetFlags restores every flag of fs to its default.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}
