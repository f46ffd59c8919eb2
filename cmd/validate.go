package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/contactform/internal/form"
)

// ErrInvalidForm is returned by validate when a submission fails.
var ErrInvalidForm = errors.New("form is invalid")

var (
	validateValues form.Values
	validateOutput outputFormat
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate contact form values and print the result",
	Long: `Submit the given values to a fresh contact form. Prints every validation
error, or the submitted values when all rules pass. Exits non-zero when the
submission is invalid.

Examples:
  contactform validate --first-name Jonny --last-name Bravo --email jonny@bravo.com
  contactform validate --email somee@amil --output json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addFormFlags(validateCmd.Flags(), &validateValues)
	addOutputFlag(validateCmd.Flags(), &validateOutput)
}

// ValidationReport is the machine readable result of validate.
type ValidationReport struct {
	Valid     bool              `json:"valid"               yaml:"valid"`
	Errors    []form.FieldError `json:"errors"              yaml:"errors"`
	Submitted *form.Values      `json:"submitted,omitempty" yaml:"submitted,omitempty"`
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f := form.New(form.WithRules(cfg.Form.Rules()))
	f.Fill(validateValues)
	ok := f.Submit()

	report := ValidationReport{Valid: ok, Errors: f.VisibleErrors().Ordered()}
	if submitted, has := f.Submitted(); has {
		report.Submitted = &submitted
	}

	if err := writeReport(cmd.OutOrStdout(), validateOutput, report); err != nil {
		return err
	}
	if !ok {
		return ErrInvalidForm
	}

	return nil
}

func writeReport(w io.Writer, format outputFormat, report ValidationReport) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(report)
	}

	if !report.Valid {
		for _, fe := range report.Errors {
			if _, err := fmt.Fprintf(w, "✗ %s: %s\n", fe.Field, fe.Message); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Fprintln(w, "✓ You submitted:")
	for _, field := range form.Fields {
		value := report.Submitted.Get(field)
		if field == form.FieldMessage && value == "" {
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", field.Label(), value)
	}

	return nil
}
