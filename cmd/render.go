package cmd

import (
	"github.com/a-h/templ"
	"github.com/spf13/cobra"

	"github.com/conneroisu/contactform/internal/form"
	"github.com/conneroisu/contactform/internal/view"
)

var (
	renderValues form.Values
	renderSubmit bool
	renderPage   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the contact form HTML to stdout",
	Long: `Render the contact form component. Field flags pre-fill the inputs as if
typed; --submit also presses the submit button.

Examples:
  contactform render --page > form.html
  contactform render --first-name a
  contactform render --submit --first-name Jonny --last-name Bravo --email jonny@bravo.com`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addFormFlags(renderCmd.Flags(), &renderValues)
	renderCmd.Flags().BoolVar(&renderSubmit, "submit", false, "Submit the form after filling it")
	renderCmd.Flags().BoolVar(&renderPage, "page", false, "Wrap the form in a full HTML document")
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f := form.New(form.WithRules(cfg.Form.Rules()))
	// Only flags the user set count as typed input.
	for _, field := range form.Fields {
		if cmd.Flags().Changed(flagName(field)) {
			_ = f.Change(field, renderValues.Get(field))
		}
	}
	if renderSubmit {
		f.Submit()
	}

	props := view.Props{Title: cfg.Form.Title, State: f.State()}
	var component templ.Component = view.ContactForm(props)
	if renderPage {
		component = view.Page(props)
	}

	return component.Render(cmd.Context(), cmd.OutOrStdout())
}

func flagName(field form.Field) string {
	switch field {
	case form.FieldFirstName:
		return "first-name"
	case form.FieldLastName:
		return "last-name"
	default:
		return string(field)
	}
}
