package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logsynth/internal/template"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <template-file>",
		Short:         "Validate a template YAML file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err != nil {
		return usageError(fmt.Errorf("file not found: %s", path))
	}

	tmpl, err := template.LoadFile(path)
	if err != nil {
		var verr *template.ValidationError
		if !errors.As(err, &verr) {
			return usageError(err)
		}
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "✗ Validation failed: %s\n", verr.Message)
		for _, e := range verr.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return &ExitError{Code: ExitStreamFailed}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Template '%s' is valid\n", tmpl.Name)
	fmt.Fprintf(w, "  Format: %s\n", tmpl.Format)
	fmt.Fprintf(w, "  Fields: %s\n", strings.Join(tmpl.FieldNames(), ", "))
	return nil
}
