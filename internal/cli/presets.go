package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"logsynth/internal/core"
	"logsynth/internal/template"
)

// NewPresetsCommand creates the presets command group.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage preset templates",
	}
	cmd.AddCommand(newPresetsListCommand())
	cmd.AddCommand(newPresetsShowCommand())
	return cmd
}

func newPresetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List available preset templates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := template.Presets()
			w := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(w, "No presets available")
				return nil
			}
			fmt.Fprintln(w, "Available presets:")
			for _, name := range names {
				tmpl, err := template.Load(name)
				if err != nil {
					return fmt.Errorf("preset %s: %w", name, err)
				}
				fmt.Fprintf(w, "  %-10s %s format, %d fields\n", name, tmpl.Format, len(tmpl.Fields))
			}
			return nil
		},
	}
}

func newPresetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "show <name>",
		Short:         "Show the YAML of a preset template",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, ok := template.PresetSource(args[0])
			if !ok {
				return usageError(fmt.Errorf("%w: unknown preset %q, available: %s",
					core.ErrInvalidConfig, args[0], strings.Join(template.Presets(), ", ")))
			}
			fmt.Fprint(cmd.OutOrStdout(), src)
			return nil
		},
	}
}
