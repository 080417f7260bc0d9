package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"logsynth/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the defaults file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Print the effective defaults (file and LOGSYNTH_* environment)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return usageError(err)
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s\n", rootOpts.ConfigPath)
			fmt.Fprint(w, string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "init",
		Short:         "Write the default configuration file if it does not exist",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := config.Init(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", rootOpts.ConfigPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", rootOpts.ConfigPath)
			}
			return nil
		},
	})

	return cmd
}
