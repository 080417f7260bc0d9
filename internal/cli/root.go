// Package cli wires the logsynth commands together.
package cli

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"logsynth/internal/config"
	"logsynth/internal/template"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitStreamFailed = 1
	ExitUsage        = 2
)

// Version is set at build time with -ldflags "-X logsynth/internal/cli.Version=...".
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Quiet      bool
	ConfigPath string
}

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// ExitCode maps a command error to a process exit code. Errors that do not
// carry their own code are usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// NewRootCommand creates the root command for the logsynth CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "logsynth",
		Short:         "Flexible synthetic log generator with YAML templates",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbose && opts.Quiet {
				return usageError(errors.New("--verbose and --quiet are mutually exclusive"))
			}
			setupLogging(cmd, opts)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "only log warnings and errors, no progress")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.Path(), "path to the defaults file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPresetsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func setupLogging(cmd *cobra.Command, opts *RootOptions) {
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	switch {
	case opts.Verbose:
		log.SetLevel(log.DebugLevel)
	case opts.Quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// printError reports err on stderr, expanding template validation
// problems one per line.
func printError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	var verr *template.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(w, "Validation error: %s\n", verr.Message)
		for _, e := range verr.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// Execute runs cmd and prints any error. It returns the exit code.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		printError(cmd, err)
	}
	return ExitCode(err)
}
