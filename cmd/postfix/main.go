// Command postfix loads and runs .postfix modules. It follows the
// cobra-based command shape of this project's compiler-frontend sibling
// tool: a root command carrying shared flags, with "run" and
// "verify-attest" as explicit subcommands instead of one big flag.Parse
// block.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"postfix/pkg/alert"
	"postfix/pkg/attest"
	"postfix/pkg/config"
	"postfix/pkg/livetrace"
	"postfix/pkg/loader"
	"postfix/pkg/module"
	"postfix/pkg/trace"
	"postfix/pkg/vm"
)

var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Defaults()
	if err := config.LoadManifest(&cfg, "postfix.yaml"); err != nil {
		fmt.Fprintf(os.Stderr, "postfix: reading postfix.yaml: %v\n", err)
		return 1
	}
	if err := config.LoadDotEnv(&cfg, ".env"); err != nil {
		fmt.Fprintf(os.Stderr, "postfix: loading .env: %v\n", err)
		return 1
	}

	rootCmd := newRootCmd(&cfg)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "postfix: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "postfix",
		Short:         "postfix runs typed postfix intermediate-language modules",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Path, "path", cfg.Path, "directory containing .postfix module files")
	flags.StringVar(&cfg.Module, "module", cfg.Module, "name of the .postfix module to run")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable instruction-level trace output")
	flags.BoolVar(&cfg.SymbolicLabels, "symbolic-labels", cfg.SymbolicLabels, "parse labels as symbolic names instead of bare integers")
	flags.StringVar(&cfg.WatchAddr, "watch-addr", cfg.WatchAddr, "serve a live trace websocket at this address (empty disables it)")
	flags.StringVar(&cfg.TraceFile, "trace-file", cfg.TraceFile, "write the trace to this file instead of stderr")
	flags.StringVar(&cfg.AttestSecret, "attest-secret", cfg.AttestSecret, "HMAC secret for signing/verifying run attestations (empty disables attestation)")
	flags.StringVar(&cfg.SMTPHost, "alert-smtp-host", cfg.SMTPHost, "SMTP host for failure alert emails (empty disables alerting)")
	flags.IntVar(&cfg.SMTPPort, "alert-smtp-port", cfg.SMTPPort, "SMTP port for failure alert emails")
	flags.StringVar(&cfg.SMTPUser, "alert-smtp-user", cfg.SMTPUser, "SMTP username for failure alert emails")
	flags.StringVar(&cfg.SMTPPass, "alert-smtp-pass", cfg.SMTPPass, "SMTP password for failure alert emails")
	flags.StringVar(&cfg.SMTPFrom, "alert-smtp-from", cfg.SMTPFrom, "From address for failure alert emails")
	flags.StringVar(&cfg.SMTPTo, "alert-smtp-to", cfg.SMTPTo, "recipient address for failure alert emails")

	// With no subcommand given, the root command itself behaves like
	// "run": postfix --path p --module m still works, matching the flat
	// flag style of this project's original argparse-based CLI.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runModule(cmd, *cfg)
	}

	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newVerifyAttestCmd(cfg))
	return rootCmd
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "load and execute a .postfix module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModule(cmd, *cfg)
		},
	}
}

func newVerifyAttestCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-attest <token>",
		Short: "verify a run attestation token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AttestSecret == "" {
				return fmt.Errorf("--attest-secret is required to verify a token")
			}
			summary, err := attest.Verify(args[0], cfg.AttestSecret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "module=%s digest=%s succeeded=%t error_kind=%s finished_at=%d\n",
				summary.Module, summary.Digest, summary.Succeeded, summary.ErrorKind, summary.FinishedAt)
			return nil
		},
	}
}

func runModule(cmd *cobra.Command, cfg config.Config) error {
	if cfg.Module == "" {
		return fmt.Errorf("--module is required (or set module: in postfix.yaml)")
	}

	var traceWriter io.Writer = os.Stderr
	if cfg.TraceFile != "" {
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer f.Close()
		traceWriter = f
	}

	var hub *livetrace.Hub
	if cfg.WatchAddr != "" {
		hub = livetrace.NewHub()
		go func() {
			if err := hub.ListenAndServe(cfg.WatchAddr); err != nil {
				fmt.Fprintf(os.Stderr, "postfix: live trace server stopped: %v\n", err)
			}
		}()
	}

	tracer := trace.New(traceWriter, cfg.Debug, hub)
	fs := loader.DirSource{Dir: cfg.Path}
	cache := loader.NewCache(fs, cfg.SymbolicLabels)
	hostIO := vm.NewStdIO(os.Stdin, cmd.OutOrStdout())
	ex := vm.NewExecutor(cache, tracer, hostIO)

	_, runErr := ex.RunProgram(cfg.Module)

	if cfg.AttestSecret != "" {
		digest, _ := cache.Digest(cfg.Module)
		summary := attest.Summary{
			Module:     cfg.Module,
			Digest:     digest,
			Succeeded:  runErr == nil,
			FinishedAt: time.Now().Unix(),
		}
		if perr, ok := runErr.(*module.Error); ok {
			summary.ErrorKind = string(perr.Kind)
		}
		token, err := attest.Sign(summary, cfg.AttestSecret, cfg.AttestTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "postfix: signing attestation: %v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, token)
		}
	}

	if runErr != nil {
		if alertErr := alert.Notify(cfg.AlertConfig(), cfg.Module, runErr); alertErr != nil {
			fmt.Fprintf(os.Stderr, "postfix: sending failure alert: %v\n", alertErr)
		}
	}
	return runErr
}
