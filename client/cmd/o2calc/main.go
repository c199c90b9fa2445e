package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/o2calc/o2calc/client/internal/fetch"
	"github.com/o2calc/o2calc/client/internal/render"
	"github.com/o2calc/o2calc/client/internal/repl"
	"github.com/o2calc/o2calc/pkg/oxygen"
)

var version = "dev"

// options holds the persistent flags shared by every subcommand.
type options struct {
	server  string
	keyEnv  string
	header  string
	timeout time.Duration
	verbose bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, oxygen.ErrInvalidFlowRate) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "o2calc",
		Short:         "Estimate inspired oxygen percentage from a flow rate (LPM)",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			})))
		},
	}
	cmd.SetVersionTemplate("o2calc {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.server, "server", "", "o2calc server URL (e.g. http://localhost:8080); evaluate locally when empty")
	pf.StringVar(&opts.keyEnv, "key-env", "O2CALC_API_KEY", "environment variable holding the server API key")
	pf.StringVar(&opts.header, "header", "x-api-key", "HTTP header carrying the API key")
	pf.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout for server calls")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newEstimateCmd(opts),
		newTableCmd(opts),
		newDevicesCmd(opts),
		newHistoryCmd(opts),
		newStatsCmd(opts),
		newReplCmd(opts),
	)
	return cmd
}

// backend returns the server client when --server is set, otherwise the
// in-process estimator.
func (o *options) backend() repl.Backend {
	if c := o.client(); c != nil {
		return c
	}
	return local{flows: oxygen.DefaultReferenceFlows}
}

func (o *options) client() *fetch.Client {
	if o.server == "" {
		return nil
	}
	slog.Debug("using server", "url", o.server)
	return fetch.New(fetch.Options{
		BaseURL: o.server,
		APIKey:  os.Getenv(o.keyEnv),
		Header:  o.header,
		Timeout: o.timeout,
		Retries: 2,
	})
}

func (o *options) requireClient(name string) (*fetch.Client, error) {
	c := o.client()
	if c == nil {
		return nil, fmt.Errorf("%s needs a server: pass --server URL", name)
	}
	return c, nil
}

func newEstimateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <flow>",
		Short: "Estimate O₂ % and recommended device for a flow rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := oxygen.ParseFlowRate(args[0])
			if err != nil {
				return err
			}
			resp, err := opts.backend().Estimate(cmd.Context(), flow)
			if err != nil {
				return err
			}
			render.Estimate(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func newTableCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the flow rate reference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := opts.backend().Reference(cmd.Context())
			if err != nil {
				return err
			}
			return render.Reference(cmd.OutOrStdout(), rows)
		},
	}
}

func newDevicesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Print the device flow bands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bands, err := opts.backend().Devices(cmd.Context())
			if err != nil {
				return err
			}
			return render.Devices(cmd.OutOrStdout(), bands)
		},
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the server's recent estimates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.requireClient("history")
			if err != nil {
				return err
			}
			hist, err := c.History(cmd.Context())
			if err != nil {
				return err
			}
			return render.History(cmd.OutOrStdout(), hist)
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the server's usage counters from /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.requireClient("stats")
			if err != nil {
				return err
			}
			st, err := c.Stats(cmd.Context())
			if err != nil {
				if fetch.IsUnauthorized(err) {
					slog.Warn("server rejected the API key", "key_env", opts.keyEnv)
				}
				return err
			}
			return render.Stats(cmd.OutOrStdout(), st)
		},
	}
}

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive prompt: type flow rates, get estimates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repl.New(opts.backend())
			if err != nil {
				return err
			}
			return r.Run(cmd.Context())
		},
	}
}
