// Package repl is the interactive o2calc prompt.
//
// Each line is either a flow rate, which is estimated and printed, or one of
// the commands listed by "help". Invalid flow rates print the error and the
// prompt continues.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/o2calc/o2calc/client/internal/render"
	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
)

// Backend answers the prompt's requests.
type Backend interface {
	Estimate(ctx context.Context, flow float64) (types.EstimateResponse, error)
	Reference(ctx context.Context) ([]types.ReferenceRow, error)
	Devices(ctx context.Context) ([]types.DeviceBand, error)
}

// REPL is an interactive prompt over a Backend.
type REPL struct {
	backend Backend
	rl      *readline.Instance
}

// New creates a REPL reading from the terminal.
func New(backend Backend) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "flow (LPM)> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("repl: create readline: %w", err)
	}
	return &REPL{backend: backend, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (r *REPL) Stdout() io.Writer {
	return r.rl.Stdout()
}

// Run reads lines until EOF, "quit" or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	defer r.rl.Close()

	out := r.rl.Stdout()
	printHelp(out)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			// EOF
			fmt.Fprintln(out, "Exiting...")
			return nil
		}
		if quit := Handle(ctx, r.backend, line, out); quit {
			fmt.Fprintln(out, "Exiting...")
			return nil
		}
	}
}

// Handle runs one line of input against backend and writes the result to w.
// It reports whether the session should end.
func Handle(ctx context.Context, backend Backend, line string, w io.Writer) (quit bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "help", "?":
		printHelp(w)

	case "quit", "exit", "q":
		return true

	case "table", "t":
		rows, err := backend.Reference(ctx)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		render.Reference(w, rows) //nolint:errcheck

	case "devices", "d":
		bands, err := backend.Devices(ctx)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		render.Devices(w, bands) //nolint:errcheck

	default:
		flow, err := oxygen.ParseFlowRate(input)
		if err != nil {
			if len(parts) == 1 && !looksNumeric(parts[0]) {
				fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", parts[0])
				return false
			}
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		resp, err := backend.Estimate(ctx, flow)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		render.Estimate(w, resp)
	}
	return false
}

func looksNumeric(s string) bool {
	return strings.ContainsAny(s[:1], "+-.0123456789")
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `
o2calc commands:
  <flow>      - Estimate O₂ % for a flow rate in LPM (0-50), e.g. 4.5
  table, t    - Show the reference table
  devices, d  - Show device flow bands
  help, ?     - Show this help
  quit, q     - Exit`)
}
