// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/polychat/internal/logging"
)

// MaxStdinSize caps a prompt read from stdin (1MB).
const MaxStdinSize = 1 << 20

type askOptions struct {
	raw bool
}

func newAskCommand(global *globalOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send one message and print the reply",
		Long: `Send one message to the configured backend and print the reply.

The prompt is taken from the arguments, or from stdin when stdin is not a
terminal. Replies are rendered as markdown when stdout is a terminal.`,
		Example: `  polychat ask "Explain the OWASP top 10"
  polychat --provider local ask "Summarize:" < notes.txt
  polychat ask --raw "List common ports" > ports.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, global, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}

func runAsk(cmd *cobra.Command, global *globalOptions, opts *askOptions, args []string) error {
	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	log, closer, err := logging.FromConfig(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	reg, closeBackends := buildRegistry(cfg, log)
	defer closeBackends()

	mgr, err := newManager(cfg, reg, log)
	if err != nil {
		return err
	}

	p, err := mgr.Begin(prompt)
	if err != nil {
		return err
	}
	outcome := mgr.Dispatch(cmd.Context(), p)
	reply, _ := mgr.Complete(outcome)

	out := cmd.OutOrStdout()
	if !opts.raw && cfg.UI.Markdown && isTerminal(out) {
		fmt.Fprint(out, renderMarkdown(reply.Content, terminalWidth(out)))
	} else {
		fmt.Fprintln(out, reply.Content)
	}

	if outcome.Err != nil {
		return errSilent
	}
	return nil
}

// readPrompt joins args, or reads stdin when no args are given and stdin
// is not a terminal.
func readPrompt(in io.Reader, args []string) (string, error) {
	prompt := strings.Join(args, " ")
	if prompt == "" && in != nil && !isTerminal(in) {
		data, err := io.ReadAll(io.LimitReader(in, MaxStdinSize+1))
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > MaxStdinSize {
			return "", fmt.Errorf("stdin prompt exceeds %d bytes", MaxStdinSize)
		}
		prompt = string(data)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("no prompt given (pass it as an argument or on stdin)")
	}
	return strings.TrimSpace(prompt), nil
}

// renderMarkdown renders content for a terminal of the given width.
// The original content is returned if rendering fails.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return content + "\n"
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}
