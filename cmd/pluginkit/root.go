// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/pluginkit/internal/observability"
)

// shutdownTimeout bounds observability server shutdown.
const shutdownTimeout = 5 * time.Second

// Console prompts and replies.
const (
	consolePrompt  = "> "
	unknownCommand = "Unknown command."
	completePrefix = "?"
)

// errUnknownCommand is returned by run when no root matches the label.
var errUnknownCommand = errors.New("unknown command")

// NewRootCmd creates the root command for the pluginkit CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pluginkit",
		Short: "pluginkit - token-routed plugin commands",
		Long: `pluginkit hosts the example plugin and any Lua command scripts found
in <data-dir>/scripts, dispatching command lines the way a game server would.`,
		SilenceUsage: true,
	}

	registerHostFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewConsoleCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCompleteCmd())

	return cmd
}

// withHost loads config, builds a host, runs fn, and tears the host down.
func withHost(cmd *cobra.Command, fn func(ctx context.Context, h *host, cfg *hostConfig) error) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	h, err := newHost(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		h.close(shutdownCtx)
	}()

	return fn(ctx, h, cfg)
}

// NewConsoleCmd creates the console subcommand.
func NewConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Read command lines from stdin",
		Long: `Start an interactive console. Each line is dispatched as a command,
e.g. "/example hello Steve". Prefix a line with "?" to list completions
instead, e.g. "?/example he". Type "exit" or "quit" to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHost(cmd, func(ctx context.Context, h *host, cfg *hostConfig) error {
				return runConsole(ctx, cmd, h, newConsoleSender(cfg.Subject, cmd.OutOrStdout()))
			})
		},
	}
}

func runConsole(ctx context.Context, cmd *cobra.Command, h *host, sender *consoleSender) error {
	h.logger.Info("console session started", "session", sender.session.String(), "subject", sender.subject)
	defer h.logger.Info("console session ended", "session", sender.session.String())

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		_, _ = fmt.Fprint(out, consolePrompt)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			break
		}
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "exit" || trimmed == "quit":
			return nil
		case trimmed == "":
			h.recordLine(observability.LineBlank)
		case strings.HasPrefix(trimmed, completePrefix):
			for _, s := range h.commands.Complete(ctx, sender, strings.TrimPrefix(strings.TrimLeft(line, " \t"), completePrefix)) {
				_, _ = fmt.Fprintln(out, s)
			}
		default:
			if _, found := h.commands.Dispatch(ctx, sender, line); !found {
				h.recordLine(observability.LineUnknown)
				_, _ = fmt.Fprintln(out, unknownCommand)
				continue
			}
			h.recordLine(observability.LineDispatched)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read console input: %w", err)
	}
	return nil
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <label> [args...]",
		Short: "Dispatch a single command line",
		Long:  `Dispatch one command, e.g. "pluginkit run example hello Steve", and print the replies.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, func(ctx context.Context, h *host, cfg *hostConfig) error {
				sender := newConsoleSender(cfg.Subject, cmd.OutOrStdout())
				res, found := h.commands.Dispatch(ctx, sender, strings.Join(args, " "))
				if !found {
					cmd.PrintErrln(unknownCommand)
					return errUnknownCommand
				}
				if res.Err != nil {
					h.logger.Debug("command failed", "error", res.Err)
				}
				return nil
			})
		},
	}
}

// NewCompleteCmd creates the complete subcommand.
func NewCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <label> [args...]",
		Short: "Print completions for a partial command line",
		Long: `Print one completion per line for a partial command line. Pass an
empty final argument to complete a new word, e.g. pluginkit complete example ''.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, func(ctx context.Context, h *host, cfg *hostConfig) error {
				sender := newConsoleSender(cfg.Subject, cmd.OutOrStdout())
				out := cmd.OutOrStdout()
				for _, s := range h.commands.Complete(ctx, sender, strings.Join(args, " ")) {
					_, _ = fmt.Fprintln(out, s)
				}
				return nil
			})
		},
	}
}
