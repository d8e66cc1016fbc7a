package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config.json"

// newRootCmd builds the parrot command tree.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "parrot",
		Short:         "A chat companion that learns to talk back",
		Long:          "Parrot stores what you say, learns word patterns from it and answers with a trigram Markov chain.",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the JSON config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newSayCmd(&configPath))
	root.AddCommand(newTrainCmd(&configPath))
	root.AddCommand(newHistoryCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

// openCLIApp opens the application for a one-shot command. Logs go to stderr
// so stdout carries only the command's output.
func openCLIApp(cmd *cobra.Command, configPath string) (*App, error) {
	cm, err := NewConfigManager(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cm)
	cm.SetLogger(logger)
	return openApp(cm, logger)
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			baseLogger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))

			actionChan := make(chan string, 1)

			osSignalChan := make(chan os.Signal, 1)
			signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(osSignalChan)
			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-osSignalChan:
					baseLogger.Info("OS signal received, initiating shutdown.")
					select {
					case actionChan <- actionShutdown:
					default:
					}
				case <-done:
				}
			}()

			for {
				action, err := runCycle(*configPath, out, actionChan, nil)
				if err != nil {
					baseLogger.Error("An error occurred during server run, shutting down.", "error", err)
					return err
				}
				if action != actionRestart {
					break
				}
				baseLogger.Info("--- Server Restarting ---")
			}

			baseLogger.Info("Parrot has shut down.")
			return nil
		},
	}
}

func newSayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>...",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openCLIApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			reply, err := app.bot.Respond(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return err
		},
	}
}

func newTrainCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Rebuild the model from the stored history and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openCLIApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if _, err = app.bot.Train(cmd.Context()); err != nil {
				return err
			}
			stats, err := app.bot.Stats(cmd.Context())
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(stats)
		},
	}
}

func newHistoryCmd(configPath *string) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Export, import or clear the stored conversation",
	}

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the history as JSON to a file, or to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openCLIApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if len(args) == 0 {
				return app.store.Export(cmd.Context(), cmd.OutOrStdout())
			}
			var buf bytes.Buffer
			if err = app.store.Export(cmd.Context(), &buf); err != nil {
				return err
			}
			if err = atomic.WriteFile(args[0], &buf); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "history exported to %s\n", args[0])
			return err
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append messages from a JSON export, skipping ones already stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			app, err := openCLIApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			added, err := app.store.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d messages\n", added)
			return err
		},
	}

	var confirmed bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to clear the history without --yes")
			}
			app, err := openCLIApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			removed, err := app.store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d messages\n", removed)
			return err
		},
	}
	clearCmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm deleting the whole history")

	historyCmd.AddCommand(exportCmd, importCmd, clearCmd)
	return historyCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := currentVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "parrot %s (commit %s, built %s)\n", v.Version, v.Commit, v.BuildDate)
		},
	}
}
