// Command gitbridge serves git operations to automated callers over a
// line-delimited JSON-RPC stdio transport.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tomhartley/gitbridge/cli"
	"github.com/tomhartley/gitbridge/config"
	"github.com/tomhartley/gitbridge/exec"
	"github.com/tomhartley/gitbridge/git"
	"github.com/tomhartley/gitbridge/logger"
	"github.com/tomhartley/gitbridge/mcp"
	"github.com/tomhartley/gitbridge/paths"
	"github.com/tomhartley/gitbridge/session"
	"github.com/tomhartley/gitbridge/tools"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "gitbridge",
		Short:        "Expose git operations over a structured stdio protocol",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), doctorCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stdio protocol until the client disconnects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath := cfg.LogFile
	if logPath == "" {
		if logPath, err = logger.DefaultLogPath(); err != nil {
			return err
		}
	}
	if err := logger.Init(logPath); err != nil {
		return err
	}
	defer logger.Close()
	logger.SetDebug(cfg.Debug)

	if err := cli.ValidateRequired(cli.DefaultPrerequisites()); err != nil {
		return err
	}

	svc := git.NewServiceWithExecutor(exec.NewRealExecutor())
	svc.SetBinary(cfg.GitBinary)
	svc.SetTimeout(cfg.CommandTimeout())

	store := session.NewStore()
	registry := tools.NewRegistryWithDefaults(tools.Deps{
		Git:      svc,
		Resolver: paths.NewResolver(cfg.AllowedRoots),
		Sessions: store,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := uuid.New().String()
	srv := mcp.NewServer(os.Stdin, os.Stdout, registry, sessionID, store.Resolver())
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := cli.CheckAll(cli.DefaultPrerequisites())
			fmt.Fprint(cmd.OutOrStdout(), cli.FormatCheckResults(results))
			return cli.ValidateRequired(cli.DefaultPrerequisites())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gitbridge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gitbridge %s\n", version)
		},
	}
}
