// Command zerb-repo configures the managed zerb apt repository and installs
// zerb from it. It must run as root.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/artifact"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/repo"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return fatal.ExitCode(err)
}

var geteuid = os.Geteuid

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		debug      bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "zerb-repo",
		Short: "Add the zerb apt repository and install zerb from it",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fatal.Newf(fatal.UnknownFlag, "parse arguments", "unexpected argument %q", args[0])
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(stderr, debug || logger.DebugFromEnv())
			logger.Init(log)
			defer func() { _ = log.Sync() }()

			if err := repo.RequireRoot(geteuid()); err != nil {
				return err
			}

			// The repository is architecture independent; no platform table.
			settings, err := config.NewParser(nil).WithLogger(log).Load(cmd.Context(), configPath)
			if err != nil {
				var parseErr *config.ParseError
				if errors.As(err, &parseErr) {
					err = errors.New(config.FormatError(err, debug))
				}
				return fatal.New(fatal.InvalidConfig, "load settings", err)
			}

			r := runner.NewExec(log)
			configurator := repo.New(repo.Config{
				Settings: settings,
				Fetcher: artifact.NewFetcher(artifact.FetcherConfig{
					Backend: settings.Downloader,
					Client:  &http.Client{Timeout: settings.HTTPTimeout},
					Runner:  r,
					Log:     log,
				}),
				Runner: r,
				Euid:   geteuid,
				Log:    log,
			})
			return configurator.Configure(cmd.Context())
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fatal.New(fatal.UnknownFlag, "parse arguments", err)
	})

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging (also ZERB_DEBUG=1)")
	cmd.Flags().StringVar(&configPath, "config", "", "settings file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")

	return cmd
}
