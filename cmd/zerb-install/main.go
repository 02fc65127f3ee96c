// Command zerb-install installs zerb through whichever channel the host
// supports: the managed apt repository, a .deb, an .rpm, the AUR, or an
// AppImage in ~/.local/bin.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/artifact"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/installer"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return fatal.ExitCode(err)
}

type options struct {
	version     string
	skipVerify  bool
	debug       bool
	configPath  string
	printConfig bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "zerb-install",
		Short: "Install zerb using the best channel available on this host",
		Long: `Install zerb using the best channel available on this host.

The installer prefers the managed apt repository when it is configured,
then apt-get, dnf and pacman (through yay or paru), and falls back to an
AppImage in ~/.local/bin.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fatal.Newf(fatal.UnknownFlag, "parse arguments", "unexpected argument %q", args[0])
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fatal.New(fatal.UnknownFlag, "parse arguments", err)
	})

	opts.addFlags(cmd.Flags())

	return cmd
}

func (o *options) addFlags(flags *pflag.FlagSet) {
	flags.SortFlags = false
	flags.StringVarP(&o.version, "version", "v", "", "install this version instead of the latest release")
	flags.BoolVar(&o.skipVerify, "skip-verify", false, "skip signature verification of downloaded packages")
	flags.BoolVar(&o.debug, "debug", false, "enable debug logging (also ZERB_DEBUG=1)")
	flags.StringVar(&o.configPath, "config", "", "settings file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	flags.BoolVar(&o.printConfig, "print-config", false, "print the effective settings as Lua and exit")
}

func (o *options) run(ctx context.Context, stdout, stderr io.Writer) error {
	log := logger.New(stderr, o.debug || logger.DebugFromEnv())
	logger.Init(log)
	defer func() { _ = log.Sync() }()

	detector := platform.NewDetector()
	settings, err := loadSettings(ctx, detector, o.configPath, o.debug, log)
	if err != nil {
		return err
	}

	if o.printConfig {
		_, err := io.WriteString(stdout, config.NewGenerator().Generate(settings))
		return err
	}

	inst, err := installer.FromSettings(installer.Deps{
		Settings: settings,
		Detector: detector,
		Runner:   runner.NewExec(log),
		Progress: progressOutput(stderr),
		Stderr:   stderr,
		PathList: os.Getenv("PATH"),
		TempDir:  os.TempDir(),
		Log:      log,
	})
	if err != nil {
		return err
	}

	result, err := inst.Run(ctx, installer.Options{Version: o.version, SkipVerify: o.skipVerify})
	if err != nil {
		return err
	}

	log.Infof("%s %s installed via %s", settings.Product, result.Version, result.Strategy)
	return nil
}

// loadSettings reads the settings file. Errors that already carry a fatal
// kind (an unsupported machine found while building the platform table)
// pass through; everything else is InvalidConfig.
func loadSettings(ctx context.Context, detector platform.Detector, path string, verbose bool, log *zap.SugaredLogger) (*config.Settings, error) {
	settings, err := config.NewParser(detector).WithLogger(log).Load(ctx, path)
	if err == nil {
		return settings, nil
	}
	if _, ok := fatal.KindOf(err); ok {
		return nil, err
	}
	var parseErr *config.ParseError
	if errors.As(err, &parseErr) {
		err = errors.New(config.FormatError(err, verbose))
	}
	return nil, fatal.New(fatal.InvalidConfig, "load settings", err)
}

func progressOutput(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok {
		return artifact.TerminalOutput(f)
	}
	return nil
}
