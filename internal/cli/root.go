package cli

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"cricket-analyzer/internal/config"
	"cricket-analyzer/internal/logging"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// app holds state shared by every subcommand once the root has run
type app struct {
	configPath string
	debug      bool
	logFormat  string

	cfg *config.Config
	log *slog.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cricket",
		Short: "Normalize Cricsheet match data into relational tables",
		Long: fmt.Sprintf(`cricket reads Cricsheet JSON match documents and writes four tables
(matches, players, innings, deliveries) to flat files and databases.

Version: %s@%s %s

Commands:
  normalize   Normalize raw documents and write every configured sink
  summary     Print what a database sink currently holds
  inspect     Parse one document and print its rows

Use "cricket [command] --help" for more information about a command.`,
			Version, GitCommit, platform()),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(newNormalizeCmd(a))
	root.AddCommand(newSummaryCmd(a))
	root.AddCommand(newInspectCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	envFile := config.LoadDotenv()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.LogLevel = "debug"
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
	if envFile != "" {
		a.log.Debug("loaded .env", "path", envFile)
	}
	return nil
}

// platform returns the OS/architecture combination
func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
