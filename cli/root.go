package cli

import (
	"context"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/Remi1095/chronicle/client"
	"github.com/Remi1095/chronicle/client/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is reported by --version.
var Version = "0.1.0"

// session carries what every command needs once the root command has
// resolved flags, environment and configuration.
type session struct {
	settings *viper.Viper
	config   *config.Config
	logger   zerolog.Logger
	client   *client.Client
	printer  *printer
}

// NewRootCommand builds the chronicle command tree.
//
// Global settings come from flags first, then CHRONICLE_* environment
// variables, then the configuration file.
func NewRootCommand() *cobra.Command {
	s := &session{settings: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "chronicle",
		Short: "Manage chronicle tables, fields and entries",
		Long: heredoc.Doc(`
			Chronicle stores user defined tables: typed fields and the entries
			that fill them. This command talks to a chronicle API server.

			Examples:
			  chronicle table list
			  chronicle table create Tasks
			  chronicle field create 1 Due --type DateTime --min 2024-01-01
			  chronicle entry create 1 Due=2024-06-15 Title="write report"
			  chronicle data 1 --format json
			  chronicle devserver --addr :3000`),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "configuration file (default: search chronicle.yml)")
	flags.String("server", "", "API base URL, for example http://localhost:3000/api")
	flags.String("format", "", "output format: table, json (default: table on a terminal)")
	flags.BoolP("verbose", "v", false, "verbose output")

	s.settings.SetEnvPrefix("chronicle")
	s.settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	s.settings.AutomaticEnv()
	_ = s.settings.BindPFlags(flags)

	rootCmd.AddCommand(
		newTableCommand(s),
		newFieldCommand(s),
		newEntryCommand(s),
		newDataCommand(s),
		newDevServerCommand(s),
	)

	return rootCmd
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (s *session) setup(cmd *cobra.Command) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	if server := s.settings.GetString("server"); server != "" {
		if err := cfg.ApplyServerURL(server); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := NewLogger(cfg.Logging, s.settings.GetBool("verbose"), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c, err := client.New(cfg, logger)
	if err != nil {
		return err
	}

	format, err := resolveFormat(s.settings.GetString("format"), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	s.config = cfg
	s.logger = logger
	s.client = c
	s.printer = newPrinter(cmd.OutOrStdout(), format)

	logger.Debug().
		Str("cmd", cmd.CommandPath()).
		Str("server", cfg.BaseURL()).
		Str("format", format).
		Msg("Executing command")
	return nil
}

func (s *session) loadConfig() (*config.Config, error) {
	if path := s.settings.GetString("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
