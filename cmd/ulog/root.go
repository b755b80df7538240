package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/ulog/config"
	"github.com/philipp01105/ulog/logger"
)

// app holds what the subcommands share once the root pre-run has built it
type app struct {
	v          *viper.Viper
	cfg        config.Config
	diag       *zap.Logger
	dispatcher *logger.Dispatcher
	sinks      []config.Registered
}

// defaultSinks is used when the configuration names no sinks
func defaultSinks() []config.SinkConfig {
	return []config.SinkConfig{{
		Name:     "console",
		Type:     config.TypeConsole,
		Level:    "trace",
		LevelTag: true,
		Newline:  true,
		Console:  config.ConsoleConfig{Output: "stdout", Color: "auto"},
	}}
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "ulog",
		Short: "Relay text through uLog sinks.",
		Long: `ulog builds a dispatcher from a configuration file and either relays
standard input through the configured sinks or prints the sinks it
registered.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().Bool("debug", false, "print dispatcher diagnostics to stderr")
	_ = a.v.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = a.v.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))
	a.v.SetEnvPrefix("ULOG")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(newRelayCmd(a))
	cmd.AddCommand(newCheckCmd(a))

	return cmd
}

// withDispatcher builds the configured dispatcher before run and always
// shuts it down afterwards, so buffered sinks are flushed even when run fails.
func (a *app) withDispatcher(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.setup(cmd); err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, a.close())
		}()
		return run(cmd, args)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return err
	}
	if len(cfg.Sinks) == 0 {
		cfg.Sinks = defaultSinks()
	}
	a.cfg = cfg

	// diagnostics stay off unless asked for so relayed output is clean
	a.diag = zap.NewNop()
	if a.v.GetBool("debug") {
		if a.diag, err = newDiagnostics(cfg.Logging.Development); err != nil {
			return err
		}
	}

	d, sinks, err := config.Build(cfg, config.BuildOptions{
		Diagnostics: a.diag,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}
	a.dispatcher = d
	a.sinks = sinks
	return nil
}

func (a *app) close() error {
	if a.dispatcher == nil {
		return nil
	}
	err := a.dispatcher.Shutdown()
	a.dispatcher = nil
	_ = a.diag.Sync()
	return err
}
