package main

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipp01105/ulog/core"
)

func newRelayCmd(a *app) *cobra.Command {
	var (
		levelName string
		toRoot    bool
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Log every line of standard input",
		Args:  cobra.NoArgs,
		RunE: a.withDispatcher(func(cmd *cobra.Command, _ []string) error {
			level, err := core.ParseLevel(levelName)
			if err != nil {
				return err
			}

			log := a.dispatcher.Log
			if toRoot {
				log = a.dispatcher.LogRoot
			}

			var relayed, filtered, failed int
			sc := bufio.NewScanner(cmd.InOrStdin())
			sc.Buffer(make([]byte, 0, 4096), 1<<20)
			for sc.Scan() {
				line := sc.Bytes()
				if len(line) == 0 {
					continue
				}
				switch err := log(level, line); {
				case err == nil:
					relayed++
				case errors.Is(err, core.ErrBelowThreshold):
					filtered++
				default:
					failed++
					a.diag.Warn("relay failed", zap.Error(err))
				}
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "relayed %d lines, %d filtered, %d failed\n", relayed, filtered, failed)
			}
			if failed > 0 {
				return fmt.Errorf("%d lines could not be logged", failed)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&levelName, "level", "l", "info", "level to log each line at")
	cmd.Flags().BoolVar(&toRoot, "root", false, "log to the root sink only")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print a summary")
	return cmd
}
