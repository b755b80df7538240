package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Build the configured sinks and list them",
		Args:  cobra.NoArgs,
		RunE: a.withDispatcher(func(cmd *cobra.Command, _ []string) error {
			root, hasRoot := a.dispatcher.RootSink()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "global level: %s\n", a.dispatcher.GlobalLogLevel())
			fmt.Fprintln(w, "HANDLE\tNAME\tTYPE\tIO\tLEVEL\tENABLED\tASYNC\tROOT")
			for _, r := range a.sinks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%t\t%t\n",
					r.Handle, r.Name, r.Type, r.Sink.IOType(), r.Sink.Level(),
					r.Sink.Enabled(), r.Async, hasRoot && r.Handle == root)
			}
			return w.Flush()
		}),
	}
}
