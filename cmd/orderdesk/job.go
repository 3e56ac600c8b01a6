package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	var jobCmd = &cobra.Command{
		Use:   "job",
		Short: "Inspect and trigger scheduled jobs",
	}

	jobCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered jobs and their next run",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			scheduler, err := newScheduler(a)
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "Name\tSpec\tNext")
			for _, e := range scheduler.Entries() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Spec, e.Next.Local().Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	})

	jobCmd.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Run a job once in the foreground",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			scheduler, err := newScheduler(a)
			if err != nil {
				return err
			}
			if err := scheduler.RunNow(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s finished\n", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(jobCmd)
}
