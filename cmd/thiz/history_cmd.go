package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fentz26/thiz/internal/models"
	"github.com/fentz26/thiz/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past project generations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", store.DefaultListLimit, "Maximum number of entries")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "History is disabled.")
		return nil
	}

	s, err := store.New(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer s.Close()

	gens, err := s.ListGenerations(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	printHistory(cmd.OutOrStdout(), gens)
	return nil
}

func printHistory(out io.Writer, gens []models.Generation) {
	if len(gens) == 0 {
		fmt.Fprintln(out, "No generations recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tNAME\tOUTCOME\tELAPSED\tTARGET")
	for _, g := range gens {
		outcome := string(g.Outcome)
		if g.Advisory != "" {
			outcome += " (install failed)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%s\n",
			shortID(g.ID),
			g.CreatedAt.Local().Format(time.DateTime),
			g.Name,
			outcome,
			g.Elapsed.Seconds(),
			g.Target,
		)
	}
	w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
