package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/flotilla/internal/config"
	"github.com/ShayCichocki/flotilla/internal/history"
)

var (
	historyDB        string
	historyLimit     int
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `List runs recorded in the local history database.

Each line shows the run's short ID, outcome, worker count, cost, and
age. Use 'history show <run-id>' for the full record, including the
final output. Short ID prefixes are accepted wherever a run ID is.`,
	RunE: listHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  showHistory,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteHistory,
}

var historyPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete runs older than a cutoff",
	RunE:  purgeHistory,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "", "Path to the history database (default from config)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum runs to list (0 for all)")
	historyPurgeCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Delete runs started longer ago than this")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyPurgeCmd)
}

// openHistory opens the history store at the flag path, the configured
// path, or the default location, in that order.
func openHistory() (*history.Store, error) {
	path := historyDB
	if path == "" {
		if cfg, err := config.Load(); err == nil {
			path = cfg.History.Path
		}
	}
	if path == "" {
		path = history.DefaultPath()
	}
	return history.Open(path)
}

func listHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("Recent runs (%d):\n\n", len(runs))
	for _, r := range runs {
		marker := color.GreenString("✓")
		if !r.Success {
			marker = color.RedString("✗")
		}
		fmt.Printf("  %s %s  %-7s %2d workers  $%.4f  %s  %s ago\n",
			marker, shortID(r.RunID), r.State, r.WorkerCount,
			r.TotalCost, formatDuration(r.Duration), formatDuration(time.Since(r.StartedAt)))
		fmt.Printf("      %s\n", truncate(r.Instruction, 70))
	}
	return nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	runID, err := resolveRunID(store, args[0])
	if err != nil {
		return err
	}
	res, err := store.GetRun(runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	if res == nil {
		return fmt.Errorf("no run found with ID %q", args[0])
	}

	marker := color.GreenString("✓")
	if !res.Success {
		marker = color.RedString("✗")
	}
	fmt.Printf("%s Run %s (%s)\n", marker, res.RunID, res.State)
	fmt.Printf("  Task: %s\n", res.Instruction)
	fmt.Printf("  Started: %s\n", res.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration: %s  Cost: $%.4f  Tokens: %s\n",
		formatDuration(res.Duration), res.TotalCost, formatNumber(int(res.TotalTokens)))

	succeeded := 0
	for _, wr := range res.WorkerResults {
		if wr.Success {
			succeeded++
		}
	}
	fmt.Printf("  Workers: %d (%d succeeded)\n", len(res.WorkerResults), succeeded)
	for _, wr := range res.WorkerResults {
		m := color.GreenString("✓")
		detail := fmt.Sprintf("%d attempt(s), %s", wr.Attempts, formatDuration(wr.Duration))
		if !wr.Success {
			m = color.RedString("✗")
			detail = fmt.Sprintf("%s: %s", detail, wr.Error)
		}
		fmt.Printf("    %s %s  %s\n", m, shortID(wr.SubTaskID), detail)
	}
	if n := len(res.SynthesisResults); n > 0 {
		fmt.Printf("  Syntheses: %d\n", n)
		for _, sr := range res.SynthesisResults {
			m := color.GreenString("✓")
			if !sr.Success {
				m = color.RedString("✗")
			}
			fmt.Printf("    %s %s tier, %d inputs (%d failed)\n", m, sr.Tier, len(sr.InputIDs), sr.FailedInputs)
		}
	}

	if res.FinalOutput != "" {
		fmt.Println()
		fmt.Println("Final output:")
		fmt.Println(res.FinalOutput)
	}
	return nil
}

func deleteHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	runID, err := resolveRunID(store, args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteRun(runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	fmt.Printf("Deleted run %s\n", shortID(runID))
	return nil
}

func purgeHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	n, err := store.PurgeOlderThan(historyOlderThan)
	if err != nil {
		return fmt.Errorf("purge runs: %w", err)
	}
	fmt.Printf("Purged %d run(s) older than %s\n", n, formatDuration(historyOlderThan))
	return nil
}

// resolveRunID expands a short ID prefix to the full run ID, requiring
// the prefix to match exactly one recorded run.
func resolveRunID(store *history.Store, idOrPrefix string) (string, error) {
	runs, err := store.ListRuns(0)
	if err != nil {
		return "", fmt.Errorf("list runs: %w", err)
	}
	var match string
	for _, r := range runs {
		if r.RunID == idOrPrefix {
			return r.RunID, nil
		}
		if strings.HasPrefix(r.RunID, idOrPrefix) {
			if match != "" {
				return "", fmt.Errorf("run ID prefix %q is ambiguous", idOrPrefix)
			}
			match = r.RunID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no run found with ID %q", idOrPrefix)
	}
	return match, nil
}
