package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/config"
	"github.com/promptgate/promptgate/internal/history"
)

var historyPath string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded inference call statistics",
	Long: `Summarise the recorded inference calls: per-flow call counts, failures, and
latency, plus the mean reported confidence of every stage that returns a
confidence score.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyPath, "path", "", "Path to the history database (default: ~/.promptgate/history.duckdb)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if historyPath != "" {
		cfg.History.Path = historyPath
	}

	path, err := cfg.HistoryPath()
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	flows, err := store.FlowStats(cmd.Context())
	if err != nil {
		return err
	}
	if len(flows) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FLOW\tCALLS\tFAILURES\tAVG MS\tFIRST\tLAST")
	for _, f := range flows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\t%s\t%s\n",
			f.Flow, f.Calls, f.Failures, f.AvgDurationMS,
			f.FirstCall.Format("2006-01-02 15:04"), f.LastCall.Format("2006-01-02 15:04"))
	}
	w.Flush()

	confidences, err := store.StageConfidences(cmd.Context())
	if err != nil {
		return err
	}
	if len(confidences) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tCALLS\tMEAN CONFIDENCE")
		for _, c := range confidences {
			fmt.Fprintf(w, "%s\t%d\t%.2f\n", c.Stage, c.Calls, c.MeanConfidence)
		}
		w.Flush()
	}

	return nil
}
