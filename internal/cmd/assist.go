package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/report"
	"github.com/promptgate/promptgate/internal/smarthome"
	"github.com/promptgate/promptgate/internal/workflow"
)

var (
	assistGuarded   bool
	assistReportDir string
)

var assistCmd = &cobra.Command{
	Use:   "assist <request>",
	Short: "Route a smart-home request to the matching handler",
	Long: `Classify a smart-home request as a light, door, or entertainment change and
dispatch it to the matching handler. Requests that do not fit any category
fall back to an unsupported response; low-confidence classifications are
rejected without dispatching. With --guarded the request must first pass the
parallel validation and security checks.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssist,
}

func init() {
	rootCmd.AddCommand(assistCmd)

	assistCmd.Flags().BoolVar(&assistGuarded, "guarded", false, "Run the request guard before dispatching")
	assistCmd.Flags().StringVar(&assistReportDir, "report", "", "Directory to write a markdown run report into")
}

func runAssist(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	runID := uuid.NewString()
	startedAt := time.Now()
	client := rt.client.WithRun("assist", runID)
	input := args[0]

	run := &report.Run{
		ID:        runID,
		Flow:      "assist",
		Input:     input,
		Model:     rt.client.Model(),
		StartedAt: startedAt,
	}

	if assistGuarded {
		guard := smarthome.NewGuard(client, rt.policy, rt.failurePolicy(), rt.logger)
		verdict, err := guard.Check(cmd.Context(), input)
		if err != nil {
			return err
		}
		run.Steps = append(run.Steps, report.Step{
			Stage:  "request_guard",
			Status: guardStatus(verdict),
			Detail: guardDetail(verdict),
		})
		if !verdict.Valid {
			fmt.Println("Request blocked by the guard.")
			fmt.Printf("Reason: %s\n", verdict.Reason)
			if len(verdict.RiskFlags) > 0 {
				fmt.Printf("Risk flags: %s\n", strings.Join(verdict.RiskFlags, ", "))
			}
			run.Outcome = "blocked"
			run.Message = verdict.Reason
			return writeAssistReport(run)
		}
	}

	assistant, err := smarthome.NewAssistant(client, rt.policy, rt.logger)
	if err != nil {
		return err
	}

	response, err := assistant.Handle(cmd.Context(), input)
	if err != nil {
		return err
	}

	switch response.Status {
	case workflow.StatusSuccess:
		fmt.Println(response.Message)
	case workflow.StatusRejected:
		fmt.Println("Request rejected.")
		fmt.Printf("Reason: %s\n", response.Message)
	default:
		fmt.Printf("Sorry, I can't help with that: %s\n", response.Message)
	}

	run.Outcome = string(response.Status)
	run.Message = response.Message
	run.Steps = append(run.Steps, report.Step{Stage: "dispatch", Status: string(response.Status)})
	return writeAssistReport(run)
}

func guardStatus(v *smarthome.GuardResult) string {
	if v.Valid {
		return "passed"
	}
	return "failed"
}

func guardDetail(v *smarthome.GuardResult) string {
	detail := fmt.Sprintf("is_assistant_request=%t confidence=%.2f is_safe=%t",
		v.Validation.IsAssistantRequest, v.Validation.ConfidenceScore, v.Security.IsSafe)
	if len(v.RiskFlags) > 0 {
		detail += " risk_flags=" + strings.Join(v.RiskFlags, ",")
	}
	return detail
}

func writeAssistReport(run *report.Run) error {
	if assistReportDir == "" {
		return nil
	}
	path, err := report.NewGenerator(assistReportDir).Write(run)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}
