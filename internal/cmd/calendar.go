package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/calendar"
	"github.com/promptgate/promptgate/internal/report"
)

var calendarReportDir string

var calendarCmd = &cobra.Command{
	Use:   "calendar <request>",
	Short: "Process a natural-language calendar event request",
	Long: `Run a scheduling request through the gated chain: validate that the text
describes a calendar event, extract the event details, and generate a
confirmation message. Requests below the confidence threshold are rejected
before any extraction happens.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalendar,
}

func init() {
	rootCmd.AddCommand(calendarCmd)

	calendarCmd.Flags().StringVar(&calendarReportDir, "report", "", "Directory to write a markdown run report into")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	runID := uuid.NewString()
	startedAt := time.Now()
	client := rt.client.WithRun("calendar", runID)

	processor := calendar.NewProcessor(client, rt.policy, rt.logger)
	result, err := processor.Process(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if result.Rejected {
		fmt.Println("This doesn't appear to be a calendar event request.")
		fmt.Printf("Reason: %s\n", result.Reason)
	} else {
		fmt.Printf("Confirmation: %s\n", result.Confirmation.ConfirmationMessage)
	}

	if calendarReportDir != "" {
		path, err := writeCalendarReport(runID, startedAt, args[0], rt.client.Model(), result)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
	}

	return nil
}

func writeCalendarReport(runID string, startedAt time.Time, input, model string, result *calendar.Result) (string, error) {
	run := &report.Run{
		ID:        runID,
		Flow:      "calendar",
		Input:     input,
		Model:     model,
		StartedAt: startedAt,
	}

	run.Steps = append(run.Steps, report.Step{
		Stage:  "event_validation",
		Status: "ok",
		Detail: fmt.Sprintf("is_calendar_event=%t confidence=%.2f", result.Validation.IsCalendarEvent, result.Validation.ConfidenceScore),
	})

	if result.Rejected {
		run.Outcome = "rejected"
		run.Message = result.Reason
	} else {
		run.Outcome = "confirmed"
		run.Message = result.Confirmation.ConfirmationMessage
		run.Steps = append(run.Steps,
			report.Step{
				Stage:  "event_extraction",
				Status: "ok",
				Detail: fmt.Sprintf("%s on %s (%d min, participants: %s)", result.Details.Name, result.Details.Date, result.Details.DurationMinutes, strings.Join(result.Details.Participants, ", ")),
			},
			report.Step{Stage: "event_confirmation", Status: "ok"},
		)
	}

	return report.NewGenerator(calendarReportDir).Write(run)
}
