package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/smarthome"
)

var guardCmd = &cobra.Command{
	Use:   "guard <request>",
	Short: "Run the parallel request guard over an input",
	Long: `Run the two guard checks concurrently: validate that the input is an
assistant request and scan it for prompt injection or system manipulation
attempts. Both must pass for the input to be accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runGuard,
}

func init() {
	rootCmd.AddCommand(guardCmd)
}

func runGuard(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	client := rt.client.WithRun("guard", uuid.NewString())
	guard := smarthome.NewGuard(client, rt.policy, rt.failurePolicy(), rt.logger)

	verdict, err := guard.Check(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if verdict.Valid {
		fmt.Println("Request accepted.")
	} else {
		fmt.Println("Request blocked.")
		fmt.Printf("Reason: %s\n", verdict.Reason)
	}
	fmt.Printf("Assistant request: %t (confidence %.2f)\n", verdict.Validation.IsAssistantRequest, verdict.Validation.ConfidenceScore)
	fmt.Printf("Safe: %t\n", verdict.Security.IsSafe)
	if len(verdict.RiskFlags) > 0 {
		fmt.Printf("Risk flags: %s\n", strings.Join(verdict.RiskFlags, ", "))
	}

	return nil
}
