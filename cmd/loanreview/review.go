package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"loanreview/pkg/loanclient"
)

// newRootCommand creates the loanreview command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "loanreview",
		Short:         "Loan review API client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("base-url", "http://localhost:8080", "Loan review API base URL")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for a single attempt")
	root.AddCommand(newReviewCommand())
	return root
}

// newReviewCommand creates the review subcommand.
func newReviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <loan-id>",
		Short: "Fetch and print the review of a loan",
		Args:  cobra.ExactArgs(1),
		RunE:  runReview,
	}
	cmd.Flags().Bool("retry", true, "Retry transient failures with exponential backoff")
	cmd.Flags().Uint64("max-retries", loanclient.DefaultRetryPolicy().MaxRetries, "Maximum number of retries")
	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	withRetry, err := cmd.Flags().GetBool("retry")
	if err != nil {
		return err
	}
	maxRetries, err := cmd.Flags().GetUint64("max-retries")
	if err != nil {
		return err
	}

	policy := loanclient.DefaultRetryPolicy()
	policy.MaxRetries = maxRetries
	client := loanclient.New(baseURL,
		loanclient.WithTimeout(timeout),
		loanclient.WithRetryPolicy(policy),
	)

	fetch := client.GetReview
	if withRetry {
		fetch = client.GetReviewWithRetry
	}
	review, err := fetch(cmd.Context(), args[0])
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
		return err
	}
	printReview(cmd.OutOrStdout(), review)
	return nil
}

func printReview(w io.Writer, r *loanclient.Review) {
	fmt.Fprintf(w, "Loan %s\n", r.Loan.ID)
	fmt.Fprintf(w, "  Borrower:  %s\n", r.Loan.BorrowerName)
	fmt.Fprintf(w, "  Amount:    $%s\n", r.Loan.LoanAmountDollars.StringFixed(2))
	fmt.Fprintf(w, "  Issued:    %s\n", r.Loan.IssuedDate.UTC().Format(time.DateOnly))
	fmt.Fprintf(w, "  Rate:      %g%%\n", r.Loan.InterestRatePercent)
	fmt.Fprintf(w, "  Term:      %d months\n", r.Loan.TermMonths)
	fmt.Fprintf(w, "Risk %d/100 (%s)\n", r.Risk.Score, loanclient.RiskLevel(r.Risk.Score))
	for _, reason := range r.Risk.TopReasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	fmt.Fprintf(w, "Request ID: %s\n", r.Meta.RequestID)
}

func printError(w io.Writer, err error) {
	var ce *loanclient.ClientError
	if !errors.As(err, &ce) {
		return
	}
	fmt.Fprintf(w, "%s\n", loanclient.Title(ce.Code))
	fmt.Fprintf(w, "  %s\n", ce.Message)
	if ce.RequestID != "" {
		fmt.Fprintf(w, "  Request ID: %s\n", ce.RequestID)
	}
	if ce.Retryable {
		fmt.Fprintln(w, "  This failure is transient; try again.")
	}
	if field, ok := ce.Details["field"].(string); ok {
		fmt.Fprintf(w, "  Field: %s (%s)\n", field, strings.TrimSpace(fmt.Sprint(ce.Details["reason"])))
	}
}
