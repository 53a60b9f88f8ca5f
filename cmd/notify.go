package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	appnotification "video-translator/application/notification"
	"video-translator/domain/notification"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/filesystem"
	"video-translator/infrastructure/gmail"

	"github.com/spf13/cobra"
)

// defaultRecipientsQuery selects email.default_recipients
const defaultRecipientsQuery = "default"

var (
	notifyTo         []string
	notifyResultsURL string
)

var notifyCmd = &cobra.Command{
	Use:   "notify <output_dir|report.json>",
	Short: "Mail the summary of a finished batch",
	Long: `Send the summary of a finished batch, read from its report.json, to one or
more recipients.

Recipients can be specified by name (first name, last name, or full name) or by
their config key. Multiple recipients can be specified using multiple --to flags
or comma-separated values. Use --to default for email.default_recipients.
The configured default CCs are always copied.

Examples:
  video-translator notify ./results --to jane
  video-translator notify ./results/report.json --to "jane,john" --results-url "https://drive.google.com/..."
  video-translator notify ./results --to default`,
	Args: cobra.ExactArgs(1),
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().StringArrayVar(&notifyTo, "to", nil, "Recipient(s) by name or config key (can be repeated or comma-separated)")
	notifyCmd.Flags().StringVar(&notifyResultsURL, "results-url", "", "Link to the published results")
	notifyCmd.MarkFlagRequired("to")
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	// fail on a bad recipient before the browser consent flow
	if _, _, err := resolveRecipients(cfg, notifyTo); err != nil {
		return err
	}

	ctx := cmd.Context()
	httpClient, err := googleAuthHTTPClient(ctx, cfg)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(ctx, cfg, httpClient)
	if err != nil {
		return err
	}

	return RunNotifyWithDependencies(ctx, cfg, notifier, args[0], notifyTo, notifyResultsURL, DefaultOutput)
}

// RunNotifyWithDependencies runs the notify command with injected dependencies (for testing)
func RunNotifyWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	notifier Notifier,
	reportPath string,
	to []string,
	resultsURL string,
	output OutputWriter,
) error {
	report, err := filesystem.ReadReport(reportPath)
	if err != nil {
		return err
	}

	recipients, cc, err := resolveRecipients(cfg, to)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Sending summary of run %s to: %s\n", report.RunID, formatRecipients(recipients))
	if len(cc) > 0 {
		fmt.Fprintf(output, "CC: %s\n", formatRecipients(cc))
	}
	fmt.Fprintf(output, "Files: %d succeeded, %d failed\n", report.Succeeded(), report.Failed())
	fmt.Fprintln(output)

	fmt.Fprintf(output, "Sending email...\n")
	err = notifier.SendReport(ctx, appnotification.SendRequest{
		To:         recipients,
		CC:         cc,
		Report:     report,
		ResultsURL: resultsURL,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Fprintf(output, "Email sent successfully!\n")
	return nil
}

// resolveRecipients turns --to/--notify queries into addresses plus the default CCs
func resolveRecipients(cfg *config.Config, queries []string) (to, cc []notification.Recipient, err error) {
	lookup := config.NewRecipientLookup(cfg)

	if len(queries) == 1 && strings.EqualFold(strings.TrimSpace(queries[0]), defaultRecipientsQuery) {
		to, err = lookup.GetDefaultRecipients()
		if errors.Is(err, notification.ErrNoRecipients) {
			return nil, nil, fmt.Errorf("no default recipients configured\n\nTo fix this, run:\n  video-translator config default <key>")
		}
	} else {
		to, err = lookup.LookupRecipients(queries)
		if errors.Is(err, notification.ErrRecipientNotFound) {
			return nil, nil, fmt.Errorf("failed to lookup recipients: %w\n\nTo fix this, run:\n  %s",
				err, config.SuggestAddRecipientCommand(firstQuery(queries)))
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup recipients: %w", err)
	}

	return to, lookup.GetDefaultCC(), nil
}

// newNotifier creates the Gmail-backed notification service
func newNotifier(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*appnotification.Service, error) {
	lookup := config.NewRecipientLookup(cfg)
	from := lookup.Sender()
	if from.Address == "" {
		return nil, fmt.Errorf("email.from_address is not configured")
	}

	svc, err := gmail.NewGoogleGmailService(ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}
	client := gmail.NewClient(from, gmail.WithGmailService(svc))
	return appnotification.NewService(client, from.Name), nil
}

func firstQuery(queries []string) string {
	for _, q := range queries {
		for _, part := range strings.Split(q, ",") {
			if part = strings.TrimSpace(part); part != "" {
				return part
			}
		}
	}
	return "name"
}

func formatRecipients(rs []notification.Recipient) string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = fmt.Sprintf("%s <%s>", r.Name, r.Address)
	}
	return strings.Join(out, ", ")
}

func recipientNames(rs []notification.Recipient) string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}
