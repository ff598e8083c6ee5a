package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr-joshcrane/magisterium"
)

type options struct {
	model            string
	url              string
	userAgent        string
	insecure         bool
	burp             bool
	timeout          int
	relatedQuestions bool
	threshold        string
	noFallback       bool
	file             string
	page             string
	verbose          bool
}

// readPipedStdin is a variable so tests can substitute piped input.
var readPipedStdin = pipedStdin

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "magisterium [message]",
		Short: "Ask the Magisterium API a question from your terminal",
		Long: `magisterium sends a single chat completion request to the Magisterium API
and prints the assistant's answer.

The API key is read from the MAGISTERIUM_API_KEY environment variable,
or from a .env file in the working directory.

Examples:
  magisterium "What is the Trinity?"
  magisterium --related-questions "What is the Magisterium?"
  magisterium --non-catholic-threshold OFF "Who was Martin Luther?"
  cat question.txt | magisterium
  magisterium -k --burp "What is grace?"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), opts, args, out, errOut)
		},
	}

	cmd.Flags().StringVar(&opts.model, "model", magisterium.DefaultModel, "model to use for the completion")
	cmd.Flags().StringVar(&opts.url, "url", magisterium.DefaultBaseURL, "API endpoint URL")
	cmd.Flags().StringVar(&opts.userAgent, "user-agent", magisterium.DefaultUserAgent, "custom User-Agent header")
	cmd.Flags().BoolVarP(&opts.insecure, "insecure", "k", false, "disable TLS certificate verification")
	cmd.Flags().BoolVar(&opts.burp, "burp", false, "route traffic through the Burp Suite proxy ("+magisterium.BurpProxyURL+")")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 30, "request timeout in seconds")
	cmd.Flags().BoolVar(&opts.relatedQuestions, "related-questions", false, "request related questions in the response")
	cmd.Flags().StringVar(&opts.threshold, "non-catholic-threshold", magisterium.ThresholdBlockAll, "threshold for non-Catholic content filtering (BLOCK_ALL or OFF)")
	cmd.Flags().BoolVar(&opts.noFallback, "no-fallback-response", false, "disable the fallback response when content is blocked")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the message from a file")
	cmd.Flags().StringVar(&opts.page, "page", "", "fetch a web page and send its readable text as the message")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log request and response details")

	return cmd
}

func runAsk(ctx context.Context, opts *options, args []string, out, errOut io.Writer) error {
	message, err := resolveMessage(opts, args)
	if err != nil {
		return err
	}

	clientOpts := []magisterium.ClientOption{
		magisterium.WithBaseURL(opts.url),
		magisterium.WithUserAgent(opts.userAgent),
		magisterium.WithTimeout(time.Duration(opts.timeout) * time.Second),
		magisterium.WithOutput(out, errOut),
		magisterium.WithVerbose(opts.verbose),
	}
	if opts.insecure {
		clientOpts = append(clientOpts, magisterium.WithInsecureTLS())
	}
	if opts.burp {
		clientOpts = append(clientOpts, magisterium.WithProxy())
	}
	client, err := magisterium.NewClient(clientOpts...)
	if err != nil {
		return err
	}

	completionOpts := []magisterium.CompletionOption{
		magisterium.WithModel(opts.model),
	}
	if opts.relatedQuestions {
		completionOpts = append(completionOpts, magisterium.WithRelatedQuestions())
	}
	if opts.threshold != magisterium.ThresholdBlockAll || opts.noFallback {
		settings, err := magisterium.NewSafetySettings(opts.threshold, !opts.noFallback)
		if err != nil {
			return err
		}
		completionOpts = append(completionOpts, magisterium.WithSafetySettings(settings))
	}

	completion, err := client.Ask(ctx, message, completionOpts...)
	if err != nil {
		return err
	}
	return client.PrintCompletion(completion)
}

// resolveMessage picks the message text: an explicit file or page source
// wins, then the positional argument, then the default question. Piped
// stdin is appended as extra context in every case.
func resolveMessage(opts *options, args []string) (string, error) {
	message := magisterium.DefaultMessage
	if len(args) == 1 {
		message = args[0]
	}
	switch {
	case opts.file != "" && opts.page != "":
		return "", fmt.Errorf("--file and --page are mutually exclusive")
	case opts.file != "":
		fromFile, err := magisterium.MessageFromFile(opts.file)
		if err != nil {
			return "", err
		}
		message = fromFile
	case opts.page != "":
		fromPage, err := magisterium.MessageFromURL(opts.page)
		if err != nil {
			return "", err
		}
		message = fromPage
	}
	if piped := readPipedStdin(); piped != "" {
		message = message + "\n\n" + piped
	}
	return message, nil
}

func pipedStdin() string {
	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}
