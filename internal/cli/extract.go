package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"parent-care-assistant/internal/app"
	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/pkg/datemath"
	"parent-care-assistant/pkg/ics"
)

type extractOptions struct {
	file    string
	parent  string
	today   string
	icsPath string
	asJSON  bool
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract follow-up schedules from a transcript file",
		Long: `Extract reads a call transcript and prints the summary, mood and proposed
follow-ups. The language model is used when configured; otherwise the keyword
rules answer. No database is needed.

Example:
  carectl extract --file call.txt --parent 어머니 --today 2024-02-04
  carectl extract --file - --json < call.txt
  carectl extract --file call.txt --ics followups.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "transcript file, - for stdin")
	cmd.Flags().StringVar(&opts.parent, "parent", "", "how to address the parent (default from config)")
	cmd.Flags().StringVar(&opts.today, "today", "", "reference date, YYYY-MM-DD or a phrase like 내일 (default: today)")
	cmd.Flags().StringVar(&opts.icsPath, "ics", "", "also write the schedules as an iCalendar file")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions) error {
	cfg, l, err := root.load()
	if err != nil {
		return err
	}

	transcript, err := readTranscript(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(transcript) == "" {
		return extraction.ErrEmptyTranscript
	}

	dates, err := datemath.NewParser(cfg.Extraction.Timezone)
	if err != nil {
		return fmt.Errorf("extraction.timezone: %w", err)
	}
	buildOpts := app.Options{Offline: true, Dates: dates}
	if opts.today != "" {
		day, err := dates.ParseDateOrRelative(opts.today, time.Now())
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		buildOpts.Clock = func() time.Time { return day }
	}

	a, err := app.Build(cmd.Context(), cfg, l, buildOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	parent := opts.parent
	if parent == "" {
		parent = cfg.Extraction.DefaultParentName
	}
	res := a.Extraction.ExtractSchedulesFromConversation(cmd.Context(), transcript, parent)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}

	if opts.icsPath != "" {
		if err := writeICS(opts.icsPath, parent, res, a.Dates.ParseDate); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", opts.icsPath)
	}
	return nil
}

func readTranscript(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(b), nil
}

func printResult(w io.Writer, r extraction.ExtractionResult) {
	fmt.Fprintf(w, "summary:  %s\n", r.Summary)
	fmt.Fprintf(w, "mood:     %s\n", r.Mood)
	fmt.Fprintf(w, "keywords: %s\n", strings.Join(r.Keywords, ", "))
	fmt.Fprintf(w, "source:   %s\n", r.Source)
	if len(r.Schedules) == 0 {
		fmt.Fprintln(w, "no follow-ups")
		return
	}
	fmt.Fprintln(w, "follow-ups:")
	for i, s := range r.Schedules {
		fmt.Fprintf(w, "  %d. %s  %-16s %s (%.2f)\n", i+1, s.DueDate, s.Type, s.Topic, s.Confidence)
	}
}

func writeICS(path, parent string, r extraction.ExtractionResult, parseDate func(string) (time.Time, error)) error {
	events := make([]ics.Event, 0, len(r.Schedules))
	for _, s := range r.Schedules {
		day, err := parseDate(s.DueDate)
		if err != nil {
			continue
		}
		events = append(events, ics.Event{
			UID:         s.ID + "@parent-care-assistant",
			Summary:     s.Topic,
			Description: s.Reason,
			Date:        day,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := ics.Encode(f, parent+" 돌봄 일정", events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
