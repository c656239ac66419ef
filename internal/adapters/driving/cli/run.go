package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass",
	Long: `Runs every enabled source once, in order, and prints a per-source report.
A failing source does not stop the others. The command exits with an error
only when every source failed or another pass is already running.`,
	Args: cobra.NoArgs,
	RunE: runIngestion,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(runCmd)
}

func runIngestion(cmd *cobra.Command, _ []string) error {
	ingest, err := ingestionService()
	if err != nil {
		return err
	}

	report, err := ingest.RunOnce(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return fmt.Errorf("another ingestion pass is running: %w", err)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if runJSON {
		if err := printJSON(cmd, newReportView(report)); err != nil {
			return err
		}
	} else {
		printReport(cmd, report)
	}

	failed := report.FailedSources()
	if len(report.Sources) > 0 && len(failed) == len(report.Sources) {
		return fmt.Errorf("all %d sources failed", len(failed))
	}
	return nil
}

func printReport(cmd *cobra.Command, report *domain.RunReport) {
	printHeading(cmd, "Ingestion report")

	if len(report.Sources) == 0 {
		cmd.Println("No sources enabled. Configure an API key or feed with 'knock config set'.")
		return
	}

	headers := []string{"Source", "Pages", "Fetched", "Created", "Merged", "Unchanged", "Failed", "Malformed", "Stop"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(report.Sources))
	for i := range report.Sources {
		s := &report.Sources[i]
		stop := string(s.Cutoff)
		if s.Err != nil {
			stop = "error"
		}
		rows = append(rows, []string{
			s.SourceID,
			strconv.Itoa(s.Pages),
			strconv.Itoa(s.Fetched),
			strconv.Itoa(s.Created),
			strconv.Itoa(s.Merged),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Failed),
			strconv.Itoa(s.Malformed),
			stop,
		})
	}
	cmd.Println(renderTable(headers, rows, aligns))

	for i := range report.Sources {
		if s := &report.Sources[i]; s.Err != nil {
			cmd.Println(styled(cmd, errorStyle, fmt.Sprintf("%s: %v", s.SourceID, s.Err)))
		}
	}
	cmd.Println(styled(cmd, mutedStyle, fmt.Sprintf("%d records in %s",
		report.Produced(), report.Duration().Round(time.Millisecond))))
}

// reportView is the JSON shape of a run report.
type reportView struct {
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   time.Time    `json:"endedAt"`
	Produced  int          `json:"produced"`
	Sources   []sourceView `json:"sources"`
}

type sourceView struct {
	Source    string `json:"source"`
	Pages     int    `json:"pages"`
	Fetched   int    `json:"fetched"`
	Created   int    `json:"created"`
	Merged    int    `json:"merged"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
	Malformed int    `json:"malformed"`
	Stop      string `json:"stop,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newReportView(report *domain.RunReport) reportView {
	view := reportView{
		StartedAt: report.StartedAt,
		EndedAt:   report.EndedAt,
		Produced:  report.Produced(),
		Sources:   make([]sourceView, 0, len(report.Sources)),
	}
	for i := range report.Sources {
		s := &report.Sources[i]
		sv := sourceView{
			Source:    s.SourceID,
			Pages:     s.Pages,
			Fetched:   s.Fetched,
			Created:   s.Created,
			Merged:    s.Merged,
			Unchanged: s.Skipped,
			Failed:    s.Failed,
			Malformed: s.Malformed,
			Stop:      string(s.Cutoff),
		}
		if s.Err != nil {
			sv.Error = s.Err.Error()
		}
		view.Sources = append(view.Sources, sv)
	}
	return view
}
