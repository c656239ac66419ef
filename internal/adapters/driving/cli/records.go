package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

var (
	recordsLimit  int
	recordsOffset int
	recordsJSON   bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect canonical records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records, newest opening first",
	Args:  cobra.NoArgs,
	RunE:  runRecordsList,
}

var recordsShowCmd = &cobra.Command{
	Use:   "show [id|code|title]",
	Short: "Show one record",
	Long: `Shows one record. The argument is matched against the record ID, then the
film catalog code, then the normalised title.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsShow,
}

func init() {
	recordsListCmd.Flags().IntVarP(&recordsLimit, "limit", "n", 20, "maximum number of records")
	recordsListCmd.Flags().IntVar(&recordsOffset, "offset", 0, "number of records to skip")
	recordsListCmd.Flags().BoolVar(&recordsJSON, "json", false, "output as JSON")
	recordsShowCmd.Flags().BoolVar(&recordsJSON, "json", false, "output as JSON")
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecordsList(cmd *cobra.Command, _ []string) error {
	svc, err := recordsService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	records, err := svc.List(ctx, recordsLimit, recordsOffset)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if recordsJSON {
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No records found.")
		return nil
	}

	headers := []string{"ID", "Domain", "Code", "Title", "Opening", "Links"}
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			truncate(r.ID, 8),
			string(r.Domain),
			r.Code,
			truncate(r.Title, 40),
			domain.FormatEpochMillis(r.OpeningTime),
			linkSummary(r.ReservationLinks),
		})
	}
	cmd.Println(renderTable(headers, rows, nil))

	total, err := svc.Count(ctx)
	if err == nil {
		cmd.Println(styled(cmd, mutedStyle, fmt.Sprintf("Showing %d-%d of %d",
			recordsOffset+1, recordsOffset+len(records), total)))
	}
	return nil
}

func runRecordsShow(cmd *cobra.Command, args []string) error {
	svc, err := recordsService()
	if err != nil {
		return err
	}

	rec, err := svc.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("record not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if recordsJSON {
		return printJSON(cmd, rec)
	}

	printHeading(cmd, rec.Title)
	field := func(label, value string) {
		if value != "" {
			cmd.Printf("  %-12s %s\n", label+":", value)
		}
	}
	field("ID", rec.ID)
	field("Code", rec.Code)
	field("Domain", string(rec.Domain))
	field("Opening", domain.FormatEpochMillis(rec.OpeningTime))
	if rec.ClosingTime != 0 {
		field("Closing", domain.FormatEpochMillis(rec.ClosingTime))
	}
	field("Directors", strings.Join(rec.Directors, ", "))
	field("Cast", strings.Join(rec.Cast, ", "))
	field("Companies", strings.Join(rec.Companies, ", "))
	field("Categories", categoryNames(rec.Categories))
	if rec.RunningTime > 0 {
		field("Running", strconv.Itoa(rec.RunningTime)+" min")
	}
	field("Venue", rec.Venue)
	field("Area", rec.Area)
	field("Source", rec.SourceID)

	venues := []string{domain.SourceMegabox, domain.SourceCGV, domain.SourceLotte}
	for slot, link := range rec.ReservationLinks {
		if link != "" && slot < len(venues) {
			field(venues[slot], link)
		}
	}
	if !domain.IsBlankPlot(rec.Plot) {
		cmd.Println()
		cmd.Println(rec.Plot)
	}
	return nil
}

// linkSummary marks which reservation slots are filled, e.g. "M-L".
func linkSummary(links []string) string {
	marks := []byte("MCL")
	out := make([]byte, domain.ReservationSlotCount)
	for i := range out {
		out[i] = '-'
		if i < len(links) && links[i] != "" {
			out[i] = marks[i]
		}
	}
	return string(out)
}

func categoryNames(refs []domain.CategoryRef) string {
	names := make([]string, 0, len(refs))
	for _, c := range refs {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}
