package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the film catalog reference index",
}

var indexImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import reference entries from a JSON file",
	Long: `Imports film catalog reference entries used to resolve codes for venue
listings. The file holds a JSON array of entries with code, title, openingTime,
directors, cast, companies, genres and runningTime. Use "-" to read stdin.
Entries replace existing ones with the same code.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexImport,
}

func init() {
	indexCmd.AddCommand(indexImportCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexImport(cmd *cobra.Command, args []string) error {
	svc, err := recordsService()
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	var entries []domain.AuthoritativeEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	n, err := svc.ImportAuthoritative(cmd.Context(), entries)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	cmd.Printf("Imported %d entries.\n", n)
	return nil
}
