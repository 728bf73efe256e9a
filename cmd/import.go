package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MattEddy/coterie/internal/contacts"
	"github.com/MattEddy/coterie/internal/layout"
)

var (
	importThreshold float64
	importNoLayout  bool
)

var importCmd = &cobra.Command{
	Use:   "import <contacts.csv>",
	Short: "Import a contacts CSV into the graph",
	Long: `Reads an address-book CSV export and turns each row into a person.
Organizations are fuzzy-matched against existing companies; unmatched
ones are created. Each person is linked to their company with
employed_by, and new objects are auto-placed afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, logger, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		entries, err := contacts.ReadCSV(f)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no contacts to import")
			return nil
		}

		importer := contacts.NewImporter(st, logger)
		if importThreshold > 0 {
			importer.Threshold = importThreshold
		}
		res, err := importer.Import(cmd.Context(), entries)
		if err != nil {
			return err
		}

		fmt.Printf("imported %d people, %d new companies, %d linked\n", res.People, res.Companies, res.Linked)
		for _, f := range res.Failures {
			fmt.Printf("  failed: %s: %v\n", f.Contact.DisplayName(), f.Err)
		}

		if !importNoLayout {
			placements := layout.Compute(st.Snapshot(), false)
			lr := layout.Apply(cmd.Context(), st, placements, logger)
			fmt.Printf("placed %d new objects\n", lr.Applied)
		}
		if len(res.Failures) > 0 {
			return fmt.Errorf("import finished with %d failures", len(res.Failures))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Float64Var(&importThreshold, "threshold", 0, "Fuzzy match threshold (default 0.75)")
	importCmd.Flags().BoolVar(&importNoLayout, "no-layout", false, "Skip auto-layout after import")

	rootCmd.AddCommand(importCmd)
}
