package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MattEddy/coterie/internal/layout"
)

var (
	layoutForce  bool
	layoutDryRun bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Auto-place objects on the canvas",
	Long: `Computes canvas positions: companies in type-ordered columns, people
clustered under their employers, projects beside their producers. By
default only objects without a position are placed; --force re-places
everything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, logger, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snap := st.Snapshot()
		placements := layout.Compute(snap, layoutForce)
		if layoutDryRun {
			for _, p := range placements {
				if o, ok := snap.Object(p.ObjectID); ok {
					fmt.Printf("%s  %-30s %.0f, %.0f\n", shortID(p.ObjectID), o.Name, p.X, p.Y)
				}
			}
			fmt.Printf("%d placements (dry run)\n", len(placements))
			return nil
		}

		res := layout.Apply(cmd.Context(), st, placements, logger)
		fmt.Printf("placed %d objects\n", res.Applied)
		if len(res.Failures) > 0 {
			fmt.Printf("%d placements failed:\n", len(res.Failures))
			for _, f := range res.Failures {
				fmt.Printf("  %s: %v\n", shortID(f.ObjectID), f.Err)
			}
			return fmt.Errorf("layout finished with %d failures", len(res.Failures))
		}
		return nil
	},
}

func init() {
	layoutCmd.Flags().BoolVar(&layoutForce, "force", false, "Re-place objects that already have positions")
	layoutCmd.Flags().BoolVar(&layoutDryRun, "dry-run", false, "Print placements without writing them")

	rootCmd.AddCommand(layoutCmd)
}
