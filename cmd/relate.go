package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var relateAttrs []string

var relateCmd = &cobra.Command{
	Use:   "relate <source> <type> <target>",
	Short: "Create a typed relationship between two objects",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snap := st.Snapshot()
		source, err := ResolveObject(snap, args[0])
		if err != nil {
			return err
		}
		target, err := ResolveObject(snap, args[2])
		if err != nil {
			return err
		}
		attrs, err := parseAttrs(relateAttrs)
		if err != nil {
			return err
		}
		rel, err := st.CreateRelationship(cmd.Context(), source.ID, target.ID, args[1], attrs)
		if err != nil {
			return err
		}
		fmt.Printf("related %s  %s -%s-> %s\n", shortID(rel.ID), source.Name, rel.Type, target.Name)
		return nil
	},
}

var unrelateCmd = &cobra.Command{
	Use:   "unrelate <relationship-id>",
	Short: "Delete a relationship by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteRelationship(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted relationship %s\n", shortID(args[0]))
		return nil
	},
}

func init() {
	relateCmd.Flags().StringArrayVar(&relateAttrs, "attr", nil, "Attribute key=value (repeatable)")

	rootCmd.AddCommand(relateCmd)
	rootCmd.AddCommand(unrelateCmd)
}
