package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MattEddy/coterie/internal/model"
)

var (
	objClass string
	objType  string
	objJSON  bool
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "List objects, optionally filtered by class or type",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snap := st.Snapshot()
		var objects []model.GraphObject
		switch {
		case objType != "":
			objects = snap.ObjectsByType(objType)
		case objClass != "":
			objects = snap.ObjectsByClass(objClass)
		default:
			objects = snap.Objects
		}

		if objJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(objects)
		}
		for _, o := range objects {
			primary := ""
			if types := snap.TypesOfObject(o.ID); len(types) > 0 {
				primary = types[0].ID
			}
			fmt.Printf("%s  %-8s %-20s %s\n", shortID(o.ID), o.Class, primary, o.Name)
		}
		fmt.Printf("%d objects\n", len(objects))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <object>",
	Short: "Show an object with its types and relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snap := st.Snapshot()
		obj, err := ResolveObject(snap, args[0])
		if err != nil {
			return err
		}

		if objJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(obj)
		}

		fmt.Printf("%s (%s)\n", obj.Name, obj.Class)
		fmt.Printf("  id: %s\n", obj.ID)
		if obj.Positioned() {
			fmt.Printf("  position: %.0f, %.0f\n", *obj.MapX, *obj.MapY)
		}
		for _, key := range obj.Data.Keys() {
			fmt.Printf("  %s: %s\n", key, obj.Data.StringOr(key, ""))
		}
		if types := snap.TypesOfObject(obj.ID); len(types) > 0 {
			fmt.Println("  types:")
			for _, t := range types {
				fmt.Printf("    %s (%s)\n", t.ID, t.DisplayName)
			}
		}
		if related := snap.RelatedObjects(obj.ID); len(related) > 0 {
			fmt.Println("  relationships:")
			for _, r := range related {
				arrow := "->"
				if r.Direction == model.DirectionIncoming {
					arrow = "<-"
				}
				fmt.Printf("    %s %s %s (%s)\n", arrow, r.Relationship.Type, r.Object.Name, shortID(r.Relationship.ID))
			}
		}
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the class and type taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snap := st.Snapshot()
		for _, c := range snap.Classes {
			fmt.Printf("%s (%s)\n", c.ID, c.DisplayName)
			for _, t := range snap.TypesOfClass(c.ID) {
				fmt.Printf("  %-22s %s\n", t.ID, t.DisplayName)
			}
		}
		fmt.Println("relationship types:")
		for _, rt := range snap.RelationshipTypes {
			fmt.Printf("  %-22s %s\n", rt.ID, rt.DisplayName)
		}
		return nil
	},
}

func init() {
	objectsCmd.Flags().StringVar(&objClass, "class", "", "Filter by object class")
	objectsCmd.Flags().StringVar(&objType, "type", "", "Filter by object type")
	objectsCmd.Flags().BoolVar(&objJSON, "json", false, "Output JSON")
	showCmd.Flags().BoolVar(&objJSON, "json", false, "Output JSON")

	rootCmd.AddCommand(objectsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(typesCmd)
}
