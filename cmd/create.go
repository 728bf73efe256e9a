package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MattEddy/coterie/internal/model"
)

var (
	createTypes []string
	createAttrs []string
	setName     string
	setAttrs    []string
	setPos      string
)

// parseAttrs turns key=value pairs into an attribute bag. Values that
// parse as numbers or booleans are stored typed; everything else is a
// string.
func parseAttrs(pairs []string) (model.Attributes, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := model.Attributes{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("attribute %q is not key=value", pair)
		}
		switch {
		case value == "true" || value == "false":
			attrs[key] = model.Bool(value == "true")
		default:
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				attrs[key] = model.Number(n)
			} else {
				attrs[key] = model.String(value)
			}
		}
	}
	return attrs, nil
}

var createCmd = &cobra.Command{
	Use:   "create <class> <name>",
	Short: "Create an object, optionally with initial types and attributes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		attrs, err := parseAttrs(createAttrs)
		if err != nil {
			return err
		}
		obj, err := st.CreateObject(cmd.Context(), args[0], args[1], createTypes, attrs)
		if err != nil {
			return err
		}
		fmt.Printf("created %s  %s (%s)\n", shortID(obj.ID), obj.Name, obj.Class)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <object>",
	Short: "Update an object's name, attributes, or position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		obj, err := ResolveObject(st.Snapshot(), args[0])
		if err != nil {
			return err
		}
		if setName != "" {
			obj.Name = setName
		}
		attrs, err := parseAttrs(setAttrs)
		if err != nil {
			return err
		}
		for k, v := range attrs {
			if obj.Data == nil {
				obj.Data = model.Attributes{}
			}
			obj.Data[k] = v
		}
		if setPos != "" {
			xs, ys, ok := strings.Cut(setPos, ",")
			if !ok {
				return fmt.Errorf("--pos expects x,y")
			}
			x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
			y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
			if errX != nil || errY != nil {
				return fmt.Errorf("--pos expects numeric x,y")
			}
			obj.MapX, obj.MapY = &x, &y
		}

		updated, err := st.UpdateObject(cmd.Context(), obj)
		if err != nil {
			return err
		}
		fmt.Printf("updated %s  %s\n", shortID(updated.ID), updated.Name)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <object>",
	Short: "Delete an object and everything attached to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		obj, err := ResolveObject(st.Snapshot(), args[0])
		if err != nil {
			return err
		}
		if err := st.DeleteObject(cmd.Context(), obj.ID); err != nil {
			return err
		}
		fmt.Printf("deleted %s  %s\n", shortID(obj.ID), obj.Name)
		return nil
	},
}

var assignTypeCmd = &cobra.Command{
	Use:   "assign-type <object> <type>",
	Short: "Assign a type to an object",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		obj, err := ResolveObject(st.Snapshot(), args[0])
		if err != nil {
			return err
		}
		primary, _ := cmd.Flags().GetBool("primary")
		if err := st.AssignType(cmd.Context(), obj.ID, args[1], primary); err != nil {
			return err
		}
		fmt.Printf("assigned %s to %s\n", args[1], obj.Name)
		return nil
	},
}

var removeTypeCmd = &cobra.Command{
	Use:   "remove-type <object> <type>",
	Short: "Remove a type from an object",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := OpenStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		obj, err := ResolveObject(st.Snapshot(), args[0])
		if err != nil {
			return err
		}
		if err := st.RemoveType(cmd.Context(), obj.ID, args[1]); err != nil {
			return err
		}
		fmt.Printf("removed %s from %s\n", args[1], obj.Name)
		return nil
	},
}

func init() {
	createCmd.Flags().StringArrayVar(&createTypes, "type", nil, "Initial type (repeatable)")
	createCmd.Flags().StringArrayVar(&createAttrs, "attr", nil, "Attribute key=value (repeatable)")
	setCmd.Flags().StringVar(&setName, "name", "", "New name")
	setCmd.Flags().StringArrayVar(&setAttrs, "attr", nil, "Attribute key=value (repeatable)")
	setCmd.Flags().StringVar(&setPos, "pos", "", "Canvas position x,y")
	assignTypeCmd.Flags().Bool("primary", false, "Mark as the primary type")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(assignTypeCmd)
	rootCmd.AddCommand(removeTypeCmd)
}
