package cli

import (
	"encoding/json"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
)

type fieldUpdateOptions struct {
	name string
	kind kindOptions
}

func newFieldCommand(s *session) *cobra.Command {
	fieldCmd := &cobra.Command{
		Use:   "field",
		Short: "Manage the fields of a table",
		Long: heredoc.Doc(`
			Create, list, change and delete the typed fields of a table.

			Field types: Text, Integer, Decimal, Money, Progress, DateTime, Interval,
			WebLink, Email, Checkbox, Enumeration, Image, File.

			Examples:
			  chronicle field list 1
			  chronicle field create 1 Title --type Text --required
			  chronicle field create 1 Score --type Integer --min 0 --max 10
			  chronicle field create 1 Due --type DateTime --min 2024-01-01 --format-string "%Y-%m-%d"
			  chronicle field create 1 Priority --type Enumeration --values 1=low,2=high --default 1
			  chronicle field update 1 3 --name Deadline --max 2025-12-31
			  chronicle field delete 1 3`),
	}

	listCmd := &cobra.Command{
		Use:   "list <table-id>",
		Short: "List the fields of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldList(cmd, s, args[0])
		},
	}

	createOpts := &kindOptions{}
	createCmd := &cobra.Command{
		Use:   "create <table-id> <name>",
		Short: "Add a field to a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldCreate(cmd, s, args[0], args[1], createOpts)
		},
	}
	createOpts.register(createCmd.Flags())
	_ = createCmd.MarkFlagRequired("type")

	updateOpts := &fieldUpdateOptions{}
	updateCmd := &cobra.Command{
		Use:   "update <table-id> <field-id>",
		Short: "Rename a field or change its kind",
		Long: heredoc.Doc(`
			Update a field. Flags that are not given keep their current value.
			Changing --type starts from an empty kind of the new type; stored cells the
			new kind cannot hold are dropped by the server.`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldUpdate(cmd, s, args[0], args[1], updateOpts)
		},
	}
	updateCmd.Flags().StringVar(&updateOpts.name, "name", "", "new field name")
	updateOpts.kind.register(updateCmd.Flags())

	deleteCmd := &cobra.Command{
		Use:   "delete <table-id> <field-id>",
		Short: "Delete a field and its cells",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldDelete(cmd, s, args[0], args[1])
		},
	}

	fieldCmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	return fieldCmd
}

func runFieldList(cmd *cobra.Command, s *session, arg string) error {
	tableID, err := parseID(arg, "table id")
	if err != nil {
		return err
	}

	fields, err := s.client.ListFields(cmd.Context(), tableID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{
			formatID(f.FieldID),
			f.Name,
			kindType(f.FieldKind),
			kindOptionsText(f.FieldKind),
		})
	}
	return s.printer.render(fields, []string{"ID", "Name", "Type", "Options"}, rows)
}

func runFieldCreate(cmd *cobra.Command, s *session, tableArg, name string, opts *kindOptions) error {
	tableID, err := parseID(tableArg, "table id")
	if err != nil {
		return err
	}

	kind, err := buildKind(nil, cmd.Flags(), opts)
	if err != nil {
		return err
	}

	field, err := s.client.CreateField(cmd.Context(), tableID, name, kind)
	if err != nil {
		return err
	}
	return s.printer.record(field, fieldPairs(field))
}

func runFieldUpdate(cmd *cobra.Command, s *session, tableArg, fieldArg string, opts *fieldUpdateOptions) error {
	tableID, err := parseID(tableArg, "table id")
	if err != nil {
		return err
	}
	fieldID, err := parseID(fieldArg, "field id")
	if err != nil {
		return err
	}

	fields, err := s.client.ListFields(cmd.Context(), tableID)
	if err != nil {
		return err
	}
	current, ok := findField(fields, fieldID)
	if !ok {
		return errors.Newf(ErrUnknownField, "field %d not found in table %d", fieldID, tableID).
			AddContext("table_id", formatID(tableID)).
			AddContext("field_id", formatID(fieldID))
	}

	name := current.Name
	if cmd.Flags().Changed("name") {
		name = opts.name
	}

	kind, err := buildKind(current.FieldKind, cmd.Flags(), &opts.kind)
	if err != nil {
		return err
	}

	field, err := s.client.UpdateField(cmd.Context(), tableID, fieldID, name, kind)
	if err != nil {
		return err
	}
	return s.printer.record(field, fieldPairs(field))
}

func runFieldDelete(cmd *cobra.Command, s *session, tableArg, fieldArg string) error {
	tableID, err := parseID(tableArg, "table id")
	if err != nil {
		return err
	}
	fieldID, err := parseID(fieldArg, "field id")
	if err != nil {
		return err
	}

	if err := s.client.DeleteField(cmd.Context(), tableID, fieldID); err != nil {
		return err
	}
	return s.printer.done("Deleted field %d from table %d", fieldID, tableID)
}

func findField(fields []types.Field, fieldID types.ID) (types.Field, bool) {
	for _, f := range fields {
		if f.FieldID == fieldID {
			return f, true
		}
	}
	return types.Field{}, false
}

func fieldPairs(f types.Field) [][2]string {
	return [][2]string{
		{"ID", formatID(f.FieldID)},
		{"Table", formatID(f.TableID)},
		{"Name", f.Name},
		{"Type", kindType(f.FieldKind)},
		{"Options", kindOptionsText(f.FieldKind)},
	}
}

func kindType(kind types.FieldKind) string {
	if kind == nil {
		return ""
	}
	return string(kind.Type())
}

// kindOptionsText renders the constraints of a kind as compact JSON
// without the type tag, which has its own column.
func kindOptionsText(kind types.FieldKind) string {
	if kind == nil {
		return ""
	}
	data, err := json.Marshal(kind)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	if trimmed, err := sjson.DeleteBytes(data, "type"); err == nil {
		data = trimmed
	}
	return string(data)
}
