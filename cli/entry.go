package cli

import (
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/spf13/cobra"
)

func newEntryCommand(s *session) *cobra.Command {
	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage the entries of a table",
		Long: heredoc.Doc(`
			Create, change and delete entries. Cells are given as field=value
			pairs where field is a field id or name. Values are parsed according to the
			kind of their field; an empty value clears the cell.

			Examples:
			  chronicle entry create 1 Title="write report" Due=2024-06-15 Done=false
			  chronicle entry create 1 2=42
			  chronicle entry update 1 7 Done=true
			  chronicle entry delete 1 7`),
	}

	createCmd := &cobra.Command{
		Use:   "create <table-id> [field=value...]",
		Short: "Add an entry to a table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryCreate(cmd, s, args[0], args[1:])
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update <table-id> <entry-id> field=value...",
		Short: "Change cells of an entry",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryUpdate(cmd, s, args[0], args[1], args[2:])
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <table-id> <entry-id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryDelete(cmd, s, args[0], args[1])
		},
	}

	entryCmd.AddCommand(createCmd, updateCmd, deleteCmd)
	return entryCmd
}

func runEntryCreate(cmd *cobra.Command, s *session, tableArg string, assignments []string) error {
	tableID, err := parseID(tableArg, "table id")
	if err != nil {
		return err
	}

	fields, err := s.client.ListFields(cmd.Context(), tableID)
	if err != nil {
		return err
	}

	cells, err := parseAssignments(fields, assignments)
	if err != nil {
		return err
	}

	entry, err := s.client.CreateEntry(cmd.Context(), tableID, cells)
	if err != nil {
		return err
	}
	return s.printer.record(entry, entryPairs(fields, entry))
}

func runEntryUpdate(cmd *cobra.Command, s *session, tableArg, entryArg string, assignments []string) error {
	tableID, err := parseID(tableArg, "table id")
	if err != nil {
		return err
	}
	entryID, err := parseID(entryArg, "entry id")
	if err != nil {
		return err
	}

	data, err := s.client.GetDataTable(cmd.Context(), tableID)
	if err != nil {
		return err
	}

	var current *types.Entry
	for i := range data.Entries {
		if data.Entries[i].EntryID == entryID {
			current = &data.Entries[i]
			break
		}
	}
	if current == nil {
		return errors.Newf(ErrInvalidArgument, "entry %d not found in table %d", entryID, tableID).
			AddContext("table_id", formatID(tableID)).
			AddContext("entry_id", formatID(entryID))
	}

	changes, err := parseAssignments(data.Fields, assignments)
	if err != nil {
		return err
	}

	cells := current.Cells.Clone()
	if cells == nil {
		cells = make(types.Cells, len(changes))
	}
	for id, cell := range changes {
		cells[id] = cell
	}

	entry, err := s.client.UpdateEntry(cmd.Context(), tableID, entryID, cells)
	if err != nil {
		return err
	}
	return s.printer.record(entry, entryPairs(data.Fields, entry))
}

func runEntryDelete(cmd *cobra.Command, s *session, tableArg, entryArg string) error {
	tableID, err := parseID(tableArg, "table id")
	if err != nil {
		return err
	}
	entryID, err := parseID(entryArg, "entry id")
	if err != nil {
		return err
	}

	if err := s.client.DeleteEntry(cmd.Context(), tableID, entryID); err != nil {
		return err
	}
	return s.printer.done("Deleted entry %d from table %d", entryID, tableID)
}

// parseAssignments turns field=value arguments into cells. A field is
// named by id first, then by name ignoring case.
func parseAssignments(fields []types.Field, assignments []string) (types.Cells, error) {
	cells := make(types.Cells, len(assignments))
	for _, arg := range assignments {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errors.Newf(ErrInvalidArgument, "invalid cell %q (want field=value)", arg)
		}

		field, ok := resolveField(fields, strings.TrimSpace(key))
		if !ok {
			return nil, errors.Newf(ErrUnknownField, "unknown field %q", key).AddContext("field", key)
		}

		cell, err := types.ParseCell(field.FieldKind, value)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidArgument, err, "invalid value for field %q", field.Name).
				AddContext("field_id", formatID(field.FieldID))
		}
		cells[field.FieldID] = cell
	}
	return cells, nil
}

func resolveField(fields []types.Field, key string) (types.Field, bool) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		if f, ok := findField(fields, types.ID(id)); ok {
			return f, true
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f.Name, key) {
			return f, true
		}
	}
	return types.Field{}, false
}

func entryPairs(fields []types.Field, e types.Entry) [][2]string {
	pairs := [][2]string{{"ID", formatID(e.EntryID)}}
	for _, f := range fields {
		pairs = append(pairs, [2]string{f.Name, formatCell(f.FieldKind, e.Cells[f.FieldID])})
	}
	return pairs
}
