package cli

import (
	"strconv"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type tableUpdateOptions struct {
	name        string
	description string
}

func newTableCommand(s *session) *cobra.Command {
	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Manage tables",
		Long: heredoc.Doc(`
			Create, list, rename and delete tables.

			Examples:
			  chronicle table list
			  chronicle table create Tasks
			  chronicle table update 1 --name Chores --description "Weekly chores"
			  chronicle table delete 1`),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTableList(cmd, s)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTableCreate(cmd, s, args[0])
		},
	}

	updateOpts := &tableUpdateOptions{}
	updateCmd := &cobra.Command{
		Use:   "update <table-id>",
		Short: "Rename a table or change its description",
		Long: heredoc.Doc(`
			Update the name and description of a table. Flags that are not given
			keep their current value.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTableUpdate(cmd, s, args[0], updateOpts)
		},
	}
	updateCmd.Flags().StringVar(&updateOpts.name, "name", "", "new table name")
	updateCmd.Flags().StringVar(&updateOpts.description, "description", "", "new table description")

	deleteCmd := &cobra.Command{
		Use:   "delete <table-id>",
		Short: "Delete a table with its fields and entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTableDelete(cmd, s, args[0])
		},
	}

	tableCmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	return tableCmd
}

func runTableList(cmd *cobra.Command, s *session) error {
	tables, err := s.client.ListTables(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{
			formatID(t.TableID),
			t.Name,
			t.Description,
			humanize.Time(t.CreatedAt),
		})
	}
	return s.printer.render(tables, []string{"ID", "Name", "Description", "Created"}, rows)
}

func runTableCreate(cmd *cobra.Command, s *session, name string) error {
	table, err := s.client.CreateTable(cmd.Context(), name)
	if err != nil {
		return err
	}
	return s.printer.record(table, tablePairs(table))
}

func runTableUpdate(cmd *cobra.Command, s *session, arg string, opts *tableUpdateOptions) error {
	tableID, err := parseID(arg, "table id")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("description") {
		return errors.New(ErrInvalidArgument, "nothing to update: pass --name or --description")
	}

	current, err := findTable(cmd, s, tableID)
	if err != nil {
		return err
	}

	name, description := current.Name, current.Description
	if flags.Changed("name") {
		name = opts.name
	}
	if flags.Changed("description") {
		description = opts.description
	}

	table, err := s.client.UpdateTable(cmd.Context(), tableID, name, description)
	if err != nil {
		return err
	}
	return s.printer.record(table, tablePairs(table))
}

func runTableDelete(cmd *cobra.Command, s *session, arg string) error {
	tableID, err := parseID(arg, "table id")
	if err != nil {
		return err
	}

	if err := s.client.DeleteTable(cmd.Context(), tableID); err != nil {
		return err
	}
	return s.printer.done("Deleted table %d", tableID)
}

// findTable looks a table up in the table list; the API has no single
// table read.
func findTable(cmd *cobra.Command, s *session, tableID types.ID) (types.Table, error) {
	tables, err := s.client.ListTables(cmd.Context())
	if err != nil {
		return types.Table{}, err
	}
	for _, t := range tables {
		if t.TableID == tableID {
			return t, nil
		}
	}
	return types.Table{}, errors.Newf(ErrInvalidArgument, "table %d not found", tableID).
		AddContext("table_id", formatID(tableID))
}

func tablePairs(t types.Table) [][2]string {
	pairs := [][2]string{
		{"ID", formatID(t.TableID)},
		{"Name", t.Name},
		{"Description", t.Description},
		{"Created", formatTimestamp(t.CreatedAt)},
	}
	if t.UpdatedAt != nil {
		pairs = append(pairs, [2]string{"Updated", formatTimestamp(*t.UpdatedAt)})
	}
	return pairs
}

func parseID(arg, what string) (types.ID, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidArgument, err, "invalid %s %q", what, arg)
	}
	return types.ID(id), nil
}

func formatID(id types.ID) string {
	return strconv.FormatInt(int64(id), 10)
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
