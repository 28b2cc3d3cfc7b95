package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Remi1095/chronicle/client/config"
	"github.com/Remi1095/chronicle/client/protocols/http"
	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/rs/zerolog"
)

// Client is the data access layer of the chronicle API: tables, their
// fields and their entries. Every call goes straight to the server; there
// is no caching and no retry. A Client may be shared between goroutines.
type Client struct {
	config *config.Config
	http   *http.Client
	logger zerolog.Logger
}

// New creates a new chronicle client
func New(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	httpClient, err := http.NewClient(cfg, logger)
	if err != nil {
		return nil, errors.Wrap(ErrClientCreationFailed, err, "failed to create HTTP client")
	}

	return &Client{
		config: cfg,
		http:   httpClient,
		logger: logger.With().Str("component", "client").Logger(),
	}, nil
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *config.Config {
	return c.config
}

type tableRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type fieldRequest struct {
	Name      string          `json:"name"`
	FieldKind types.FieldKind `json:"field_kind"`
}

// fieldReply is the body of a field write. Some servers answer with the id
// alone; whatever is missing is taken from the request.
type fieldReply struct {
	TableID   types.ID        `json:"table_id"`
	UserID    types.ID        `json:"user_id"`
	FieldID   types.ID        `json:"field_id"`
	Name      *string         `json:"name"`
	FieldKind json.RawMessage `json:"field_kind"`
	UpdatedAt *time.Time      `json:"updated_at"`
}

func (r fieldReply) field(tableID, fieldID types.ID, req fieldRequest) (types.Field, error) {
	field := types.Field{
		TableID:   r.TableID,
		UserID:    r.UserID,
		FieldID:   r.FieldID,
		Name:      req.Name,
		FieldKind: req.FieldKind,
		UpdatedAt: r.UpdatedAt,
	}
	if field.TableID == 0 {
		field.TableID = tableID
	}
	if field.FieldID == 0 {
		field.FieldID = fieldID
	}
	if r.Name != nil {
		field.Name = *r.Name
	}
	if len(r.FieldKind) > 0 && string(r.FieldKind) != "null" {
		kind, err := types.DecodeFieldKind(r.FieldKind)
		if err != nil {
			return types.Field{}, err
		}
		field.FieldKind = kind
	}
	return field, nil
}

// ListTables returns the tables of the current user.
func (c *Client) ListTables(ctx context.Context) ([]types.Table, error) {
	tables, err := http.Get[[]types.Table](ctx, c.http, "/tables")
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(tables)).Msg("Listed tables")
	return tables, nil
}

// CreateTable creates a table with an empty description.
func (c *Client) CreateTable(ctx context.Context, name string) (types.Table, error) {
	table, err := http.Post[types.Table](ctx, c.http, "/tables", tableRequest{Name: name})
	if err != nil {
		return types.Table{}, err
	}

	c.logger.Info().Int64("table_id", int64(table.TableID)).Str("name", name).Msg("Created table")
	return table, nil
}

// UpdateTable replaces the name and description of a table.
func (c *Client) UpdateTable(ctx context.Context, tableID types.ID, name, description string) (types.Table, error) {
	table, err := http.Put[types.Table](ctx, c.http, tablePath(tableID), tableRequest{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return types.Table{}, err
	}

	c.logger.Info().Int64("table_id", int64(tableID)).Msg("Updated table")
	return table, nil
}

// DeleteTable deletes a table with its fields and entries.
func (c *Client) DeleteTable(ctx context.Context, tableID types.ID) error {
	if err := c.http.Delete(ctx, tablePath(tableID)); err != nil {
		return err
	}

	c.logger.Info().Int64("table_id", int64(tableID)).Msg("Deleted table")
	return nil
}

// ListFields returns the fields of a table with DateTime bounds hydrated.
func (c *Client) ListFields(ctx context.Context, tableID types.ID) ([]types.Field, error) {
	fields, err := http.Get[[]types.Field](ctx, c.http, tablePath(tableID)+"/fields")
	if err != nil {
		return nil, err
	}

	// Hydration works on whole tables; wrap the fields in one that has no
	// entries and an id no real table uses.
	hydrated, err := types.Hydrate(types.DataTable{
		Table:  types.Table{TableID: -1},
		Fields: fields,
	})
	if err != nil {
		return nil, errors.Wrap(ErrHydrationFailed, err, "failed to hydrate fields").
			AddContext("table_id", formatID(tableID))
	}

	return hydrated.Fields, nil
}

// CreateField adds a field to a table. The returned field is not hydrated.
func (c *Client) CreateField(ctx context.Context, tableID types.ID, name string, kind types.FieldKind) (types.Field, error) {
	if kind == nil {
		return types.Field{}, errors.New(ErrFieldKindMissing, "field kind is required").AddContext("name", name)
	}

	req := fieldRequest{Name: name, FieldKind: kind}
	reply, err := http.Post[fieldReply](ctx, c.http, tablePath(tableID)+"/fields", req)
	if err != nil {
		return types.Field{}, err
	}
	field, err := reply.field(tableID, 0, req)
	if err != nil {
		return types.Field{}, err
	}

	c.logger.Info().
		Int64("table_id", int64(tableID)).
		Int64("field_id", int64(field.FieldID)).
		Str("type", string(kind.Type())).
		Msg("Created field")
	return field, nil
}

// UpdateField replaces the name and kind of a field. The returned field is
// not hydrated.
func (c *Client) UpdateField(ctx context.Context, tableID, fieldID types.ID, name string, kind types.FieldKind) (types.Field, error) {
	if kind == nil {
		return types.Field{}, errors.New(ErrFieldKindMissing, "field kind is required").AddContext("name", name)
	}

	req := fieldRequest{Name: name, FieldKind: kind}
	reply, err := http.Put[fieldReply](ctx, c.http, fieldPath(tableID, fieldID), req)
	if err != nil {
		return types.Field{}, err
	}
	field, err := reply.field(tableID, fieldID, req)
	if err != nil {
		return types.Field{}, err
	}

	c.logger.Info().Int64("table_id", int64(tableID)).Int64("field_id", int64(fieldID)).Msg("Updated field")
	return field, nil
}

// DeleteField deletes a field and the cells stored under it.
func (c *Client) DeleteField(ctx context.Context, tableID, fieldID types.ID) error {
	if err := c.http.Delete(ctx, fieldPath(tableID, fieldID)); err != nil {
		return err
	}

	c.logger.Info().Int64("table_id", int64(tableID)).Int64("field_id", int64(fieldID)).Msg("Deleted field")
	return nil
}

// GetDataTable returns a table with all of its fields and entries, hydrated.
func (c *Client) GetDataTable(ctx context.Context, tableID types.ID) (types.DataTable, error) {
	table, err := http.Get[types.DataTable](ctx, c.http, tablePath(tableID)+"/data")
	if err != nil {
		return types.DataTable{}, err
	}

	hydrated, err := types.Hydrate(table)
	if err != nil {
		return types.DataTable{}, errors.Wrap(ErrHydrationFailed, err, "failed to hydrate table data").
			AddContext("table_id", formatID(tableID))
	}

	c.logger.Debug().
		Int64("table_id", int64(tableID)).
		Int("fields", len(hydrated.Fields)).
		Int("entries", len(hydrated.Entries)).
		Msg("Fetched table data")
	return hydrated, nil
}

// CreateEntry adds an entry to a table. The returned entry is not hydrated.
func (c *Client) CreateEntry(ctx context.Context, tableID types.ID, cells types.Cells) (types.Entry, error) {
	entry, err := http.Post[types.Entry](ctx, c.http, tablePath(tableID)+"/entries", nonNil(cells))
	if err != nil {
		return types.Entry{}, err
	}

	c.logger.Info().Int64("table_id", int64(tableID)).Int64("entry_id", int64(entry.EntryID)).Msg("Created entry")
	return entry, nil
}

// UpdateEntry replaces the cells of an entry. The returned entry is not
// hydrated.
func (c *Client) UpdateEntry(ctx context.Context, tableID, entryID types.ID, cells types.Cells) (types.Entry, error) {
	entry, err := http.Put[types.Entry](ctx, c.http, entryPath(tableID, entryID), nonNil(cells))
	if err != nil {
		return types.Entry{}, err
	}

	c.logger.Info().Int64("table_id", int64(tableID)).Int64("entry_id", int64(entryID)).Msg("Updated entry")
	return entry, nil
}

// DeleteEntry deletes an entry.
func (c *Client) DeleteEntry(ctx context.Context, tableID, entryID types.ID) error {
	if err := c.http.Delete(ctx, entryPath(tableID, entryID)); err != nil {
		return err
	}

	c.logger.Info().Int64("table_id", int64(tableID)).Int64("entry_id", int64(entryID)).Msg("Deleted entry")
	return nil
}

func tablePath(tableID types.ID) string {
	return fmt.Sprintf("/tables/%d", tableID)
}

func fieldPath(tableID, fieldID types.ID) string {
	return fmt.Sprintf("/tables/%d/fields/%d", tableID, fieldID)
}

func entryPath(tableID, entryID types.ID) string {
	return fmt.Sprintf("/tables/%d/entries/%d", tableID, entryID)
}

func formatID(id types.ID) string {
	return fmt.Sprint(int64(id))
}

// nonNil keeps an empty entry encoding as {} rather than null.
func nonNil(cells types.Cells) types.Cells {
	if cells == nil {
		return types.Cells{}
	}
	return cells
}
