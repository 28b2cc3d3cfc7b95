package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/Remi1095/chronicle/client"
	"github.com/Remi1095/chronicle/client/config"
	"github.com/Remi1095/chronicle/client/protocols/http"
	"github.com/Remi1095/chronicle/pkg/types"
	serverhttp "github.com/Remi1095/chronicle/server/protocols/http"
	"github.com/Remi1095/chronicle/server/storage/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startDevServer(t *testing.T) *client.Client {
	t.Helper()

	server := serverhttp.NewServer(memory.NewStore(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, server.Start(context.Background(), "127.0.0.1:0"))
	t.Cleanup(func() { _ = server.Stop() })

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.ApplyServerURL("http://"+server.Addr()))

	c, err := client.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestDataAccessAgainstDevServer(t *testing.T) {
	ctx := context.Background()
	c := startDevServer(t)

	table, err := c.CreateTable(ctx, "Tasks")
	require.NoError(t, err)
	assert.Equal(t, "Tasks", table.Name)
	assert.Empty(t, table.Description)

	_, err = c.CreateTable(ctx, "Tasks")
	require.Error(t, err)
	assert.Equal(t, 422, http.StatusCode(err))
	assert.Equal(t, "request failed with status 422: name: Table name already used", err.Error())

	table, err = c.UpdateTable(ctx, table.TableID, "Tasks", "things to do")
	require.NoError(t, err)
	assert.Equal(t, "things to do", table.Description)

	due, err := c.CreateField(ctx, table.TableID, "Due", types.DateTimeKind{
		RangeStart:     types.RawDateBound("2024-01-01"),
		DateTimeFormat: "%Y-%m-%d",
	})
	require.NoError(t, err)
	title, err := c.CreateField(ctx, table.TableID, "Title", types.TextKind{IsRequired: true})
	require.NoError(t, err)

	fields, err := c.ListFields(ctx, table.TableID)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	dueKind := fields[0].FieldKind.(types.DateTimeKind)
	assert.True(t, dueKind.RangeStart.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, dueKind.RangeEnd)
	assert.Equal(t, types.TextKind{IsRequired: true}, fields[1].FieldKind)

	first, err := c.CreateEntry(ctx, table.TableID, types.Cells{
		due.FieldID:   types.StringCell("2024-06-15T00:00:00Z"),
		title.FieldID: types.StringCell("ship it"),
	})
	require.NoError(t, err)
	_, err = c.CreateEntry(ctx, table.TableID, types.Cells{
		due.FieldID:   types.DateTimeCell(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		title.FieldID: types.StringCell("celebrate"),
	})
	require.NoError(t, err)

	_, err = c.CreateEntry(ctx, table.TableID, types.Cells{title.FieldID: types.NumberCell(1)})
	require.Error(t, err)
	assert.Equal(t, 422, http.StatusCode(err))

	data, err := c.GetDataTable(ctx, table.TableID)
	require.NoError(t, err)
	require.Len(t, data.Entries, 2)

	firstDue, ok := data.Entries[0].Cells[due.FieldID].(types.DateTimeCell)
	require.True(t, ok)
	assert.True(t, firstDue.Time().Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	secondDue, ok := data.Entries[1].Cells[due.FieldID].(types.DateTimeCell)
	require.True(t, ok)
	assert.True(t, secondDue.Time().Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, types.StringCell("celebrate"), data.Entries[1].Cells[title.FieldID])

	updated, err := c.UpdateEntry(ctx, table.TableID, first.EntryID, types.Cells{title.FieldID: types.StringCell("shipped")})
	require.NoError(t, err)
	assert.Equal(t, types.StringCell("shipped"), updated.Cells[title.FieldID])

	renamed, err := c.UpdateField(ctx, table.TableID, title.FieldID, "Summary", types.TextKind{})
	require.NoError(t, err)
	assert.Equal(t, "Summary", renamed.Name)

	require.NoError(t, c.DeleteEntry(ctx, table.TableID, first.EntryID))
	require.NoError(t, c.DeleteField(ctx, table.TableID, due.FieldID))

	data, err = c.GetDataTable(ctx, table.TableID)
	require.NoError(t, err)
	require.Len(t, data.Entries, 1)
	assert.NotContains(t, data.Entries[0].Cells, due.FieldID)

	require.NoError(t, c.DeleteTable(ctx, table.TableID))

	err = c.DeleteTable(ctx, table.TableID)
	require.Error(t, err)
	assert.True(t, http.IsNotFound(err))
	assert.Equal(t, "request failed with status 404: Not Found", err.Error())

	_, err = c.ListFields(ctx, table.TableID)
	assert.True(t, http.IsNotFound(err))
	assert.Contains(t, err.Error(), "Table not found")

	tables, err := c.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestConcurrentCallsShareOneClient(t *testing.T) {
	ctx := context.Background()
	c := startDevServer(t)

	table, err := c.CreateTable(ctx, "Counters")
	require.NoError(t, err)
	field, err := c.CreateField(ctx, table.TableID, "N", types.IntegerKind{})
	require.NoError(t, err)

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := c.CreateEntry(ctx, table.TableID, types.Cells{field.FieldID: types.NumberCell(i)})
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	data, err := c.GetDataTable(ctx, table.TableID)
	require.NoError(t, err)
	assert.Len(t, data.Entries, n)
}
