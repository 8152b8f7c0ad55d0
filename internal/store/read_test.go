package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_EmptyTableKeepsColumns(t *testing.T) {
	s := createTestStore(t)

	tbl, err := s.Read(context.Background(), "SELECT * FROM widgets", nil)
	require.NoError(t, err)
	require.NotNil(t, tbl)

	assert.True(t, tbl.Empty())
	assert.Equal(t, []string{"id", "name", "weight", "active"}, tbl.Columns)
	assert.NotNil(t, tbl.Rows)
}

func TestRead_TypedAccessors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, insertWidgetSQL, [][]any{{"w1", "sprocket", 2.5, true}})
	require.NoError(t, err)

	tbl, err := s.Read(ctx, "SELECT * FROM widgets WHERE id = ?", []any{"w1"})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())

	row := tbl.Row(0)
	assert.Equal(t, "w1", row.String("id"))
	assert.Equal(t, "sprocket", row.String("name"))
	assert.InDelta(t, 2.5, row.Float("weight"), 1e-9)
	assert.True(t, row.Bool("active"))
	assert.Nil(t, row.Value("missing"))
	assert.Equal(t, "", row.String("missing"))
}

func TestRead_SchemaMissingError(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Read(context.Background(), "SELECT * FROM nowhere", nil)
	require.Error(t, err)
	assert.True(t, IsSchemaMissing(err))
	assert.False(t, IsLockContention(err))
}

func TestReadOrRecreate_RecreatesDroppedTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.DropTable(ctx, "widgets"))

	tbl, err := s.ReadOrRecreate(ctx, widgetSchema, "SELECT * FROM widgets", nil)
	require.NoError(t, err)
	assert.True(t, tbl.Empty())
	assert.Equal(t, "id", tbl.Columns[0])
}

func TestReadOrRecreate_SecondFailurePropagates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Bootstrapping widgets does not create the table the query asks for.
	_, err := s.ReadOrRecreate(ctx, widgetSchema, "SELECT * FROM nowhere", nil)
	require.Error(t, err)
	assert.True(t, IsSchemaMissing(err))
}

func TestReadOrRecreate_OtherErrorsNotRetried(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadOrRecreate(context.Background(), widgetSchema, "SELEC broken", nil)
	require.Error(t, err)
	assert.False(t, IsSchemaMissing(err))
}

func TestRowBool_TextValues(t *testing.T) {
	tbl := &Table{
		Columns: []string{"flag", "num"},
		Rows:    [][]any{{"true", []byte("3.25")}, {int64(0), "junk"}},
	}

	assert.True(t, tbl.Row(0).Bool("flag"))
	assert.InDelta(t, 3.25, tbl.Row(0).Float("num"), 1e-9)
	assert.False(t, tbl.Row(1).Bool("flag"))
	assert.Equal(t, 0.0, tbl.Row(1).Float("num"))
}
