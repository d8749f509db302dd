package clean

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

func TestSplitColumn(t *testing.T) {
	tbl := table.MustNew(
		table.TextColumn("id", "1", "2", "3"),
		table.TextColumn("address", "123 Main St, Springfield, IL", "9 Elm Rd, Shelbyville", ""),
		table.TextColumn("note", "a", "b", "c"),
	)

	t.Run("generated names", func(t *testing.T) {
		out, err := SplitColumn(tbl, "address", ",", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "address_part_1", "address_part_2", "address_part_3", "note"}, out.Names())

		p2, _ := out.Column("address_part_2")
		assert.Equal(t, "Springfield", p2.Values[0].Text(), "parts are trimmed")
		p3, _ := out.Column("address_part_3")
		assert.True(t, p3.Values[1].IsNull(), "short row pads with absent")
		assert.True(t, p3.Values[2].IsNull())
	})

	t.Run("given names", func(t *testing.T) {
		out, err := SplitColumn(tbl, "address", `\s*,\s*`, []string{"street", "city", "state"})
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "street", "city", "state", "note"}, out.Names())
	})

	t.Run("name count mismatch falls back", func(t *testing.T) {
		out, err := SplitColumn(tbl, "address", ",", []string{"street"})
		require.NoError(t, err)
		assert.True(t, out.Has("address_part_1"))
	})

	assert.Equal(t, 3, tbl.Width(), "input must not be mutated")
}

func TestSplitColumn_Errors(t *testing.T) {
	tbl := table.MustNew(table.TextColumn("a", "x,y"))

	_, err := SplitColumn(tbl, "b", ",", nil)
	assert.True(t, errors.Is(err, table.ErrColumnNotFound), "got %v", err)

	_, err = SplitColumn(tbl, "a", "(", nil)
	assert.True(t, errors.Is(err, table.ErrInvalidPolicy), "got %v", err)
}
