package menu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGenerator_SlicesBlobAcrossIDs(t *testing.T) {
	blob := strings.Repeat("a", 10) + strings.Repeat("b", 10)
	g := NewIDGenerator(blob, 16)

	first, err := g.Next(Prefix("m", "one"))
	require.NoError(t, err)
	assert.Equal(t, "m:one:"+strings.Repeat("a", 10), first)
	assert.Equal(t, 10, g.Remaining())

	second, err := g.Next(Prefix("m", "two"))
	require.NoError(t, err)
	assert.Equal(t, "m:two:"+strings.Repeat("b", 10), second)
	assert.Equal(t, 0, g.Remaining())

	third, err := g.Next(Prefix("m", "three"))
	require.NoError(t, err)
	assert.Equal(t, "m:three:", third, "prefix-only identifiers carry no state")

	require.NoError(t, g.Finish())
}

func TestIDGenerator_ConcatenationRebuildsBlob(t *testing.T) {
	blob := "AAUAbcdefghijklmnopqrstuvwxyz0123456789-_ABCDEFGHIJ"
	for _, maxLen := range []int{8, 13, 20, 100} {
		g := NewIDGenerator(blob, maxLen)
		var ids []string
		for g.Remaining() > 0 {
			id, err := g.Next(Prefix("m", "e"))
			require.NoError(t, err)
			assert.LessOrEqual(t, len(id), maxLen)
			ids = append(ids, id)
		}
		require.NoError(t, g.Finish())

		got, err := JoinSlices("m", ids)
		require.NoError(t, err)
		assert.Equal(t, blob, got, "maxLen %d", maxLen)
	}
}

func TestIDGenerator_FinishReportsLeftover(t *testing.T) {
	g := NewIDGenerator("0123456789", 8)
	_, err := g.Next(Prefix("m", "e"))
	require.NoError(t, err)

	err = g.Finish()
	require.Error(t, err)
	assert.True(t, IsCapacityError(err))
	assert.True(t, HasCode(err, ErrCodeCapacityExhausted))
	assert.Contains(t, err.Error(), "6 of 10")
}

func TestIDGenerator_PrefixTooLong(t *testing.T) {
	g := NewIDGenerator("", 5)
	_, err := g.Next(Prefix("menu", "button"))
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeIDTooLong))
}

func TestParseID(t *testing.T) {
	tests := []struct {
		id      string
		menu    string
		element string
		slice   string
		wantErr bool
	}{
		{id: "counter:inc:AAUA", menu: "counter", element: "inc", slice: "AAUA"},
		{id: "counter:inc:", menu: "counter", element: "inc"},
		{id: "settings.profile:page.next:xyz", menu: "settings.profile", element: "page.next", slice: "xyz"},
		{id: "counter:inc", wantErr: true},
		{id: ":inc:AA", wantErr: true},
		{id: "counter::AA", wantErr: true},
		{id: "a:b:c:d", wantErr: true},
		{id: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			menu, element, slice, err := ParseID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, HasCode(err, ErrCodeMalformedID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.menu, menu)
			assert.Equal(t, tt.element, element)
			assert.Equal(t, tt.slice, slice)
		})
	}
}

func TestJoinSlices_SkipsOtherMenus(t *testing.T) {
	got, err := JoinSlices("m", []string{"m:a:AB", "other:x:ZZ", "m:b:CD"})
	require.NoError(t, err)
	assert.Equal(t, "ABCD", got)
}
