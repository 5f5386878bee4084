package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/menukit/internal/menu"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(token string, seq int64, menuID, element, response string) menu.Record {
	return menu.Record{Token: token, Seq: seq, Menu: menuID, Element: element, Response: response}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, rec("a", 1, "counter", "inc", "update")))
	require.NoError(t, s.Close())

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	records, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 1, "reopening keeps existing rows")

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for name, want := range map[string]string{"journal_mode": "wal", "busy_timeout": "5000"} {
		got, err := s.pragma(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestClose_NilDB(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}

func TestRecord_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := menu.Record{
		Token:      "t1",
		Seq:        7,
		Menu:       "settings",
		Element:    "profile",
		Response:   "update",
		Target:     "settings.profile",
		BlobBefore: "abc",
		BlobAfter:  "def",
		Deferred:   true,
	}
	require.NoError(t, s.Record(ctx, want))

	got, err := s.ReadToken(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestList_OrdersBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Written out of order; read back by seq.
	require.NoError(t, s.Record(ctx, rec("b", 2, "counter", "inc", "update")))
	require.NoError(t, s.Record(ctx, rec("c", 3, "counter", "inc", "ack")))
	require.NoError(t, s.Record(ctx, rec("a", 1, "counter", "inc", "update")))

	records, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	var tokens []string
	for _, r := range records {
		tokens = append(tokens, r.Token)
	}
	assert.Equal(t, []string{"a", "b", "c"}, tokens)
}

func TestList_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	failed := rec("d", 4, "settings", "up", "error")
	failed.Error = "HANDLER_FAILED: boom"
	for _, r := range []menu.Record{
		rec("a", 1, "counter", "inc", "update"),
		rec("b", 2, "settings", "up", "update"),
		rec("c", 3, "counter", "inc", "ack"),
		failed,
	} {
		require.NoError(t, s.Record(ctx, r))
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"a", "b", "c", "d"}},
		{"menu", Filter{Menu: "counter"}, []string{"a", "c"}},
		{"token", Filter{Token: "b"}, []string{"b"}},
		{"errors", Filter{ErrorsOnly: true}, []string{"d"}},
		{"limit keeps newest", Filter{Limit: 2}, []string{"c", "d"}},
		{"menu and limit", Filter{Menu: "counter", Limit: 1}, []string{"c"}},
		{"no match", Filter{Menu: "missing"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			tokens := []string{}
			for _, r := range records {
				tokens = append(tokens, r.Token)
			}
			assert.Equal(t, tt.want, tokens)
		})
	}
}

func TestMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.Record(ctx, rec("a", 12, "counter", "inc", "update")))
	require.NoError(t, s.Record(ctx, rec("b", 5, "counter", "inc", "update")))

	seq, err = s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), seq)
}

func TestSummarize(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, r := range []menu.Record{
		rec("a", 1, "counter", "inc", "update"),
		rec("b", 2, "counter", "inc", "update"),
		rec("c", 3, "counter", "inc", "ack"),
		rec("d", 4, "browse", "page.next", "update"),
	} {
		require.NoError(t, s.Record(ctx, r))
	}

	got, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Summary{
		{Menu: "browse", Response: "update", Count: 1},
		{Menu: "counter", Response: "ack", Count: 1},
		{Menu: "counter", Response: "update", Count: 2},
	}, got)
}

func TestStore_AsDispatcherTracer(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	counter := menu.New("counter", func(c *menu.Context) {
		n := menu.State(c, menu.Int, 0)
		c.Textf("%d", n.Get())
		c.Button("inc", "+1", func(context.Context, *menu.Interaction) error {
			n.Set(n.Get() + 1)
			return nil
		})
	})
	reg, err := menu.NewRegistry([]*menu.Menu{counter})
	require.NoError(t, err)
	d := menu.NewDispatcher(reg,
		menu.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		menu.WithTracer(s),
		menu.WithTokens(menu.NewFixedGenerator("t1", "t2")))

	out, err := d.Open(ctx, "counter")
	require.NoError(t, err)
	inc, ok := out.Message.Find("inc")
	require.True(t, ok)

	_, err = d.Dispatch(ctx, menu.Event{ID: inc.ID, Components: out.Message.IDs()})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, menu.Event{ID: "counter:nope:"})
	require.Error(t, err)

	records, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "t1", records[0].Token)
	assert.Equal(t, "update", records[0].Response)
	assert.Equal(t, "counter", records[0].Menu)
	assert.NotEqual(t, records[0].BlobBefore, records[0].BlobAfter)

	assert.Equal(t, "t2", records[1].Token)
	assert.Equal(t, "error", records[1].Response)
	assert.NotEmpty(t, records[1].Error)

	// A dispatcher resuming the log continues its clock.
	seq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
	assert.Equal(t, seq+1, menu.NewClockAt(seq).Next())
}

func TestRecord_ClosedStoreFails(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Close())

	err := s.Record(context.Background(), rec("a", 1, "counter", "inc", "ack"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "write dispatch")
}
