package service

import (
	"path/filepath"
	"testing"

	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/internal/folio/store/drivers/sqlite"
	"github.com/foliokit/folio/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

// Low-cost argon2 parameters keep the suite fast.
var testHash = cryptox.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1}

// newTestStore opens a migrated sqlite store on a throwaway file. A file DSN
// (not :memory:) so concurrent transactions in the redeem tests behave like
// production.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "folio_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}
