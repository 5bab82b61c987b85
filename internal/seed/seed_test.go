package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpad/internal/engine"
	"github.com/leapstack-labs/sqlpad/internal/testutil"
)

func TestApplyAndReset(t *testing.T) {
	ctx := context.Background()
	db, err := engine.Open(filepath.Join(t.TempDir(), "seed.db"), testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, Apply(ctx, db.SQL()))

	version, err := Version(ctx, db.SQL())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"departments", "employees"}, tables, "goose bookkeeping is hidden")

	n, err := db.CountRows(ctx, "employees")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// Applying again is a no-op.
	require.NoError(t, Apply(ctx, db.SQL()))
	n, err = db.CountRows(ctx, "departments")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, Reset(ctx, db.SQL()))
	tables, err = db.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}
