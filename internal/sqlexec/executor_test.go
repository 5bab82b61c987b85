package sqlexec

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpad/internal/engine"
	"github.com/leapstack-labs/sqlpad/internal/testutil"
)

// setupEngine opens an in-memory database and runs the given statements.
func setupEngine(t *testing.T, stmts ...string) *engine.DB {
	t.Helper()
	db, err := engine.Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range stmts {
		_, err := db.Exec(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

func expectTotalChanges(mock sqlmock.Sqlmock, n int64) {
	mock.ExpectQuery(`SELECT total_changes\(\)`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(n))
}

func newTestExecutor(t *testing.T, eng Engine) *Executor {
	t.Helper()
	return NewExecutor(eng, testutil.NewTestLogger(t))
}

func TestExecute_Select(t *testing.T) {
	db := setupEngine(t,
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (name) VALUES ('alice'), ('bob')",
	)
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "select * from users order by id")

	qr, ok := res.(QueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "2 rows retrieved.", qr.Message)
	require.Len(t, qr.Data, 2)
	assert.Equal(t, []any{int64(2), "bob"}, qr.Data[1].Values)
	assert.Equal(t, http.StatusOK, res.StatusCode())
}

func TestExecute_SelectError(t *testing.T) {
	e := newTestExecutor(t, setupEngine(t))

	res := e.Execute(context.Background(), "SELECT * FROM ghosts")

	er, ok := res.(ErrorResult)
	require.True(t, ok, "got %T", res)
	assert.Contains(t, er.Message, "SQL ERROR: ")
	assert.Contains(t, er.Message, "no such table: ghosts")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode())
}

func TestExecute_EmptyNeverReachesEngine(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	e := newTestExecutor(t, engine.New(sqlDB, nil))

	for _, input := range []string{"", "   ", "\n\t"} {
		res := e.Execute(context.Background(), input)
		er, ok := res.(ErrorResult)
		require.True(t, ok, "got %T", res)
		assert.Equal(t, "Query cannot be empty.", er.Message)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode())
	}
	assert.NoError(t, mock.ExpectationsWereMet(), "no statement may reach the engine")
}

func TestExecute_InsertCapturesBeforeAndAfter(t *testing.T) {
	db := setupEngine(t,
		"CREATE TABLE items (id INTEGER PRIMARY KEY, label VARCHAR(20))",
		"INSERT INTO items (label) VALUES ('one')",
	)
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "INSERT INTO items (label) VALUES ('two'), ('three')")

	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T: %+v", res, res)
	assert.Equal(t, "INSERT executed successfully.", dq.Message)
	assert.Equal(t, int64(2), dq.AffectedRows)

	assert.Len(t, dq.PreviousData.Rows, 1)
	assert.Len(t, dq.UpdatedData.Rows, 3)

	wantColumns := []ColumnDescriptor{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "label", Type: "VARCHAR", PrimaryKey: false},
	}
	assert.Equal(t, wantColumns, dq.PreviousData.Columns)
	assert.Equal(t, wantColumns, dq.UpdatedData.Columns)
}

func TestExecute_SnapshotsAreIndependent(t *testing.T) {
	db := setupEngine(t,
		"CREATE TABLE c (n INTEGER)",
		"INSERT INTO c VALUES (1)",
	)
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "DELETE FROM c")

	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "DELETE executed successfully.", dq.Message)
	require.Len(t, dq.PreviousData.Rows, 1)
	assert.Equal(t, []any{int64(1)}, dq.PreviousData.Rows[0].Values)
	assert.Empty(t, dq.UpdatedData.Rows)
	assert.NotNil(t, dq.UpdatedData.Rows)
}

func TestExecute_CreateTableOnMissingTable(t *testing.T) {
	e := newTestExecutor(t, setupEngine(t))

	res := e.Execute(context.Background(), "CREATE TABLE foo(id INTEGER PRIMARY KEY, title varchar(100))")

	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T: %+v", res, res)
	assert.Equal(t, "Table 'foo' created successfully.", dq.Message)
	assert.Equal(t, EmptySnapshot(), dq.PreviousData)
	assert.Empty(t, dq.UpdatedData.Rows)
	assert.Equal(t, []ColumnDescriptor{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "title", Type: "VARCHAR"},
	}, dq.UpdatedData.Columns)
}

func TestExecute_MutationOnMissingTableFails(t *testing.T) {
	e := newTestExecutor(t, setupEngine(t))

	res := e.Execute(context.Background(), "INSERT INTO nowhere VALUES (1)")

	er, ok := res.(ErrorResult)
	require.True(t, ok, "got %T", res)
	assert.Contains(t, er.Message, "SQL ERROR: ")
	assert.Contains(t, er.Message, "no such table: nowhere")
	assert.Equal(t, http.StatusInternalServerError, er.StatusCode())
}

func TestExecute_MalformedStatement(t *testing.T) {
	db := setupEngine(t, "CREATE TABLE t (a INT)")
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "INSERT INTO t VALUES (")

	er, ok := res.(ErrorResult)
	require.True(t, ok, "got %T", res)
	assert.Contains(t, er.Message, "SQL ERROR: ")
	assert.Equal(t, http.StatusInternalServerError, er.StatusCode())
}

func TestExecute_DropAndAlter(t *testing.T) {
	db := setupEngine(t,
		"CREATE TABLE gone (a INT)",
		"INSERT INTO gone VALUES (7)",
		"CREATE TABLE grows (a INT)",
	)
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "ALTER TABLE grows ADD COLUMN b TEXT")
	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "Table 'grows' altered successfully.", dq.Message)
	assert.Len(t, dq.PreviousData.Columns, 1)
	assert.Len(t, dq.UpdatedData.Columns, 2)

	res = e.Execute(context.Background(), "DROP TABLE gone")
	dq, ok = res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "Table 'gone' dropped successfully.", dq.Message)
	assert.Len(t, dq.PreviousData.Rows, 1)
	assert.Equal(t, EmptySnapshot(), dq.UpdatedData)
}

func TestExecute_SchemaChangesAffectNoRows(t *testing.T) {
	db := setupEngine(t, "CREATE TABLE a (x INT)")
	e := newTestExecutor(t, db)
	ctx := context.Background()

	res := e.Execute(ctx, "INSERT INTO a VALUES (1), (2), (3)")
	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	require.Equal(t, int64(3), dq.AffectedRows)

	for _, stmt := range []string{
		"CREATE TABLE b (y INT)",
		"DROP TABLE b",
		"ALTER TABLE a ADD COLUMN z TEXT",
	} {
		res := e.Execute(ctx, stmt)
		dq, ok := res.(DualQueryResult)
		require.True(t, ok, "%s: got %T", stmt, res)
		assert.Equal(t, int64(0), dq.AffectedRows, stmt)

		got, err := json.Marshal(res)
		require.NoError(t, err)
		assert.Contains(t, string(got), `"affectedRows":0`, stmt)
	}
}

func TestExecute_DateValuesMatchStoredText(t *testing.T) {
	db := setupEngine(t, "CREATE TABLE shifts (id INTEGER PRIMARY KEY, day DATE)")
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "INSERT INTO shifts (day) VALUES ('2024-01-02')")
	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	require.Len(t, dq.UpdatedData.Rows, 1)
	assert.Equal(t, []any{int64(1), "2024-01-02"}, dq.UpdatedData.Rows[0].Values)

	res = e.Execute(context.Background(), "SELECT day FROM shifts")
	qr, ok := res.(QueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, []any{"2024-01-02"}, qr.Data[0].Values)
}

func TestExecute_StatementWithoutTable(t *testing.T) {
	db := setupEngine(t, "CREATE TABLE people (age INT)", "INSERT INTO people VALUES (1)")
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "UPDATE people SET age = 2")
	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "UPDATE executed successfully.", dq.Message)
	assert.Equal(t, EmptySnapshot(), dq.PreviousData)
	assert.Equal(t, EmptySnapshot(), dq.UpdatedData)
	assert.Equal(t, int64(1), dq.AffectedRows)

	res = e.Execute(context.Background(), "PRAGMA table_info(people)")
	dq, ok = res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "PRAGMA executed successfully.", dq.Message)
}

func TestExecute_CreateWithoutTableNameUsesVerb(t *testing.T) {
	db := setupEngine(t, "CREATE TABLE t (a INT)")
	e := newTestExecutor(t, db)

	res := e.Execute(context.Background(), "CREATE INDEX idx_a ON t(a)")
	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "CREATE executed successfully.", dq.Message)
}

func TestExecute_ExecFailureAfterSnapshot(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	mock.ExpectQuery(`SELECT \* FROM "t"`).WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1))
	mock.ExpectQuery(`PRAGMA table_info\("t"\)`).WillReturnRows(
		sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "a", "int", 0, nil, 0))
	expectTotalChanges(mock, 0)
	mock.ExpectExec("DELETE FROM t").WillReturnError(assert.AnError)

	e := newTestExecutor(t, engine.New(sqlDB, nil))
	res := e.Execute(context.Background(), "DELETE FROM t")

	er, ok := res.(ErrorResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "SQL ERROR: "+assert.AnError.Error(), er.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_BeforeSnapshotOtherFailureIsSwallowed(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	mock.ExpectQuery(`SELECT \* FROM "t"`).WillReturnError(assert.AnError)
	expectTotalChanges(mock, 0)
	mock.ExpectExec("DELETE FROM t").WillReturnResult(sqlmock.NewResult(0, 3))
	expectTotalChanges(mock, 3)
	mock.ExpectQuery(`SELECT \* FROM "t"`).WillReturnRows(sqlmock.NewRows([]string{"a"}))
	mock.ExpectQuery(`PRAGMA table_info\("t"\)`).WillReturnRows(
		sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "a", "int", 0, nil, 0))

	e := newTestExecutor(t, engine.New(sqlDB, nil))
	res := e.Execute(context.Background(), "DELETE FROM t")

	dq, ok := res.(DualQueryResult)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, EmptySnapshot(), dq.PreviousData)
	assert.Equal(t, int64(3), dq.AffectedRows)
	assert.Equal(t, []ColumnDescriptor{{Name: "a", Type: "INT"}}, dq.UpdatedData.Columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResult_JSON(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "query",
			result: QueryResult{Message: "0 rows retrieved."},
			want:   `{"type":"query","message":"0 rows retrieved.","data":[]}`,
		},
		{
			name: "dual query",
			result: DualQueryResult{
				Message:      "Table 't' created successfully.",
				PreviousData: EmptySnapshot(),
				UpdatedData: TableSnapshot{
					Rows:    []engine.Row{{Columns: []string{"a"}, Values: []any{int64(1)}}},
					Columns: []ColumnDescriptor{{Name: "a", Type: "INT", PrimaryKey: true}},
				},
			},
			want: `{"type":"dual_query","message":"Table 't' created successfully.",` +
				`"previousData":{"rows":[],"columns":[]},` +
				`"updatedData":{"rows":[{"a":1}],"columns":[{"name":"a","type":"INT","pk":true}]},` +
				`"affectedRows":0}`,
		},
		{
			name:   "error",
			result: ErrorResult{Message: "SQL ERROR: boom", Status: http.StatusInternalServerError},
			want:   `{"type":"error","message":"SQL ERROR: boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.result)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.Equal(t, tt.name != "error", tt.result.Type() != TypeError)
		})
	}
}

func TestErrorResult_DefaultStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrorResult{Message: "x"}.StatusCode())
}
