package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "schema", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "customer_id INTEGER NOT NULL UNIQUE")
	assert.Contains(t, migrations[0].SQL, "ON DELETE CASCADE")

	assert.Equal(t, 2, migrations[1].Version)
	assert.Contains(t, migrations[1].SQL, "'Cancelled'")
}

func TestStatements(t *testing.T) {
	sql := `
-- leading comment
CREATE TABLE a (id INT);

-- only a comment;
INSERT INTO a VALUES (1);
`
	stmts := Statements(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES (1)", stmts[1])
}

func TestSchemaStatementsAreSeparated(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	assert.Len(t, Statements(migrations[0].SQL), 6)
}
