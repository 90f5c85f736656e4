package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/random"
	"log/slog"
	"strings"
)

// schemaObject is a row of sqlite_schema.
type schemaObject struct {
	Type    string `db:"type"`
	Name    string `db:"name"`
	TblName string `db:"tbl_name"`
	SQL     string `db:"sql"`
}

const schemaObjectsQuery = `SELECT type, name, tbl_name, sql
FROM sqlite_schema
WHERE name NOT LIKE 'sqlite_%' AND sql IS NOT NULL
ORDER BY rowid`

// migrateTo ensures that the db schema matches the target schema definition.
//
// We employ a very simple declarative schema migration that:
//
// 1. Deletes deleted tables,
// 2. Creates new tables,
// 3. Migrates changed tables using 12-step schema migration https://www.sqlite.org/lang_altertable.html#otheralter,
// 4. Recreates indexes and triggers whose definition changed.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	// Create schema against a temporary database so that we know what the target looks like.
	var (
		target        []schemaObject
		targetColumns map[string][]string
	)
	if target, targetColumns, err = db.describeTarget(ctx, schemaDefinition); err != nil {
		return errors.Wrap(err, "describe target schema")
	}

	// The pragmas and the transaction have to share one connection.
	var conn *sqlx.Conn
	if conn, err = db.ReadWrite.Connx(ctx); err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "release connection"))
		}
	}()

	// Step 1: Disable foreign key validation temporarily.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	// Step 12: Re-enable foreign key validation.
	defer func() {
		if _, fkErr := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "re-enable foreign key validation"))
		}
	}()

	// Step 2: Start transaction.
	var tx *sqlx.Tx
	if tx, err = conn.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
				errors.SlogError(rollbackErr))
		}
	}()

	// Step 3-7 migrate tables.
	if err = db.migrateTables(ctx, tx, target, targetColumns); err != nil {
		return errors.Wrap(err, "migrate tables")
	}

	// Step 8: Recreate indexes and triggers associated with table if needed.
	// Step 9: Views are not used.
	if err = db.migrateIndexesAndTriggers(ctx, tx, target); err != nil {
		return errors.Wrap(err, "migrate indexes and triggers")
	}

	// Step 10: Check foreign key constraints.
	var violations []string
	if err = tx.SelectContext(ctx, &violations, `SELECT "table" FROM pragma_foreign_key_check`); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations", slog.Any("tables", violations))
	}

	// Step 11: Commit transaction from step 2.
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	// Step 12: is in defer above.

	return nil
}

// describeTarget applies schemaDefinition to a scratch in-memory database and returns its objects and table columns.
func (db *Database) describeTarget(
	ctx context.Context,
	schemaDefinition string,
) ([]schemaObject, map[string][]string, error) {
	var (
		randomID     string
		dbNameLength uint = 20
		err          error
	)
	if randomID, err = random.Letters(dbNameLength); err != nil {
		return nil, nil, errors.Wrap(err, "generate random ID")
	}
	var scratch *sqlx.DB
	if scratch, err = sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory", randomID)); err != nil {
		return nil, nil, errors.Wrap(err, "open schema target database")
	}
	// A private in-memory database lives as long as its only connection.
	scratch.SetMaxOpenConns(1)
	defer func() {
		if closeErr := scratch.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				errors.SlogError(closeErr))
		}
	}()

	if strings.TrimSpace(schemaDefinition) != "" {
		if _, err = scratch.ExecContext(ctx, schemaDefinition); err != nil {
			return nil, nil, errors.Wrap(err, "migrate schema target database")
		}
	}
	var objects []schemaObject
	if err = scratch.SelectContext(ctx, &objects, schemaObjectsQuery); err != nil {
		return nil, nil, errors.Wrap(err, "query target schema")
	}
	columns := make(map[string][]string)
	for _, object := range objects {
		if object.Type != "table" {
			continue
		}
		var names []string
		if err = scratch.SelectContext(ctx, &names, "SELECT name FROM pragma_table_info(?)", object.Name); err != nil {
			return nil, nil, errors.Wrap(err, "query target columns", slog.String("table", object.Name))
		}
		columns[object.Name] = names
	}
	return objects, columns, nil
}

// migrateTables ensures table schema is synchronized between databases.
func (db *Database) migrateTables(
	ctx context.Context,
	tx *sqlx.Tx,
	target []schemaObject,
	targetColumns map[string][]string,
) error {
	var (
		current []schemaObject
		err     error
	)
	if err = tx.SelectContext(ctx, &current, schemaObjectsQuery); err != nil {
		return errors.Wrap(err, "query current schema")
	}
	currentTables := indexByName(current, "table")
	targetTables := indexByName(target, "table")

	// Drop deleted tables.
	for name := range currentTables {
		if _, ok := targetTables[name]; ok {
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", name))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q;", name)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", name))
		}
	}

	for _, object := range target {
		if object.Type != "table" {
			continue
		}
		existing, ok := currentTables[object.Name]

		// Create new tables.
		if !ok {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", object.SQL))
			if _, err = tx.ExecContext(ctx, object.SQL); err != nil {
				return errors.Wrap(err, "create table", slog.String("table", object.Name))
			}
			continue
		}
		if existing.SQL == object.SQL {
			continue
		}

		db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
			slog.String("table", object.Name),
			slog.String("current_sql", existing.SQL),
			slog.String("new_sql", object.SQL))

		// Step 4: Create tables according to new schema on temporary names.
		tempName := object.Name + "_migration_temp"
		tempNameSQL := strings.Replace(object.SQL, object.Name, tempName, 1)
		if _, err = tx.ExecContext(ctx, tempNameSQL); err != nil {
			return errors.Wrap(err, "create new table to temporary name", slog.String("query", tempNameSQL))
		}

		// Step 5: Copy common columns between tables.
		var currentColumns []string
		if err = tx.SelectContext(ctx, &currentColumns, "SELECT name FROM pragma_table_info(?)",
			object.Name); err != nil {
			return errors.Wrap(err, "query current columns")
		}
		if common := commonColumns(currentColumns, targetColumns[object.Name]); common != "" {
			copySQL := fmt.Sprintf("INSERT INTO %q (%s) SELECT %s FROM %q;", tempName, common, common, object.Name)
			db.logger.LogAttrs(ctx, slog.LevelInfo, "copying data", slog.String("query", copySQL))
			if _, err = tx.ExecContext(ctx, copySQL); err != nil {
				return errors.Wrap(err, "copy data")
			}
		}

		// Step 6: Drop the old table.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q;", object.Name)); err != nil {
			return errors.Wrap(err, "drop old table")
		}

		// Step 7: Rename new table to old table's name.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %q RENAME TO %q;", tempName, object.Name)); err != nil {
			return errors.Wrap(err, "rename new table")
		}
	}
	return nil
}

// migrateIndexesAndTriggers drops indexes and triggers that are missing from or differ in the target and creates
// the ones that do not exist yet.
func (db *Database) migrateIndexesAndTriggers(ctx context.Context, tx *sqlx.Tx, target []schemaObject) error {
	var (
		current []schemaObject
		err     error
	)
	if err = tx.SelectContext(ctx, &current, schemaObjectsQuery); err != nil {
		return errors.Wrap(err, "query current schema")
	}
	targetByName := make(map[string]schemaObject)
	for _, object := range target {
		if object.Type == "index" || object.Type == "trigger" {
			targetByName[object.Name] = object
		}
	}
	present := make(map[string]bool)
	for _, object := range current {
		if object.Type != "index" && object.Type != "trigger" {
			continue
		}
		if wanted, ok := targetByName[object.Name]; ok && wanted.SQL == object.SQL {
			present[object.Name] = true
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping "+object.Type, slog.String("name", object.Name))
		stmt := fmt.Sprintf("DROP %s IF EXISTS %q;", strings.ToUpper(object.Type), object.Name)
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "drop "+object.Type, slog.String("name", object.Name))
		}
	}
	for _, object := range target {
		if (object.Type != "index" && object.Type != "trigger") || present[object.Name] {
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating "+object.Type, slog.String("query", object.SQL))
		if _, err = tx.ExecContext(ctx, object.SQL); err != nil {
			return errors.Wrap(err, "create "+object.Type, slog.String("name", object.Name))
		}
	}
	return nil
}

func indexByName(objects []schemaObject, objectType string) map[string]schemaObject {
	byName := make(map[string]schemaObject)
	for _, object := range objects {
		if object.Type == objectType {
			byName[object.Name] = object
		}
	}
	return byName
}

// commonColumns returns the quoted, comma separated columns present in both lists.
func commonColumns(current, target []string) string {
	in := make(map[string]bool, len(target))
	for _, c := range target {
		in[c] = true
	}
	var quoted []string
	for _, c := range current {
		if in[c] {
			// We wrap the column names in with double quotes to handle column names that are SQLite keywords.
			quoted = append(quoted, fmt.Sprintf("%q", c))
		}
	}
	return strings.Join(quoted, ", ")
}
