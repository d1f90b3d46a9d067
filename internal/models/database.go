package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the SQLite database and configures the connection pool.
func Connect(dsn string) error {
	config := &gorm.Config{
		Logger: &logger{
			Logger: log.Logger,
		},
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
	}

	// Migration with foreign keys disabled since sqlite does not support
	// ALTER COLUMN: tables are copied to a temporary table, then the table
	// is dropped and recreated
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	// Close the connection
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.Close()

	// Now, reconnect with foreign keys enabled
	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	db, err = gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err = db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	// It also serializes concurrent transactions touching the same budget,
	// which the rollup maintainer relies on.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	// Query callbacks
	err = db.Callback().Query().After("*").Register("nexus:after_query", queryCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Query().After("*").Register("nexus:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	// Create callbacks
	err = db.Callback().Create().After("*").Register("nexus:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("nexus:after_create_general", generalCallback)
	if err != nil {
		return err
	}

	// Update callbacks. The append-only guard runs before gorm builds the
	// statement so that no UPDATE against the ledger tables ever reaches
	// the database, no matter which code path issued it.
	err = db.Callback().Update().Before("gorm:update").Register("nexus:append_only_update", appendOnlyCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("nexus:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("nexus:after_update_general", generalCallback)
	if err != nil {
		return err
	}

	// Delete callbacks
	err = db.Callback().Delete().Before("gorm:delete").Register("nexus:append_only_delete", appendOnlyCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Delete().After("*").Register("nexus:after_delete_general", generalCallback)
	if err != nil {
		return err
	}

	// Set the exported variable
	DB = db

	return nil
}

// appendOnlyTables are the ledger tables that record immutable financial
// facts. Their rows are never updated or deleted, corrections happen through
// balanced journals.
var appendOnlyTables = map[string]bool{
	"entries":     true,
	"allocations": true,
}

// appendOnlyCallback is the storage-level line of defense for the ledger:
// the service layer already rejects updates and deletes, this rejects them
// for every other write path, too.
func appendOnlyCallback(db *gorm.DB) {
	if appendOnlyTables[db.Statement.Table] {
		_ = db.AddError(ErrAppendOnlyViolation)
	}
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// Category names need to be unique between siblings
	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: categories.name, categories.parent_id, categories.item_project_id") {
		db.Error = ErrCategoryNameNotUnique
	}

	// The leaf amount check constraint is the storage-level twin of the
	// rollup maintainer's invariant. If it fires, a write path bypassed
	// the maintainer, which is a bug.
	if strings.Contains(db.Error.Error(), "CHECK constraint failed: amount_only_on_leaves") {
		log.Error().Msg("amount_leaf write on a non-leaf category blocked by the storage constraint, this is a bug")
		db.Error = ErrGeneral
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// A general error where we cannot provide more useful information to the end user
		// We log the error and provide a general error message so that server admins can debug
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(FundingSource{}, ItemProject{}, Category{}, Entry{}, Allocation{}, JournalEntry{}, JournalPosting{})
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
