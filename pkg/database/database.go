package database

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"emperror.dev/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// KnownTables are the tables whose row counts are part of the debug infos.
var KnownTables = []string{
	"SEARCH",
	"SEARCHRESULT",
	"INDEXERSEARCH",
	"INDEXERAPIACCESS",
	"INDEXERAPIACCESS_SHORT",
	"INDEXERNZBDOWNLOAD",
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DB gives raw access to the application's embedded database.
type DB struct {
	db   *sqlx.DB
	path string
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to connect to database %s", path)
	}
	return &DB{db: db, path: path}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Path is the database file location.
func (d *DB) Path() string {
	return d.path
}

// CountRows returns the number of rows in table.
func (d *DB) CountRows(ctx context.Context, table string) (int64, error) {
	if !identifier.MatchString(table) {
		return 0, errors.Errorf("invalid table name %q", table)
	}
	var count int64
	if err := d.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, errors.Wrapf(err, "failed to count rows of %s", table)
	}
	return count, nil
}

// ExecuteSQLQuery runs query and returns the result as CSV with a header row.
func (d *DB) ExecuteSQLQuery(ctx context.Context, query string) (string, error) {
	log.Infof("Executing SQL query %q and returning as CSV", query)

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx, query)
	if err != nil {
		return "", errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return "", errors.Wrap(err, "failed to scan row")
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	if err := rows.Close(); err != nil {
		return "", err
	}
	return buf.String(), tx.Commit()
}

// ExecuteSQLUpdate runs stmt and returns the number of affected rows.
func (d *DB) ExecuteSQLUpdate(ctx context.Context, stmt string) (string, error) {
	log.Infof("Executing SQL query %q", stmt)

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		return "", errors.Wrap(err, "update failed")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return strconv.FormatInt(affected, 10), nil
}

func formatValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(value)
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return fmt.Sprint(value)
	}
}
