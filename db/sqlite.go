package db

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	Path string
	Conn *sql.DB
	sqlHelper
}

func (d *SQLite) Connect() error {
	conn, err := sql.Open("sqlite3", d.Path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return errors.Wrap(err, "error connectant a SQLite")
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return errors.Wrapf(err, "error obrint %s", d.Path)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)
	d.Conn = conn
	d.sqlHelper = newSQLHelper(conn, "sqlite", "CURRENT_TIMESTAMP")
	logInfof("Conectat a SQLite: %s", d.Path)
	return nil
}
