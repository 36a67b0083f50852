package db

import (
	"database/sql"
	"fmt"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"
)

type PostgreSQL struct {
	Host   string
	Port   string
	User   string
	Pass   string
	DBName string
	Conn   *sql.DB
	sqlHelper
}

func (p *PostgreSQL) Connect() error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Pass, p.DBName)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return errors.Wrap(err, "error connectant a PostgreSQL")
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return errors.Wrap(err, "error connectant a PostgreSQL")
	}
	p.Conn = conn
	p.sqlHelper = newSQLHelper(conn, "postgres", "NOW()")
	logInfof("Conectat a PostgreSQL")
	return nil
}
