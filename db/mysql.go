package db

import (
	"database/sql"
	"fmt"

	"github.com/cockroachdb/errors"
	_ "github.com/go-sql-driver/mysql"
)

type MySQL struct {
	Host   string
	Port   string
	User   string
	Pass   string
	DBName string
	Conn   *sql.DB
	sqlHelper
}

func (d *MySQL) Connect() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4", d.User, d.Pass, d.Host, d.Port, d.DBName)
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return errors.Wrap(err, "error connectant a MySQL")
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return errors.Wrap(err, "error connectant a MySQL")
	}
	d.Conn = conn
	d.sqlHelper = newSQLHelper(conn, "mysql", "NOW()")
	logInfof("Conectat a MySQL")
	return nil
}
