package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name, charset string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	if charset == "" {
		charset = "utf8mb4"
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	// multiStatements=true lets the migration driver run multi-statement files
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=%s&parseTime=true&loc=UTC&multiStatements=true",
		auth, host, port, name, charset)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
