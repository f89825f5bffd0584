package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

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
		_ = db.Close()
		return nil, fmt.Errorf("ping %s:%s: %w", host, port, err)
	}
	return db, nil
}

// tasksTable stores human tasks created by the reservation process.  The
// activity token is the engine's handle used to resume the waiting activity.
const tasksTable = `CREATE TABLE IF NOT EXISTS tasks (
	id              CHAR(36)     NOT NULL PRIMARY KEY,
	process_id      VARCHAR(255) NOT NULL,
	definition_code VARCHAR(64)  NOT NULL,
	state           VARCHAR(16)  NOT NULL,
	element_values  JSON         NOT NULL,
	activity_token  VARBINARY(2048) NULL,
	created_at      DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at    DATETIME     NULL,
	KEY idx_tasks_process (process_id),
	KEY idx_tasks_state (state)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the tables the worker needs when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, tasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}
