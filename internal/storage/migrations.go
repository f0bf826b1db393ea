package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Users table
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT UNIQUE NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'member',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			-- Clients table
			CREATE TABLE IF NOT EXISTS clients (
				id TEXT PRIMARY KEY,
				name TEXT UNIQUE NOT NULL,
				contact_email TEXT,
				contact_phone TEXT,
				note TEXT,
				created_at DATETIME NOT NULL
			);

			-- Projects table. The (client_id, name) unique index with NOCASE
			-- collation is the storage backstop for the case-insensitive
			-- unique-name invariant checked by the domain services.
			CREATE TABLE IF NOT EXISTS projects (
				id TEXT PRIMARY KEY,
				client_id TEXT NOT NULL,
				name TEXT NOT NULL COLLATE NOCASE,
				description TEXT,
				start_date TEXT,
				deadline TEXT,
				status TEXT NOT NULL DEFAULT 'active',
				created_at DATETIME NOT NULL,
				FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE,
				UNIQUE (client_id, name)
			);

			-- Project-User junction table (many-to-many membership)
			CREATE TABLE IF NOT EXISTS project_members (
				project_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				PRIMARY KEY (project_id, user_id),
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Tasks table. Deleting the assignee clears the assignment
			-- instead of deleting the task.
			CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT,
				assignee_id TEXT,
				status TEXT NOT NULL DEFAULT 'todo',
				estimate_hours NUMERIC NOT NULL DEFAULT 0,
				due_date TEXT,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (assignee_id) REFERENCES users(id) ON DELETE SET NULL
			);

			-- Time entries table
			CREATE TABLE IF NOT EXISTS time_entries (
				id TEXT PRIMARY KEY,
				task_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				date TEXT NOT NULL,
				hours NUMERIC NOT NULL,
				note TEXT,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Refresh tokens table
			CREATE TABLE IF NOT EXISTS refresh_tokens (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				token_hash TEXT UNIQUE NOT NULL,
				expires_at DATETIME NOT NULL,
				created_at DATETIME NOT NULL,
				revoked INTEGER NOT NULL DEFAULT 0,
				revoked_at DATETIME,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Indexes
			CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
			CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
			CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id);
			CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
			CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);
			CREATE INDEX IF NOT EXISTS idx_time_entries_task ON time_entries(task_id);
			CREATE INDEX IF NOT EXISTS idx_time_entries_user ON time_entries(user_id);
			CREATE INDEX IF NOT EXISTS idx_time_entries_date ON time_entries(date);
			CREATE INDEX IF NOT EXISTS idx_refresh_tokens_hash ON refresh_tokens(token_hash);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	// Create migrations table if not exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	// Apply pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		// Run migration in transaction
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		_, err = tx.Exec(m.Up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d (%s): %w", m.Version, m.Name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
