package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			task_id         INTEGER PRIMARY KEY AUTOINCREMENT,
			task_name       VARCHAR(255) NOT NULL,
			task_time_start TIME NOT NULL,
			task_time_end   TIME NOT NULL,
			task_color      CHAR(7) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_start ON tasks(task_time_start);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}

	return nil
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		task_id         BIGSERIAL PRIMARY KEY,
		task_name       VARCHAR(255) NOT NULL,
		task_time_start CHAR(5) NOT NULL,
		task_time_end   CHAR(5) NOT NULL,
		task_color      CHAR(7) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_start ON tasks(task_time_start);
`
