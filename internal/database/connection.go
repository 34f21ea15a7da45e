package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
)

// Supported database dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DB is the global database connection
var DB *sqlx.DB

var dialect = DialectSQLite

// Dialect reports which backend the current connection uses.
func Dialect() string {
	return dialect
}

// Connect establishes a connection to the database based on environment
// settings: DB_TYPE selects the backend, DATABASE_URL or SQLITE_PATH the target.
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = DialectSQLite
	}

	switch dbType {
	case DialectSQLite:
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %v", err)
			}
			path = filepath.Join(dataDir, "ordbok.db")
		}
		return Open(DialectSQLite, path)
	case DialectPostgres:
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		return Open(DialectPostgres, dsn)
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", dbType)
	}
}

// Open connects with an explicit dialect and DSN and initializes the schema.
// Used by Connect and by tests.
func Open(dbType, dsn string) error {
	switch dbType {
	case DialectSQLite:
		db, err := sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		DB = db
	case DialectPostgres:
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(10)
		DB = db
	default:
		return fmt.Errorf("unsupported dialect: %s", dbType)
	}

	dialect = dbType
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// serialPK returns the autoincrementing primary key column for the dialect.
func serialPK() string {
	if dialect == DialectPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// Create users table
	_, err := DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS users (
			id %s,
			username TEXT NOT NULL UNIQUE,
			total_words_learned INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			total_quizzes_taken INTEGER NOT NULL DEFAULT 0,
			average_quiz_score REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, serialPK()))
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	// Create words table
	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS words (
			id %s,
			swedish TEXT NOT NULL UNIQUE,
			english TEXT NOT NULL,
			word_type TEXT NOT NULL DEFAULT '',
			difficulty_level INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, serialPK()))
	if err != nil {
		return fmt.Errorf("failed to create words table: %v", err)
	}

	// Create user_word_progress table
	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS user_word_progress (
			id %s,
			user_id INTEGER NOT NULL,
			word_id INTEGER NOT NULL,
			mastery_level TEXT NOT NULL DEFAULT 'shown',
			correct_attempts INTEGER NOT NULL DEFAULT 0,
			total_attempts INTEGER NOT NULL DEFAULT 0,
			last_review_date TIMESTAMP,
			next_review_date TIMESTAMP,
			repetition_interval INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (word_id) REFERENCES words(id),
			UNIQUE(user_id, word_id)
		)
	`, serialPK()))
	if err != nil {
		return fmt.Errorf("failed to create user_word_progress table: %v", err)
	}

	// Create quiz_sessions table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			quiz_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'created',
			total_questions INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			score REAL NOT NULL DEFAULT 0,
			time_spent INTEGER,
			completed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create quiz_sessions table: %v", err)
	}

	// Create quiz_answers table
	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS quiz_answers (
			id %s,
			session_id TEXT NOT NULL,
			word_id INTEGER NOT NULL,
			user_answer TEXT NOT NULL DEFAULT '',
			correct_answer TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL DEFAULT false,
			answer_time INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES quiz_sessions(id) ON DELETE CASCADE,
			FOREIGN KEY (word_id) REFERENCES words(id)
		)
	`, serialPK()))
	if err != nil {
		return fmt.Errorf("failed to create quiz_answers table: %v", err)
	}

	// Create learning_streaks table
	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS learning_streaks (
			id %s,
			user_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			words_learned INTEGER NOT NULL DEFAULT 0,
			quizzes_taken INTEGER NOT NULL DEFAULT 0,
			time_spent INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT true,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(user_id, date)
		)
	`, serialPK()))
	if err != nil {
		return fmt.Errorf("failed to create learning_streaks table: %v", err)
	}

	return nil
}
