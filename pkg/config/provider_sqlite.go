package config

import (
	"database/sql"
	"fmt"

	"gopkg.in/yaml.v2"
	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database.
// Scalar settings live in a key/value table; the classification ruleset is
// relational with each rule's predicate tree stored as YAML.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	settings, err := s.loadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if raw, ok := settings["config"]; ok {
		if err := yaml.Unmarshal([]byte(raw), config); err != nil {
			return nil, fmt.Errorf("failed to parse stored config: %w", err)
		}
	}

	rules, err := s.loadRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load classification rules: %w", err)
	}
	if len(rules) > 0 {
		config.Classification.Rules = rules
	}
	return config, nil
}

func (s *SQLiteProvider) loadSettings() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

func (s *SQLiteProvider) loadRules() ([]RuleData, error) {
	rows, err := s.db.Query(`
		SELECT name, priority, class, predicate
		FROM classification_rules
		ORDER BY priority, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []RuleData
	for rows.Next() {
		var rd RuleData
		var predicate string
		if err := rows.Scan(&rd.Name, &rd.Priority, &rd.Class, &predicate); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal([]byte(predicate), &rd.When); err != nil {
			return nil, fmt.Errorf("rule %q: %w", rd.Name, err)
		}
		rules = append(rules, rd)
	}
	return rules, rows.Err()
}

// SaveConfig writes the configuration back to the database, replacing the
// stored document and ruleset.
func (s *SQLiteProvider) SaveConfig(config *ConfigData) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}

	doc := *config
	rules := doc.Classification.Rules
	doc.Classification.Rules = nil
	raw, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES ('config', ?)`, string(raw)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM classification_rules`); err != nil {
		return err
	}
	for _, rd := range rules {
		predicate, err := yaml.Marshal(rd.When)
		if err != nil {
			return fmt.Errorf("rule %q: %w", rd.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO classification_rules (name, priority, class, predicate) VALUES (?, ?, ?, ?)`,
			rd.Name, rd.Priority, rd.Class, string(predicate),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteProvider) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS classification_rules (
			name      TEXT PRIMARY KEY,
			priority  INTEGER NOT NULL,
			class     TEXT NOT NULL,
			predicate TEXT NOT NULL
		);
	`)
	return err
}

// IsReadOnly reports that SQLite configurations support writes
func (s *SQLiteProvider) IsReadOnly() bool { return false }

// Close closes the database connection
func (s *SQLiteProvider) Close() error { return s.db.Close() }
