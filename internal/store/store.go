// Package store persists feature tables and frame exports under a base
// data directory. Tables live in a sqlite database keyed by session name;
// the CSV round-trip in package annotate remains the interchange format.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kvanlaer/ndview/internal/annotate"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) dbPath() string {
	return filepath.Join(s.baseDir, "ndview.db")
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.dbPath())
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS features (
		session     TEXT    NOT NULL,
		frame_index INTEGER NOT NULL,
		feature_id  INTEGER NOT NULL,
		x           REAL    NOT NULL,
		y           REAL    NOT NULL,
		visible     INTEGER NOT NULL,
		PRIMARY KEY (session, frame_index, feature_id)
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SaveTable replaces the stored table for session.
func (s *Store) SaveTable(session string, t *annotate.Table) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM features WHERE session = ?`, session); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO features
		(session, frame_index, feature_id, x, y, visible)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.Rows() {
		visible := 0
		if row.Feature.Visible {
			visible = 1
		}
		_, err := stmt.Exec(session, row.Frame, row.Feature.ID,
			row.Feature.X, row.Feature.Y, visible)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadTable reads the table stored for session; a session with no rows
// yields an empty table.
func (s *Store) LoadTable(session string) (*annotate.Table, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT frame_index, feature_id, x, y, visible
		FROM features WHERE session = ? ORDER BY frame_index, feature_id`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := annotate.NewTable()
	for rows.Next() {
		var frame int
		var id int64
		var x, y float64
		var visible int
		if err := rows.Scan(&frame, &id, &x, &y, &visible); err != nil {
			return nil, err
		}
		t.Insert(frame, annotate.Feature{ID: id, X: x, Y: y, Visible: visible != 0})
	}
	return t, rows.Err()
}

// Sessions lists the stored session names.
func (s *Store) Sessions() ([]string, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT DISTINCT session FROM features ORDER BY session`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// FeatureCSVPath returns where the session's CSV export lands.
func (s *Store) FeatureCSVPath(session string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_features.csv", session))
}

// ExportFeatureCSV writes the session CSV next to the database and
// returns its path.
func (s *Store) ExportFeatureCSV(session string, t *annotate.Table) (string, error) {
	path := s.FeatureCSVPath(session)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := annotate.ExportCSV(f, t); err != nil {
		return "", err
	}
	return path, nil
}
