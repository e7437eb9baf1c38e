// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/tebeka/atexit"

	"github.com/gogpu/rvt"
)

// SQLiteWriter stores frames in the frames table of a SQLite database.
type SQLiteWriter struct {
	*sql.DB
	statement *sql.Stmt

	path      string
	frames    []rvt.FrameStats
	batchSize int
	closed    bool
}

// NewSQLiteWriter creates a SQLite writer for path.
func NewSQLiteWriter(path string) *SQLiteWriter {
	if path == "" {
		path = defaultPath(".sqlite3")
	}
	return &SQLiteWriter{
		path:      path,
		batchSize: 10000,
	}
}

// Path returns the database file path.
func (w *SQLiteWriter) Path() string { return w.path }

// Init creates the database. It fails if the file already exists.
func (w *SQLiteWriter) Init() error {
	if _, err := os.Stat(w.path); err == nil {
		return fmt.Errorf("trace: file %s already exists", w.path)
	}

	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		return fmt.Errorf("trace: open %s: %w", w.path, err)
	}
	w.DB = db

	if err := w.createTable(); err != nil {
		w.discardDB()
		return err
	}
	if err := w.prepareStatement(); err != nil {
		w.discardDB()
		return err
	}

	rvt.Logger().Info("trace: collecting frames", "path", w.path)
	atexit.Register(func() {
		if err := w.Close(); err != nil {
			rvt.Logger().Error("trace: close at exit", "path", w.path, "err", err)
		}
	})
	return nil
}

// discardDB closes a database whose schema could not be set up.
func (w *SQLiteWriter) discardDB() {
	if err := w.DB.Close(); err != nil {
		rvt.Logger().Warn("trace: close after failed init", "path", w.path, "err", err)
	}
	w.DB = nil
}

func (w *SQLiteWriter) createTable() error {
	_, err := w.Exec(`
		create table frames
		(
			frame         integer not null primary key,
			enabled       boolean not null,
			analyzed      integer not null,
			requests      integer not null,
			updates       integer not null,
			hits          integer not null,
			misses        integer not null,
			deferred      integer not null,
			dropped       integer not null,
			evictions     integer not null,
			render_errors integer not null,
			rewritten     boolean not null,
			write_failed  boolean not null,
			readback      varchar(16) not null,
			resident      integer not null
		);
	`)
	if err != nil {
		return fmt.Errorf("trace: create table: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) prepareStatement() error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := w.Prepare(fmt.Sprintf("insert into frames (%s) values (%s)",
		strings.Join(columns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("trace: prepare insert: %w", err)
	}
	w.statement = stmt
	return nil
}

// Write buffers st.
func (w *SQLiteWriter) Write(st rvt.FrameStats) error {
	w.frames = append(w.frames, st)
	if len(w.frames) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// Flush inserts buffered frames in one transaction.
func (w *SQLiteWriter) Flush() error {
	if len(w.frames) == 0 || w.DB == nil {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return fmt.Errorf("trace: begin: %w", err)
	}
	stmt := tx.Stmt(w.statement)
	for _, st := range w.frames {
		if _, err := stmt.Exec(values(st)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("trace: insert frame %d: %w", st.Frame, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("trace: commit: %w", err)
	}

	w.frames = nil
	return nil
}

// Close flushes and closes the database.
func (w *SQLiteWriter) Close() error {
	if w.closed || w.DB == nil {
		return nil
	}
	w.closed = true
	err := w.Flush()
	if w.statement != nil {
		w.statement.Close()
	}
	if cerr := w.DB.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("trace: close: %w", cerr)
	}
	return err
}
