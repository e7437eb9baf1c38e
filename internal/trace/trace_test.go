// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"database/sql"
	"encoding/csv"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gogpu/rvt"
	"github.com/gogpu/rvt/feedback"
)

func frame(n int) rvt.FrameStats {
	return rvt.FrameStats{
		Frame:     n,
		Enabled:   true,
		Analyzed:  10 * n,
		Requests:  10 * n,
		Updates:   n,
		Hits:      n - 1,
		Misses:    1,
		Evictions: n % 2,
		Rewritten: true,
		Readback:  feedback.InFlight,
		Resident:  n,
	}
}

var _ = Describe("New", func() {
	It("should pick the writer by kind", func() {
		w, err := New("csv", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(w).To(BeAssignableToTypeOf(&CSVWriter{}))
		Expect(w.Path()).To(HavePrefix("rvt_trace_"))
		Expect(w.Path()).To(HaveSuffix(".csv"))

		w, err = New("sqlite", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Path()).To(HaveSuffix(".sqlite3"))
	})

	It("should name every default file uniquely", func() {
		a, b := NewCSVWriter(""), NewCSVWriter("")
		Expect(a.Path()).NotTo(Equal(b.Path()))
	})

	It("should reject unknown kinds", func() {
		_, err := New("parquet", "")
		Expect(err).To(MatchError(ErrUnknownKind))
	})
})

var _ = Describe("CSVWriter", func() {
	var (
		dir string
		w   *CSVWriter
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "rvt_trace")
		Expect(err).NotTo(HaveOccurred())
		w = NewCSVWriter(filepath.Join(dir, "frames.csv"))
		Expect(w.Init()).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	readAll := func() [][]string {
		f, err := os.Open(w.Path())
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		return rows
	}

	It("should write a header and one row per frame", func() {
		for n := 1; n <= 3; n++ {
			Expect(w.Write(frame(n))).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())

		rows := readAll()
		Expect(rows).To(HaveLen(4))
		Expect(rows[0]).To(Equal(columns))
		Expect(rows[2][0]).To(Equal("2"))
		Expect(rows[2][13]).To(Equal("InFlight"))
	})

	It("should hold frames until flushed", func() {
		Expect(w.Write(frame(1))).To(Succeed())
		Expect(readAll()).To(HaveLen(1))

		Expect(w.Flush()).To(Succeed())
		Expect(readAll()).To(HaveLen(2))
	})

	It("should flush when the buffer fills", func() {
		w.bufferSize = 2
		Expect(w.Write(frame(1))).To(Succeed())
		Expect(w.Write(frame(2))).To(Succeed())
		Expect(readAll()).To(HaveLen(3))
	})

	It("should tolerate repeated Close", func() {
		Expect(w.Close()).To(Succeed())
		Expect(w.Close()).To(Succeed())
	})
})

var _ = Describe("SQLiteWriter", func() {
	var (
		dir string
		w   *SQLiteWriter
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "rvt_trace")
		Expect(err).NotTo(HaveOccurred())
		w = NewSQLiteWriter(filepath.Join(dir, "frames.sqlite3"))
		Expect(w.Init()).To(Succeed())
	})

	AfterEach(func() {
		Expect(w.Close()).To(Succeed())
		os.RemoveAll(dir)
	})

	It("should insert buffered frames on flush", func() {
		for n := 1; n <= 5; n++ {
			Expect(w.Write(frame(n))).To(Succeed())
		}
		Expect(w.Flush()).To(Succeed())

		var count, evictions int
		Expect(w.QueryRow("select count(*), sum(evictions) from frames").Scan(&count, &evictions)).To(Succeed())
		Expect(count).To(Equal(5))
		Expect(evictions).To(Equal(3))

		var readback string
		Expect(w.QueryRow("select readback from frames where frame = 4").Scan(&readback)).To(Succeed())
		Expect(readback).To(Equal("InFlight"))
	})

	It("should persist frames on Close", func() {
		Expect(w.Write(frame(1))).To(Succeed())
		Expect(w.Close()).To(Succeed())

		db, err := sql.Open("sqlite3", w.Path())
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		var count int
		Expect(db.QueryRow("select count(*) from frames").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("should refuse to overwrite an existing database", func() {
		other := NewSQLiteWriter(w.Path())
		err := other.Init()
		Expect(err).To(HaveOccurred())
		Expect(strings.Contains(err.Error(), "already exists")).To(BeTrue())
	})

	It("should release the database when the schema cannot be created", func() {
		other := NewSQLiteWriter(filepath.Join(dir, "missing", "frames.sqlite3"))
		Expect(other.Init()).NotTo(Succeed())
		Expect(other.DB).To(BeNil())
		Expect(other.Close()).To(Succeed())
	})

	It("should reject duplicate frames", func() {
		Expect(w.Write(frame(1))).To(Succeed())
		Expect(w.Write(frame(1))).To(Succeed())
		Expect(w.Flush()).NotTo(Succeed())
		w.frames = nil
	})
})

var _ = Describe("Exit", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "rvt_trace")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	// exitWith runs TestExitHelper in a child process, which buffers three
	// frames and leaves through atexit.Exit without closing the writer.
	exitWith := func(kind, path string) {
		cmd := exec.Command(os.Args[0], "-test.run=^TestExitHelper$")
		cmd.Env = append(os.Environ(), exitHelperEnv+"="+kind+"="+path)
		out, err := cmd.CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), string(out))
	}

	It("should flush buffered CSV rows at exit", func() {
		path := filepath.Join(dir, "frames.csv")
		exitWith("csv", path)

		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(4))
		Expect(records[3][0]).To(Equal("3"))
	})

	It("should flush buffered SQLite rows at exit", func() {
		path := filepath.Join(dir, "frames.sqlite3")
		exitWith("sqlite", path)

		db, err := sql.Open("sqlite3", path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		var count int
		Expect(db.QueryRow("select count(*) from frames").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(3))
	})
})
