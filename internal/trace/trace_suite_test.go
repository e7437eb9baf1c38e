// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tebeka/atexit"
)

const exitHelperEnv = "RVT_TRACE_EXIT"

func TestTrace(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Trace Suite")
}

// TestExitHelper is the child process of the Exit specs. It writes frames
// that stay buffered and exits through atexit.
func TestExitHelper(t *testing.T) {
	spec := os.Getenv(exitHelperEnv)
	if spec == "" {
		t.Skip("only runs as a child of the Exit specs")
	}
	kind, path, _ := strings.Cut(spec, "=")
	w, err := New(kind, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}
	for n := 1; n <= 3; n++ {
		if err := w.Write(frame(n)); err != nil {
			t.Fatal(err)
		}
	}
	atexit.Exit(0)
}
