package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rvt/texture"
)

func printSummary(out io.Writer, s summary, tag language.Tag) {
	p := message.NewPrinter(tag)
	p.Fprintf(out, "Frames:     %d\n", s.Frames)
	p.Fprintf(out, "Requests:   %d\n", s.Requests)
	p.Fprintf(out, "Rendered:   %d (deferred %d)\n", s.Rendered, s.Deferred)
	p.Fprintf(out, "Evictions:  %d\n", s.Evictions)
	p.Fprintf(out, "Rewrites:   %d\n", s.Rewrites)
	p.Fprintf(out, "Instances:  %d\n", s.Instances)
	p.Fprintf(out, "Readbacks:  %d\n", s.Captures)
	p.Fprintf(out, "Resident:   %d\n", s.Resident)
	fmt.Fprint(out, s.Last.HUD(tag))
}

func dumpPageTable(path string, img *texture.PageTableImage, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := img.WriteDebugBMP(f, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
