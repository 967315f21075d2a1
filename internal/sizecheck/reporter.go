package sizecheck

import (
	"fmt"
	"io"
	"strings"
)

const defaultTotalLabel = "NPM package"

// Reporter observes a measurement pass. Calls arrive in walk order: watched
// files of a directory, then that directory's subtotal, and finally the total.
type Reporter interface {
	WatchedFile(file FileSize)
	DirectoryMeasured(dir DirSize)
	TotalMeasured(total int64)
}

// NopReporter discards every observation.
type NopReporter struct{}

func (NopReporter) WatchedFile(FileSize)      {}
func (NopReporter) DirectoryMeasured(DirSize) {}
func (NopReporter) TotalMeasured(int64)       {}

// ConsoleReporter prints plain-text progress lines.
type ConsoleReporter struct {
	w     io.Writer
	label string
}

// NewConsoleReporter writes progress to w. The label names the package in the
// final total line and defaults to "NPM package".
func NewConsoleReporter(w io.Writer, label string) *ConsoleReporter {
	label = strings.TrimSpace(label)
	if label == "" {
		label = defaultTotalLabel
	}
	return &ConsoleReporter{w: w, label: label}
}

func (c *ConsoleReporter) WatchedFile(file FileSize) {
	fmt.Fprintf(c.w, "%s file size: %d\n", file.Path, file.Bytes)
}

func (c *ConsoleReporter) DirectoryMeasured(dir DirSize) {
	fmt.Fprintf(c.w, "%s files size: %d bytes\n", dir.Path, dir.Bytes)
}

func (c *ConsoleReporter) TotalMeasured(total int64) {
	fmt.Fprintf(c.w, "Total %s file size: %d bytes\n", c.label, total)
}

// multiReporter fans observations out to several reporters.
type multiReporter []Reporter

// MultiReporter combines reporters, skipping nil entries.
func MultiReporter(reporters ...Reporter) Reporter {
	var out multiReporter
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return NopReporter{}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiReporter) WatchedFile(file FileSize) {
	for _, r := range m {
		r.WatchedFile(file)
	}
}

func (m multiReporter) DirectoryMeasured(dir DirSize) {
	for _, r := range m {
		r.DirectoryMeasured(dir)
	}
}

func (m multiReporter) TotalMeasured(total int64) {
	for _, r := range m {
		r.TotalMeasured(total)
	}
}
