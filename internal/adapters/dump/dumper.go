// Package dump writes build plans to disk in a line-oriented text format meant for
// review and golden tests.
package dump

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/zerr"
)

// GlobalDirName holds the tasks shared by the whole plan.
const GlobalDirName = "_plan"

// DiagnosticsFileName lists the diagnostics of the plan.
const DiagnosticsFileName = "diagnostics.txt"

// Dumper implements ports.PlanDumper. Every task is written to
// <dir>/<project>/<target>/<n>-<rule type>.txt, numbered in plan order.
type Dumper struct{}

var _ ports.PlanDumper = (*Dumper)(nil)

// New creates a new Dumper.
func New() *Dumper {
	return &Dumper{}
}

// Dump writes plan below dir.
func (d *Dumper) Dump(plan *domain.BuildPlan, dir string) error {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDumpFailed.Error()), "dir", dir)
	}

	counters := make(map[string]int)
	for _, t := range plan.Tasks() {
		taskDir := filepath.Join(dir, GlobalDirName)
		if !t.IsGlobal() {
			taskDir = filepath.Join(dir, t.Target.Project, t.Target.Name)
		}
		counters[taskDir]++
		name := fmt.Sprintf("%03d-%s.txt", counters[taskDir], fileSafe(t.RuleType()))

		if err := writeFile(filepath.Join(taskDir, name), Render(t)); err != nil {
			return err
		}
	}

	if diags := plan.Diagnostics(); len(diags) > 0 {
		var buf bytes.Buffer
		for _, diag := range diags {
			buf.WriteString(diag.String())
			buf.WriteByte('\n')
		}
		return writeFile(filepath.Join(dir, DiagnosticsFileName), buf.Bytes())
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDumpFailed.Error()), "path", path)
	}
	//nolint:gosec // Path is derived from the dump directory chosen by the caller
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDumpFailed.Error()), "path", path)
	}
	return nil
}

// Render returns the text form of one task.
func Render(t *domain.Task) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "rule: %s\n", t.String())
	if !t.IsGlobal() {
		fmt.Fprintf(&buf, "target: %s\n", t.Target)
	}
	if t.Gate {
		buf.WriteString("gate: true\n")
	}
	if len(t.Command) > 0 {
		fmt.Fprintf(&buf, "cwd: %s\n", t.WorkingDir)
		fmt.Fprintf(&buf, "command: %s\n", shellquote.Join(t.Command...))
	}
	if len(t.Env) > 0 {
		buf.WriteString("env:\n")
		keys := make([]string, 0, len(t.Env))
		for k := range t.Env {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "  %s=%s\n", k, shellquote.Join(t.Env[k]))
		}
	}
	writeNodes(&buf, "inputs", t.Inputs)
	writeNodes(&buf, "outputs", t.Outputs)

	var flags []string
	if t.AlwaysOutOfDate {
		flags = append(flags, "always-out-of-date")
	}
	if t.UnsafeToSkip {
		flags = append(flags, "unsafe-to-skip")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&buf, "flags: %s\n", strings.Join(flags, " "))
	}
	if len(t.Contents) > 0 {
		buf.WriteString("contents:\n")
		for line := range strings.Lines(string(t.Contents)) {
			buf.WriteString("  | ")
			buf.WriteString(strings.TrimSuffix(line, "\n"))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func writeNodes(buf *bytes.Buffer, label string, nodes []*domain.Node) {
	if len(nodes) == 0 {
		return
	}
	fmt.Fprintf(buf, "%s:\n", label)
	for _, n := range nodes {
		fmt.Fprintf(buf, "  %s\n", n)
	}
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, s)
}
