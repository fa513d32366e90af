package profiling

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProfilerIsNoop(t *testing.T) {
	p := &Profiler{}
	s := p.start("build", time.Now())
	s.Stop()

	var buf bytes.Buffer
	p.summarize(&buf, time.Now())
	assert.Empty(t, buf.String())
}

func TestSpansNest(t *testing.T) {
	p := &Profiler{}
	start := time.Now()
	p.enable(start)

	outer := p.start("once", start)
	inner := p.start("build", start)
	inner.Stop()
	p.start("update", start).Stop()
	outer.Stop()
	p.start("print", start).Stop()

	require.Len(t, p.root.children, 2)
	assert.Equal(t, "once", p.root.children[0].name)
	require.Len(t, p.root.children[0].children, 2)
	assert.Equal(t, "update", p.root.children[0].children[1].name)

	var buf bytes.Buffer
	p.summarize(&buf, start.Add(time.Second))
	out := buf.String()
	assert.Contains(t, out, "total 1s")
	assert.Contains(t, out, "- once")
	assert.Contains(t, out, "  - build")
	assert.Contains(t, out, "- print")
}

func TestCobraProfilerWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{Use: "statusbar", RunE: func(*cobra.Command, []string) error { return nil }}
	p := NewCobraProfiler()
	p.AddFlags(cmd)

	require.NoError(t, cmd.ParseFlags([]string{
		"--cpu-profile", filepath.Join(dir, "cpu.out"),
		"--mem-profile", filepath.Join(dir, "mem.out"),
	}))
	require.NoError(t, p.PreRun(cmd, nil))

	var buf bytes.Buffer
	p.Finish(&buf)
	p.Finish(&buf)

	assert.FileExists(t, filepath.Join(dir, "cpu.out"))
	assert.FileExists(t, filepath.Join(dir, "mem.out"))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("CPU profile written")))
}
