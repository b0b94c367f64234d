package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fim/pkg/fim/config"
	"github.com/jamesainslie/fim/pkg/fim/logging"
)

// cli runs fim against an isolated home, log file, journal and baseline.
type cli struct {
	t        *testing.T
	dir      string
	data     string
	baseline string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("FIM_LOGGING_PATH", filepath.Join(dir, "state", "fim.log"))
	t.Setenv("FIM_JOURNAL_PATH", filepath.Join(dir, "journal"))
	t.Setenv("FIM_JOURNAL_ENABLED", "false")

	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))

	return &cli{t: t, dir: dir, data: data, baseline: filepath.Join(dir, "baseline.json")}
}

// write creates a file under the data directory and returns its path.
func (c *cli) write(name, content string) string {
	c.t.Helper()
	path := filepath.Join(c.data, name)
	require.NoError(c.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(c.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	args = append(args, "--baseline", c.baseline)
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// ok runs args, requires exit 0, and returns stdout.
func (c *cli) ok(args ...string) string {
	c.t.Helper()
	code, stdout, stderr := c.run(args...)
	require.Equal(c.t, 0, code, "stderr: %s", stderr)
	return stdout
}

func TestInitAndCheck(t *testing.T) {
	c := newCLI(t)
	hosts := c.write("hosts", "127.0.0.1 localhost\n")
	motd := c.write("motd", "welcome\n")

	out := c.ok("init", c.data)
	assert.Contains(t, out, "[*] hashing 2 files...")
	assert.Contains(t, out, "  [+] "+hosts)
	assert.Contains(t, out, "[ok] baseline created: 2 files")
	assert.FileExists(t, c.baseline)

	out = c.ok("check")
	assert.Contains(t, out, "[*] checking 2 files...")
	assert.Contains(t, out, "[ok] all files intact")
	assert.Contains(t, out, "ok: 2 | modified: 0 | deleted: 0")

	c.write("hosts", "10.0.0.1 evil\n")
	require.NoError(t, os.Remove(motd))

	out = c.ok("check")
	assert.Contains(t, out, "[!] MODIFIED FILES:\n  "+hosts+"\n")
	assert.Contains(t, out, "[!] DELETED FILES:\n  "+motd+"\n")
	assert.Contains(t, out, "ok: 0 | modified: 1 | deleted: 1")
	assert.NotContains(t, out, "all files intact")
}

func TestCheckFailOnChange(t *testing.T) {
	c := newCLI(t)
	c.write("a", "one")
	c.ok("init", c.data)

	code, _, _ := c.run("check", "--fail-on-change")
	assert.Equal(t, 0, code)

	c.write("a", "two")
	code, stdout, stderr := c.run("check", "--fail-on-change")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "MODIFIED FILES")
	assert.Empty(t, stderr)
}

func TestCheckFormats(t *testing.T) {
	c := newCLI(t)
	path := c.write("a", "one")
	c.ok("init", c.data)
	c.write("a", "two")

	out := c.ok("check", "-o", "json")
	var doc struct {
		Baseline string `json:"baseline"`
		Check    struct {
			Checked  int  `json:"checked"`
			Clean    bool `json:"clean"`
			Modified []struct {
				Path string `json:"path"`
			} `json:"modified"`
		} `json:"check"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, c.baseline, doc.Baseline)
	assert.Equal(t, 1, doc.Check.Checked)
	assert.False(t, doc.Check.Clean)
	require.Len(t, doc.Check.Modified, 1)
	assert.Equal(t, path, doc.Check.Modified[0].Path)

	assert.Equal(t, path+"\n", c.ok("check", "--format", "paths"))

	code, _, stderr := c.run("check", "-o", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown formatter: xml")
}

func TestAddRemove(t *testing.T) {
	c := newCLI(t)
	a := c.write("a", "one")
	b := filepath.Join(c.dir, "extra", "b")
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0o644))

	c.ok("init", a)

	out := c.ok("add", b, a)
	assert.Contains(t, out, "  [+] "+b)
	assert.NotContains(t, out, "  [+] "+a)
	assert.Contains(t, out, "[ok] added 1 files")
	assert.Contains(t, c.ok("status"), "files monitored: 2")

	out = c.ok("rm", b, "/not/tracked")
	assert.Contains(t, out, "  [-] "+b)
	assert.Contains(t, out, "[ok] removed 1 files")
	assert.Contains(t, c.ok("status"), "files monitored: 1")
}

func TestUpdate(t *testing.T) {
	c := newCLI(t)
	a := c.write("a", "one")
	c.write("b", "two")
	c.ok("init", c.data)

	c.write("a", "changed")
	out := c.ok("update")
	assert.Contains(t, out, "[*] updating 2 hashes...")
	assert.Contains(t, out, "  [~] "+a)
	assert.Contains(t, out, "[ok] updated 1 hashes")

	assert.Contains(t, c.ok("check"), "[ok] all files intact")
}

func TestGuidanceMessages(t *testing.T) {
	c := newCLI(t)
	c.write("a", "one")

	for _, args := range [][]string{{"check"}, {"update"}, {"add", c.data}, {"remove", c.data}} {
		t.Run(args[0], func(t *testing.T) {
			out := c.ok(args...)
			assert.Equal(t, "[!] no baseline exists, run 'init' first\n", out)
			assert.NoFileExists(t, c.baseline)
		})
	}

	t.Run("init with no files", func(t *testing.T) {
		empty := filepath.Join(c.dir, "empty")
		require.NoError(t, os.MkdirAll(empty, 0o755))
		assert.Equal(t, "[!] no files found\n", c.ok("init", empty))
		assert.NoFileExists(t, c.baseline)
	})

	t.Run("status without baseline", func(t *testing.T) {
		assert.Equal(t, "[!] no baseline exists\n", c.ok("status"))
	})
}

func TestHelp(t *testing.T) {
	c := newCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "Available Commands:"},
		{"unknown command", []string{"frobnicate"}, "Available Commands:"},
		{"init without paths", []string{"init"}, "fim init <path>"},
		{"add without paths", []string{"add"}, "fim add <path>"},
		{"remove without paths", []string{"remove"}, "fim remove <path>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, c.ok(tt.args...), tt.want)
		})
	}
}

func TestExtraArgumentsIgnored(t *testing.T) {
	c := newCLI(t)
	c.write("a", "one")
	c.ok("init", c.data)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"check", "extra"}, "[ok] all files intact"},
		{[]string{"update", "extra", "more"}, "[ok] updated 0 hashes"},
		{[]string{"status", "extra"}, "files monitored: 1"},
		{[]string{"version", "extra"}, "fim dev"},
		{[]string{"history", "show"}, "fim history show <id>"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, stdout, stderr := c.run(tt.args...)
			assert.Equal(t, 0, code, "stderr: %s", stderr)
			assert.Contains(t, stdout, tt.want)
		})
	}
}

func TestCaseInsensitiveCommands(t *testing.T) {
	c := newCLI(t)
	c.write("a", "one")

	assert.Contains(t, c.ok("INIT", c.data), "[ok] baseline created: 1 files")
	assert.Contains(t, c.ok("Check"), "[ok] all files intact")
}

func TestQuiet(t *testing.T) {
	c := newCLI(t)
	c.write("a", "one")

	out := c.ok("init", c.data, "-q")
	assert.NotContains(t, out, "[+]")
	assert.NotContains(t, out, "hashing")
	assert.Contains(t, out, "[ok] baseline created: 1 files")
}

func TestExclude(t *testing.T) {
	c := newCLI(t)
	c.write("keep.conf", "x")
	c.write("noise.log", "y")

	out := c.ok("init", c.data, "--exclude", "*.log")
	assert.Contains(t, out, "[ok] baseline created: 1 files")
	assert.NotContains(t, out, "noise.log")
}

func TestSaveFailure(t *testing.T) {
	c := newCLI(t)
	c.write("a", "one")

	// A non-empty directory where the baseline file should go.
	c.baseline = filepath.Join(c.dir, "occupied")
	require.NoError(t, os.MkdirAll(filepath.Join(c.baseline, "child"), 0o755))

	code, _, stderr := c.run("init", c.data)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: saving baseline")
}

func TestHistory(t *testing.T) {
	c := newCLI(t)
	t.Setenv("FIM_JOURNAL_ENABLED", "true")
	c.write("a", "one")

	c.ok("init", c.data)
	c.ok("check")
	c.ok("check", "--no-journal")

	out := c.ok("history")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "check")
	assert.Contains(t, lines[2], "init")

	var doc struct {
		History []struct {
			ID        string   `json:"id"`
			Operation string   `json:"operation"`
			Paths     []string `json:"paths"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal([]byte(c.ok("history", "-o", "json", "--limit", "1")), &doc))
	require.Len(t, doc.History, 1)
	assert.Equal(t, "check", doc.History[0].Operation)

	shown := c.ok("history", "show", doc.History[0].ID[:8])
	assert.Contains(t, shown, doc.History[0].ID)

	code, _, stderr := c.run("history", "show", "no-such-id")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")

	assert.Contains(t, c.ok("history", "clean"), "removed 0 entries")
	assert.Contains(t, c.ok("history", "clean", "--all"), "history cleared")
	assert.Equal(t, "no history\n", c.ok("history"))
}

func TestHistoryDisabled(t *testing.T) {
	c := newCLI(t)
	assert.Equal(t, "[!] journal is disabled\n", c.ok("history"))
}

func TestConfigCommands(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.dir, "custom", "fim.yaml")

	assert.Equal(t, path+"\n", c.ok("config", "path", "--config", path))

	assert.Contains(t, c.ok("config", "init", "--config", path), "Created default config file")
	assert.FileExists(t, path)
	assert.Contains(t, c.ok("config", "init", "--config", path), "already exists")

	out := c.ok("config", "show", "--config", path)
	assert.Contains(t, out, "# config file: "+path)
	assert.Contains(t, out, "retention_days: 90")
	assert.Contains(t, out, "FIM_JOURNAL_ENABLED=false")
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	out := c.ok("version")
	assert.True(t, strings.HasPrefix(out, "fim dev\n"))
	assert.Contains(t, out, "os/arch:")
}

func TestInitializeLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "fim.log")

	cfg := &config.Config{}
	cfg.Logging.Level = "debug"
	cfg.Logging.Path = logPath
	cfg.Logging.Rotation = config.RotationConfig{MaxSize: "1MB", MaxAge: 1, MaxBackups: 1}

	require.NoError(t, initializeLogging(cfg, false))
	logger.Info("hello from test")
	require.NoError(t, logging.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")

	cfg.Logging.Level = "loud"
	require.Error(t, initializeLogging(cfg, false))
}
