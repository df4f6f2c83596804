package updater

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DanielWuxiaoxiao/headstamp/internal/config"
	"github.com/DanielWuxiaoxiao/headstamp/internal/report"
)

// fixedDates is a DateSource with canned answers, standing in for git.
type fixedDates struct {
	created    string
	lastEdited string
}

func (f fixedDates) FileDates(_ context.Context, _ string) (string, string) {
	return f.created, f.lastEdited
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Root:       root,
		Mode:       config.ModeGit,
		Author:     "wuxiaoxiao",
		Email:      "wuxiaoxiao@gmail.com",
		Extensions: []string{".cpp", ".h", ".hpp"},
		SkipDirs:   []string{"build", "bin", "CMakeFiles", ".git", ".vscode"},
		IgnoreFile: ".headstampignore",
	}
}

func newTestUpdater(t *testing.T, cfg *config.Config, dates DateSource) (*Updater, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	u := NewUpdater(cfg, zap.NewNop(), report.NewPrinter(&buf, false))
	u.git = dates
	u.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local) }
	return u, &buf
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestUpdateFilePrependsHeader(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "int main() {}\n")

	u, _ := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	changed, err := u.UpdateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}
	if !changed {
		t.Fatal("UpdateFile() = false, want true")
	}

	text := mustRead(t, path)
	if !strings.HasPrefix(text, "/*\n * @Author: wuxiaoxiao\n") {
		t.Errorf("missing header at top: %q", text)
	}
	if !strings.Contains(text, " * @Date: 2021-03-05 14:02:11\n") {
		t.Errorf("missing @Date line: %q", text)
	}
	if !strings.Contains(text, " * @LastEditTime: 2022-07-01 09:30:00\n") {
		t.Errorf("missing @LastEditTime line: %q", text)
	}
	if !strings.HasSuffix(text, " */\nint main() {}\n") {
		t.Errorf("original content not preserved verbatim: %q", text)
	}
}

func TestUpdateFileReplacesOwnHeader(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "/*\n * @Author: somebody-else\n * @Date: 1999-01-01 00:00:00\n */\nvoid f();\n")

	u, _ := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	if _, err := u.UpdateFile(context.Background(), path); err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}

	text := mustRead(t, path)
	if strings.Contains(text, "somebody-else") {
		t.Errorf("old header not replaced: %q", text)
	}
	if !strings.HasSuffix(text, " */\nvoid f();\n") {
		t.Errorf("code after header not preserved: %q", text)
	}
	if n := strings.Count(text, "/*"); n != 1 {
		t.Errorf("block comment count = %d, want 1: %q", n, text)
	}
}

func TestUpdateFileKeepsForeignBanner(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "/* Copyright Example Corp */\nvoid f();\n")

	u, _ := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	if _, err := u.UpdateFile(context.Background(), path); err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}

	text := mustRead(t, path)
	if !strings.HasPrefix(text, "/*\n * @Author: wuxiaoxiao\n") {
		t.Errorf("missing header at top: %q", text)
	}
	if !strings.HasSuffix(text, "/* Copyright Example Corp */\nvoid f();\n") {
		t.Errorf("foreign banner not preserved below header: %q", text)
	}
}

func TestUpdateFileIdempotent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "int main() {}\n")

	u, _ := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	if changed, err := u.UpdateFile(context.Background(), path); err != nil || !changed {
		t.Fatalf("first UpdateFile() = (%v, %v), want (true, nil)", changed, err)
	}
	before := mustRead(t, path)

	changed, err := u.UpdateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("second UpdateFile() error = %v", err)
	}
	if changed {
		t.Error("second UpdateFile() = true, want false")
	}
	if after := mustRead(t, path); after != before {
		t.Errorf("second run changed bytes:\nbefore: %q\nafter:  %q", before, after)
	}
}

func TestUpdateFilePreservesCRLF(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "int a;\r\nint b;\r\n")

	u, _ := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	if _, err := u.UpdateFile(context.Background(), path); err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}

	text := mustRead(t, path)
	if !strings.HasPrefix(text, "/*\r\n * @Author: wuxiaoxiao\r\n") {
		t.Errorf("header not joined with CRLF: %q", text)
	}
	if !strings.Contains(text, " */\r\nint a;\r\n") {
		t.Errorf("header not terminated with CRLF before content: %q", text)
	}
}

func TestUpdateFileFallsBackToFilesystem(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "int main() {}\n")

	past := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	u, _ := newTestUpdater(t, testConfig(root), fixedDates{})

	if _, err := u.UpdateFile(context.Background(), path); err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}

	text := mustRead(t, path)
	if !strings.Contains(text, " * @Date: 2024-01-02 09:00:00\n") {
		t.Errorf("fallback @Date not derived from mtime: %q", text)
	}
	if !strings.Contains(text, " * @LastEditTime: 2024-01-02 09:00:00\n") {
		t.Errorf("fallback @LastEditTime not derived from mtime: %q", text)
	}
}

func TestUpdateFileCommitModeStampsNow(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "int main() {}\n")

	cfg := testConfig(root)
	cfg.Mode = config.ModeCommit
	u, _ := newTestUpdater(t, cfg,
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	if _, err := u.UpdateFile(context.Background(), path); err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}

	text := mustRead(t, path)
	if !strings.Contains(text, " * @Date: 2021-03-05 14:02:11\n") {
		t.Errorf("commit mode must keep the derived creation time: %q", text)
	}
	if !strings.Contains(text, " * @LastEditTime: 2025-06-15 12:00:00\n") {
		t.Errorf("commit mode must stamp the current time: %q", text)
	}
}

func TestUpdateFileDryRun(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "int main() {}\n")

	cfg := testConfig(root)
	cfg.DryRun = true
	u, _ := newTestUpdater(t, cfg,
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	changed, err := u.UpdateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}
	if !changed {
		t.Error("dry run should report the would-be change")
	}
	if text := mustRead(t, path); text != "int main() {}\n" {
		t.Errorf("dry run must not write, got %q", text)
	}
}

func TestUpdateFileClearsReadOnly(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	mustWrite(t, path, "int main() {}\n")
	if err := os.Chmod(path, 0o444); err != nil {
		t.Fatal(err)
	}

	u, _ := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	changed, err := u.UpdateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}
	if !changed {
		t.Fatal("UpdateFile() = false, want true")
	}
	if !strings.HasPrefix(mustRead(t, path), "/*\n * @Author: wuxiaoxiao\n") {
		t.Error("read-only file was not updated")
	}
}

func TestRunScansAndCounts(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.cpp"), "int a;\n")
	mustWrite(t, filepath.Join(root, "b.h"), "#pragma once\n")
	mustWrite(t, filepath.Join(root, "notes.txt"), "plain\n")

	u, buf := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	summary, err := u.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Candidates != 2 {
		t.Errorf("Candidates = %d, want 2", summary.Candidates)
	}
	if summary.ChangedCount() != 2 {
		t.Errorf("ChangedCount() = %d, want 2", summary.ChangedCount())
	}
	if len(summary.Failures) != 0 {
		t.Errorf("Failures = %v, want none", summary.Failures)
	}
	if buf.String() != "" {
		t.Errorf("unexpected warnings: %q", buf.String())
	}

	// A second run over unchanged dates rewrites nothing.
	summary, err = u.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.ChangedCount() != 0 {
		t.Errorf("second run ChangedCount() = %d, want 0", summary.ChangedCount())
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	root := t.TempDir()
	good := filepath.Join(root, "good.cpp")
	bad := filepath.Join(root, "bad.cpp")
	mustWrite(t, good, "int g;\n")
	mustWrite(t, bad, "int b;\n")
	if err := os.Chmod(bad, 0o000); err != nil {
		t.Fatal(err)
	}

	u, buf := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	summary, err := u.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.ChangedCount() != 1 || summary.Changed[0] != good {
		t.Errorf("Changed = %v, want just %q", summary.Changed, good)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Path != bad {
		t.Errorf("Failures = %v, want just %q", summary.Failures, bad)
	}
	if !strings.Contains(buf.String(), "[WARN] Failed updating "+bad) {
		t.Errorf("missing warning line, got %q", buf.String())
	}
}

func TestRunExplicitNonTargetExtension(t *testing.T) {
	root := t.TempDir()
	notes := filepath.Join(root, "notes.txt")
	mustWrite(t, notes, "plain\n")

	u, _ := newTestUpdater(t, testConfig(root),
		fixedDates{created: "2021-03-05 14:02:11", lastEdited: "2022-07-01 09:30:00"})

	summary, err := u.Run(context.Background(), []string{"notes.txt"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Candidates != 0 || summary.ChangedCount() != 0 {
		t.Errorf("non-target explicit path processed: candidates=%d changed=%d",
			summary.Candidates, summary.ChangedCount())
	}
	if text := mustRead(t, notes); text != "plain\n" {
		t.Errorf("non-target file was written: %q", text)
	}
}
