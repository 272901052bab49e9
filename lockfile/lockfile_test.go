package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func newLockFile() *LockFile {
	return &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}
}

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("hello world")
	h2 := Hash("hello world")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	h3 := Hash("different")
	if h1 == h3 {
		t.Errorf("Hash collision: %s == %s", h1, h3)
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version = %d, want %d", lf.Version, Version)
	}
	if len(lf.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
}

func TestLoadFutureVersion(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LockFileName), []byte("version: 99\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	lf, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lf.Replace("l10n/localizer_gen.go", map[string]string{
		"base.ftl":     "name = English\n",
		"settings.ftl": "title = Settings\n",
		OptionsKey:     "package=l10n type=Localizer",
	})
	lf.Replace("cmd/app/l10n_gen.go", map[string]string{"base.ftl": "name = English\n"})

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, LockFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Lock file not created at %s", path)
	}

	lf2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}

	targets, files := lf2.Stats()
	if targets != 2 {
		t.Errorf("targets = %d, want 2", targets)
	}
	if files != 3 {
		t.Errorf("files = %d, want 3", files)
	}
	if lf2.Stale("l10n/localizer_gen.go", map[string]string{
		"base.ftl":     "name = English\n",
		"settings.ftl": "title = Settings\n",
		OptionsKey:     "package=l10n type=Localizer",
	}) {
		t.Error("reloaded lock file should not report unchanged sources as stale")
	}
}

func TestStale(t *testing.T) {
	lf := newLockFile()
	files := map[string]string{"base.ftl": "a = A\n", "menu.ftl": "b = B\n"}

	if !lf.Stale("out.go", files) {
		t.Error("never generated target should be stale")
	}

	lf.Replace("out.go", files)
	if lf.Stale("out.go", files) {
		t.Error("unchanged sources should not be stale")
	}

	edited := map[string]string{"base.ftl": "a = A!\n", "menu.ftl": "b = B\n"}
	if !lf.Stale("out.go", edited) {
		t.Error("edited file should be stale")
	}

	added := map[string]string{"base.ftl": "a = A\n", "menu.ftl": "b = B\n", "new.ftl": "c = C\n"}
	if !lf.Stale("out.go", added) {
		t.Error("added file should be stale")
	}

	removed := map[string]string{"base.ftl": "a = A\n"}
	if !lf.Stale("out.go", removed) {
		t.Error("removed file should be stale")
	}
}

func TestFilterChanged(t *testing.T) {
	lf := newLockFile()
	lf.UpdateBatch("out.go", map[string]string{"base.ftl": "a", "menu.ftl": "b"})

	changed := lf.FilterChanged("out.go", map[string]string{
		"base.ftl": "a",  // unchanged
		"menu.ftl": "b!", // changed
		"new.ftl":  "c",  // new
	})

	if len(changed) != 2 {
		t.Errorf("changed count = %d, want 2", len(changed))
	}
	if _, ok := changed["base.ftl"]; ok {
		t.Error("base.ftl should not be in changed set")
	}
	if _, ok := changed["menu.ftl"]; !ok {
		t.Error("menu.ftl should be in changed set")
	}
	if _, ok := changed["new.ftl"]; !ok {
		t.Error("new.ftl should be in changed set")
	}
}

func TestReplaceForgetsOldFiles(t *testing.T) {
	lf := newLockFile()
	lf.Replace("out.go", map[string]string{"old.ftl": "x"})
	lf.Replace("out.go", map[string]string{"new.ftl": "y"})

	if _, ok := lf.Checksums["out.go"]["old.ftl"]; ok {
		t.Error("old.ftl should be forgotten by Replace")
	}
	if lf.Stale("out.go", map[string]string{"new.ftl": "y"}) {
		t.Error("new.ftl should be recorded")
	}
}

func TestPruneAndRemoveTarget(t *testing.T) {
	lf := newLockFile()
	lf.UpdateBatch("a.go", map[string]string{"base.ftl": "x"})
	lf.UpdateBatch("b.go", map[string]string{"base.ftl": "x"})
	lf.UpdateBatch("c.go", map[string]string{"base.ftl": "x"})

	lf.Prune([]string{"a.go", "c.go"})
	targets := lf.Targets()
	if len(targets) != 2 || targets[0] != "a.go" || targets[1] != "c.go" {
		t.Errorf("targets after Prune = %v, want [a.go c.go]", targets)
	}

	lf.RemoveTarget("a.go")
	if n, _ := lf.Stats(); n != 1 {
		t.Errorf("targets after RemoveTarget = %d, want 1", n)
	}
}

func TestTargetKey(t *testing.T) {
	root := filepath.Join("project")
	tests := []struct {
		output, want string
	}{
		{filepath.Join("project", "internal", "l10n", "gen.go"), "internal/l10n/gen.go"},
		{filepath.Join("elsewhere", "gen.go"), "elsewhere/gen.go"},
	}
	for _, tt := range tests {
		if got := TargetKey(root, tt.output); got != tt.want {
			t.Errorf("TargetKey(%q, %q) = %q, want %q", root, tt.output, got, tt.want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"base.ftl":  "name = English\n",
		"notes.txt": "ignored",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.ftl"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(files) != 1 || files["base.ftl"] != "name = English\n" {
		t.Errorf("Snapshot = %v, want only base.ftl", files)
	}

	if _, err := Snapshot(filepath.Join(dir, "missing")); err == nil {
		t.Error("Snapshot of missing directory should fail")
	}
}

func TestSummary(t *testing.T) {
	lf := newLockFile()

	if lf.Summary() != "empty" {
		t.Errorf("empty summary = %q, want %q", lf.Summary(), "empty")
	}

	lf.Replace("out.go", map[string]string{"base.ftl": "x", OptionsKey: "o"})
	want := "1 targets, 1 files (out.go: 1 files)"
	if s := lf.Summary(); s != want {
		t.Errorf("summary = %q, want %q", s, want)
	}
}

func TestConcurrentAccess(t *testing.T) {
	lf := newLockFile()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			target := "out.go"
			key := "file" + string(rune('0'+n)) + ".ftl"
			lf.UpdateBatch(target, map[string]string{key: "value"})
			lf.FilterChanged(target, map[string]string{key: "value"})
			lf.Stats()
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	_, files := lf.Stats()
	if files != 10 {
		t.Errorf("files after concurrent writes = %d, want 10", files)
	}
}
