package repo

import (
	"os"
	"path/filepath"
	"testing"

	"grit/pkg/giterr"
)

func TestParseConfigBasics(t *testing.T) {
	cfg, err := ParseConfig(`
# repository settings
[core]
	repositoryformatversion = 0
	bare = false

[user]
	name = John Doe
	email = john@example.com
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	cases := map[string]string{
		"core.repositoryformatversion": "0",
		"core.bare":                    "false",
		"user.name":                    "John Doe",
		"user.email":                   "john@example.com",
	}
	for key, want := range cases {
		got, err := cfg.Get(key)
		if err != nil {
			t.Errorf("Get(%q): %v", key, err)
			continue
		}
		if got != want {
			t.Errorf("Get(%q): got %q, want %q", key, got, want)
		}
	}
}

func TestParseConfigSubsection(t *testing.T) {
	cfg, err := ParseConfig(`
[remote "origin"]
	url = https://example.com/repo.git
	fetch = +refs/heads/*:refs/remotes/origin/*

[branch "feature/x"]
	remote = origin
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if got, err := cfg.Get("remote.origin.url"); err != nil || got != "https://example.com/repo.git" {
		t.Errorf("remote.origin.url: %q, %v", got, err)
	}
	if got, err := cfg.Get("branch.feature/x.remote"); err != nil || got != "origin" {
		t.Errorf("branch.feature/x.remote: %q, %v", got, err)
	}
}

func TestParseConfigCommentsAndQuotes(t *testing.T) {
	cfg, err := ParseConfig(`
[alias]
	st = status  # inline comment
	quoted = "value with ; semicolon"
; full-line comment
	plain = trailing ; cut here
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if got, _ := cfg.Get("alias.st"); got != "status" {
		t.Errorf("inline comment: %q", got)
	}
	if got, _ := cfg.Get("alias.quoted"); got != "value with ; semicolon" {
		t.Errorf("quoted value: %q", got)
	}
	if got, _ := cfg.Get("alias.plain"); got != "trailing" {
		t.Errorf("semicolon comment: %q", got)
	}
}

func TestConfigKeyCaseInsensitive(t *testing.T) {
	cfg, err := ParseConfig("[Core]\n\tBare = true\n")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if got, err := cfg.Get("core.bare"); err != nil || got != "true" {
		t.Errorf("case-insensitive lookup: %q, %v", got, err)
	}
}

func TestConfigNotFound(t *testing.T) {
	cfg, err := ParseConfig("[core]\n\tbare = false\n")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	for _, key := range []string{"core.missing", "nosection.key", "nodots"} {
		if _, err := cfg.Get(key); !giterr.HasKind(err, giterr.KindConfigNotFound) {
			t.Errorf("Get(%q): expected ConfigNotFound, got %v", key, err)
		}
	}
}

func TestConfigGetBool(t *testing.T) {
	cfg, err := ParseConfig(`
[flags]
	t1 = true
	t2 = yes
	t3 = on
	t4 = 1
	f1 = false
	f2 = no
	junk = maybe
`)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	for _, key := range []string{"flags.t1", "flags.t2", "flags.t3", "flags.t4"} {
		if v, ok := cfg.GetBool(key); !ok || !v {
			t.Errorf("%s: got %v, %v", key, v, ok)
		}
	}
	for _, key := range []string{"flags.f1", "flags.f2"} {
		if v, ok := cfg.GetBool(key); !ok || v {
			t.Errorf("%s: got %v, %v", key, v, ok)
		}
	}
	if _, ok := cfg.GetBool("flags.junk"); ok {
		t.Error("non-boolean value reported ok")
	}
	if _, ok := cfg.GetBool("flags.absent"); ok {
		t.Error("absent key reported ok")
	}
}

func TestRepositoryConfigLookup(t *testing.T) {
	r := initTestRepo(t)

	content := "[core]\n\trepositoryformatversion = 0\n[user]\n\tname = Fixture User\n"
	if err := os.WriteFile(filepath.Join(r.GitDir(), "config"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := r.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if got, err := cfg.Get("user.name"); err != nil || got != "Fixture User" {
		t.Errorf("user.name: %q, %v", got, err)
	}
}

func TestRepositoryConfigMissingFile(t *testing.T) {
	r := initTestRepo(t)
	if err := os.Remove(filepath.Join(r.GitDir(), "config")); err != nil {
		t.Fatal(err)
	}

	cfg, err := r.Config()
	if err != nil {
		t.Fatalf("Config on missing file: %v", err)
	}
	if _, err := cfg.Get("core.bare"); !giterr.HasKind(err, giterr.KindConfigNotFound) {
		t.Errorf("expected ConfigNotFound, got %v", err)
	}
}
