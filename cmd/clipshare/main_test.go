package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"clipshare/internal/config"
)

func writeTestConfig(t *testing.T, mutate ...func(*config.Config)) string {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Twitter.ConsumerKey = "test-consumer-key"
	cfg.Twitter.ConsumerSecret = "test-consumer-secret"
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	for _, fn := range mutate {
		fn(&cfg)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCLISubmitListShowRemove(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "submit",
		"--client", "abc",
		"--url", "https://clips.example.test/v.mp4",
		"--text", "hello",
		"--token", "token",
		"--token-secret", "token-secret",
		"--start", "1.5",
		"--duration", "10")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(out, "Queued job 1 for client abc") {
		t.Fatalf("submit output = %q", out)
	}

	out, err = runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "abc") || !strings.Contains(out, "pending") {
		t.Fatalf("list output = %q", out)
	}

	out, err = runCLI(t, configPath, "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "start 1.500s") {
		t.Fatalf("show output = %q", out)
	}

	out, err = runCLI(t, configPath, "queue", "remove", "1")
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	if !strings.Contains(out, "Item 1 removed") {
		t.Fatalf("remove output = %q", out)
	}

	out, err = runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list after remove: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("list output = %q", out)
	}
}

func TestCLISubmitRequiresToken(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCLI(t, configPath, "submit",
		"--client", "abc",
		"--url", "https://clips.example.test/v.mp4")
	if err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestCLIWhoami(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/users/show.json" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id_str":"42","screen_name":"clipper","name":"Clip Person"}`))
	}))
	defer server.Close()

	configPath := writeTestConfig(t, func(cfg *config.Config) {
		cfg.Twitter.APIBaseURL = server.URL + "/1.1"
	})

	out, err := runCLI(t, configPath, "whoami", "--token", "token", "--token-secret", "token-secret")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "@clipper") || !strings.Contains(out, "user id 42") {
		t.Fatalf("whoami output = %q", out)
	}
}

func TestCLIWhoamiRequiresToken(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, configPath, "whoami"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "clipshare.toml")

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "consumer_key") {
		t.Fatalf("sample config missing credential keys: %s", data)
	}
}
