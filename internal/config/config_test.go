package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
http:
  listen_addr: ":8080"
  read_timeout: 5s
database:
  dsn: "app:%s@tcp(db:3306)/apikit?parseTime=true"
  password: "vault:kv/apikit/db#password"
auth:
  jwt_secret: "0123456789abcdef0123"
  token_ttl: 2h
`

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := f[ref]
	if !ok {
		return "", errors.New("no such secret")
	}
	return v, nil
}

func writeRoot(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadFrom(t *testing.T) {
	root := writeRoot(t, sampleYAML)
	t.Setenv("APIKIT_HTTP__LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("APIKIT_TASKS__WORKERS", "7")

	res := fakeResolver{"vault:kv/apikit/db#password": "s3cret"}
	cfg, err := LoadFrom(context.Background(), root, res)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.HTTP.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("listen_addr = %q, env override ignored", cfg.HTTP.ListenAddr)
	}
	if cfg.HTTP.ReadTimeout != 5*time.Second || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("durations = %v, %v", cfg.HTTP.ReadTimeout, cfg.Auth.TokenTTL)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("password = %q, vault ref not resolved", cfg.Database.Password)
	}
	if got := cfg.Database.DataSource(); got != "app:s3cret@tcp(db:3306)/apikit?parseTime=true" {
		t.Errorf("DataSource = %q", got)
	}
	if cfg.Tasks.Workers != 7 || cfg.Tasks.Broker != "memory" || cfg.Tasks.Queue == "" {
		t.Errorf("tasks = %+v", cfg.Tasks)
	}
	if d := cfg.Pagination.Defaults(); d.PerPage != 20 || d.MaxPerPage != 100 {
		t.Errorf("pagination defaults = %+v", d)
	}
	if cfg.Paths.Root != root || Get() != cfg {
		t.Errorf("root/cache not set")
	}
}

func TestLoadFromValidation(t *testing.T) {
	root := writeRoot(t, `
http:
  listen_addr: ":8080"
database:
  dsn: "x"
auth:
  jwt_secret: "short"
tasks:
  broker: amqp
`)
	_, err := LoadFrom(context.Background(), root, fakeResolver{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"auth.jwt_secret", "tasks.amqp_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadFromSecretFailure(t *testing.T) {
	root := writeRoot(t, sampleYAML)
	if _, err := LoadFrom(context.Background(), root, fakeResolver{}); err == nil {
		t.Fatal("expected secret resolution error")
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("APIKIT_DATABASE__MAX_OPEN"); got != "database.max_open" {
		t.Fatalf("envKey = %q", got)
	}
}

func TestDataSourceWithoutVerb(t *testing.T) {
	d := Database{DSN: "root@tcp(localhost)/x", Password: "ignored"}
	if d.DataSource() != d.DSN {
		t.Fatalf("DataSource = %q", d.DataSource())
	}
}
