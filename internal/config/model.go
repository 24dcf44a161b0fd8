// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `APIKIT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the Vault
// client *before* unmarshalling, so the model never stores Vault URIs, only
// plain strings.
//
// Validation happens immediately after unmarshal and defaulting; the app
// fails fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanizio/apikit/internal/pagination"
)

//
// HTTP section
//

// HTTP holds web-server tunables.  Zero timeouts fall back to the
// server package defaults.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  When it contains a single `%s` verb the
// *secret* (`Password`, usually a `vault:` reference) is substituted there.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
}

// DataSource returns the DSN with the password filled in.
func (d Database) DataSource() string {
	if strings.Count(d.DSN, "%s") == 1 {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

//
// Pagination section
//

// Pagination sets list endpoint page sizes.
type Pagination struct {
	DefaultPerPage int `koanf:"default_per_page" validate:"gte=0"`
	MaxPerPage     int `koanf:"max_per_page"     validate:"gte=0"`
}

// Defaults converts the section for pagination.ParseParams.
func (p Pagination) Defaults() pagination.Defaults {
	return pagination.Defaults{PerPage: p.DefaultPerPage, MaxPerPage: p.MaxPerPage}
}

//
// Auth section
//

// Auth configures bearer tokens.
type Auth struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `koanf:"token_ttl"  validate:"gte=0"`
}

//
// Tasks section
//

// Tasks selects the broker and worker pool size.
type Tasks struct {
	Broker  string `koanf:"broker"   validate:"oneof=memory amqp"`
	AMQPURL string `koanf:"amqp_url" validate:"required_if=Broker amqp"`
	Queue   string `koanf:"queue"    validate:"required"`
	Workers int    `koanf:"workers"  validate:"gte=1"`
	Buffer  int    `koanf:"buffer"   validate:"gte=1"`
}

//
// Log section
//

// Log tunes the zap logger.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // APIKIT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP       HTTP       `koanf:"http"`
	Database   Database   `koanf:"database"`
	Pagination Pagination `koanf:"pagination"`
	Auth       Auth       `koanf:"auth"`
	Tasks      Tasks      `koanf:"tasks"`
	Log        Log        `koanf:"log"`
	Paths      Paths      `koanf:"-"`
}

// applyDefaults fills optional fields left empty by every layer.
func (c *Config) applyDefaults() {
	if c.Pagination.DefaultPerPage == 0 {
		c.Pagination.DefaultPerPage = pagination.DefaultPerPage
	}
	if c.Pagination.MaxPerPage == 0 {
		c.Pagination.MaxPerPage = pagination.DefaultMaxPage
	}
	if c.Tasks.Broker == "" {
		c.Tasks.Broker = "memory"
	}
	if c.Tasks.Queue == "" {
		c.Tasks.Queue = "apikit.tasks"
	}
	if c.Tasks.Workers == 0 {
		c.Tasks.Workers = 4
	}
	if c.Tasks.Buffer == 0 {
		c.Tasks.Buffer = 256
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
