package config

import (
	"bytes"
	"os"
	"strings"
	"sync"

	"emperror.dev/errors"
	"github.com/creasty/defaults"
	"github.com/gbrlsnchs/jwt/v3"
	"gopkg.in/yaml.v3"
)

var (
	mu       sync.RWMutex
	_config  *Configuration
	_jwtAlgo *jwt.HMACSHA
)

// Locker specific to writing the configuration to the disk, this happens
// in areas that might already be locked, so we don't want to crash the process.
var _writeLock sync.Mutex

// RateLimitConfiguration controls the per-client token bucket applied to the
// API.
type RateLimitConfiguration struct {
	Enabled bool `default:"true" json:"enabled" yaml:"enabled"`

	// The number of tokens added to a client's bucket every second.
	Rate float64 `default:"20" json:"rate" yaml:"rate"`

	// The maximum number of requests a client can burst before being limited.
	Burst int64 `default:"40" json:"burst" yaml:"burst"`
}

type DocsConfiguration struct {
	Enabled bool `default:"true" yaml:"enabled"`
}

// ApiConfiguration defines the configuration for the HTTP API.
type ApiConfiguration struct {
	// The interface that the webserver should bind to.
	Host string `default:"0.0.0.0" yaml:"host"`

	// The port that the webserver should bind to.
	Port int `default:"8080" yaml:"port"`

	// Docs controls whether the auto-generated Swagger/OpenAPI documentation is served.
	Docs DocsConfiguration `yaml:"docs"`

	RateLimit RateLimitConfiguration `yaml:"rate_limit"`

	// A list of IP address of proxies that may send a X-Forwarded-For header to set the true clients IP
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
}

// DatabaseConfiguration defines where plans, modules and tasks are stored.
type DatabaseConfiguration struct {
	// Driver is either "sqlite" or "postgres".
	Driver string `default:"sqlite" yaml:"driver"`

	// For sqlite this is the path to the database file, for postgres a
	// connection string understood by pgx.
	// Defaults to a platform specific data directory for sqlite.
	Dsn string `yaml:"dsn"`

	// The maximum number of open connections. sqlite only supports a single
	// writer, so anything above 1 for sqlite results in SQLITE_BUSY errors
	// under concurrent writes and is clamped to 1.
	MaxOpenConnections int `default:"10" yaml:"max_open_connections"`

	MaxIdleConnections int `default:"2" yaml:"max_idle_connections"`

	// The number of times the initial connection is retried with exponential
	// backoff before giving up.
	ConnectRetries uint64 `default:"5" yaml:"connect_retries"`

	// The interval, in minutes, between background maintenance runs. Set to 0
	// to disable maintenance entirely.
	MaintenanceInterval int `default:"60" yaml:"maintenance_interval"`
}

// PaginationConfiguration bounds the page sizes clients may request.
type PaginationConfiguration struct {
	DefaultLimit int `default:"20" yaml:"default_limit"`
	MaxLimit     int `default:"100" yaml:"max_limit"`
}

type Configuration struct {
	// The location from which this configuration instance was instantiated.
	path string

	// Determines if pathway should be running in debug mode. This value is
	// ignored if the debug flag is passed through the command line arguments.
	Debug bool `yaml:"debug"`

	AppName string `default:"Pathway" json:"app_name" yaml:"app_name"`

	// The secret used to verify bearer tokens presented to the API. Supports
	// environment variables and file:// references.
	Token string `json:"-" yaml:"token"`

	Api        ApiConfiguration        `json:"api" yaml:"api"`
	Database   DatabaseConfiguration   `json:"database" yaml:"database"`
	Pagination PaginationConfiguration `json:"pagination" yaml:"pagination"`
}

// NewAtPath creates a new struct and set the path where it should be stored.
// This function does not modify the currently stored global configuration.
func NewAtPath(path string) (*Configuration, error) {
	var c Configuration
	// Configures the default values for many of the configuration options present
	// in the structs. Values set in the configuration file take priority over the
	// default values.
	if err := defaults.Set(&c); err != nil {
		return nil, err
	}
	applyPlatformDefaults(&c)
	// Track the location where we created this configuration.
	c.path = path
	return &c, nil
}

// Set the global configuration instance. This is a blocking operation such that
// anything trying to set a different configuration value, or read the configuration
// will be paused until it is complete.
func Set(c *Configuration) {
	mu.Lock()
	defer mu.Unlock()
	if _config == nil || _config.Token != c.Token {
		_jwtAlgo = jwt.NewHS256([]byte(c.Token))
	}
	_config = c
}

// SetDebugViaFlag turns on debug mode because of a command line flag. The
// running process never writes its configuration back, so the flag cannot
// leak into the file.
func SetDebugViaFlag(d bool) {
	mu.Lock()
	defer mu.Unlock()
	_config.Debug = d
}

// Get returns the global configuration instance. This is a thread-safe operation
// that will block if the configuration is presently being modified.
//
// Be aware that you CANNOT make modifications to the currently stored configuration
// by modifying the struct returned by this function. The only way to make
// modifications is by using the Update() function and passing data through in
// the callback.
func Get() *Configuration {
	mu.RLock()
	// Create a copy of the struct so that all modifications made beyond this
	// point are immutable.
	//goland:noinspection GoVetCopyLock
	c := *_config
	mu.RUnlock()
	return &c
}

// Update performs an in-situ update of the global configuration object using
// a thread-safe mutex lock. This is the correct way to make modifications to
// the global configuration.
func Update(callback func(c *Configuration)) {
	mu.Lock()
	defer mu.Unlock()
	token := _config.Token
	callback(_config)
	if _config.Token != token {
		_jwtAlgo = jwt.NewHS256([]byte(_config.Token))
	}
}

// GetJwtAlgorithm returns the in-memory JWT algorithm.
func GetJwtAlgorithm() *jwt.HMACSHA {
	mu.RLock()
	defer mu.RUnlock()
	return _jwtAlgo
}

// applyPlatformDefaults fills in defaults that depend on the operating system
// and so cannot be expressed as struct tags.
func applyPlatformDefaults(c *Configuration) {
	if c.Database.Dsn == "" && c.Database.SqliteDriver() {
		c.Database.Dsn = GetDefaultDatabasePath()
	}
}

// Path returns the file path where this configuration is stored.
func (c *Configuration) Path() string {
	return c.path
}

// SqliteDriver reports whether the configured database is sqlite.
func (dc DatabaseConfiguration) SqliteDriver() bool {
	return dc.Driver == "" || dc.Driver == "sqlite"
}

// Validate checks values that cannot be expressed through defaults alone.
func (c *Configuration) Validate() error {
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return errors.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Pagination.MaxLimit < 1 {
		return errors.New("config: pagination.max_limit must be at least 1")
	}
	if c.Pagination.DefaultLimit < 1 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return errors.Errorf("config: pagination.default_limit must be between 1 and %d", c.Pagination.MaxLimit)
	}
	if rl := c.Api.RateLimit; rl.Enabled && (rl.Rate <= 0 || rl.Burst < 1) {
		return errors.New("config: api.rate_limit.rate must be above 0 and burst at least 1 while rate limiting is enabled")
	}
	return nil
}

// WriteToDisk writes the configuration to the disk. This is a thread safe operation
// and will only allow one write at a time. Additional calls while writing are
// queued up. Comments present in an existing file are preserved.
func WriteToDisk(c *Configuration) error {
	_writeLock.Lock()
	defer _writeLock.Unlock()

	//goland:noinspection GoVetCopyLock
	ccopy := *c
	if c.path == "" {
		return errors.New("cannot write configuration, no path defined in struct")
	}

	var b []byte
	raw, err := ReadRawConfig(c.path)
	if err == nil {
		b, err = MergeConfigWithRaw(raw, &ccopy)
	} else if os.IsNotExist(errors.Cause(err)) {
		b, err = yaml.Marshal(&ccopy)
	}
	if err != nil {
		return err
	}
	return WriteRawConfig(c.path, b)
}

// FromFile reads the configuration from the provided file and stores it in the
// global singleton for this instance.
func FromFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, err := NewAtPath(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return err
	}

	if v := os.Getenv("PATHWAY_TOKEN"); v != "" {
		c.Token = v
	}
	if c.Token, err = Expand(c.Token); err != nil {
		return err
	}
	if c.Database.Dsn, err = Expand(c.Database.Dsn); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	// Store this configuration in the global state.
	Set(c)
	return nil
}

// Expand expands an input string by calling [os.ExpandEnv] to expand all
// environment variables, then checks if the value is prefixed with `file://`
// to support reading the value from a file.
//
// NOTE: the order of expanding environment variables first then checking if
// the value references a file is important. This behaviour allows a user to
// pass a value like `file://${CREDENTIALS_DIRECTORY}/token` to allow us to
// work with credentials loaded by systemd's `LoadCredential` (or `LoadCredentialEncrypted`)
// options without the user needing to assume the path of `CREDENTIALS_DIRECTORY`
// or use a preStart script to read the files for us.
func Expand(v string) (string, error) {
	v = os.ExpandEnv(v)

	const filePrefix = "file://"
	if strings.HasPrefix(v, filePrefix) {
		p := v[len(filePrefix):]

		b, err := os.ReadFile(p)
		if err != nil {
			return "", errors.Wrap(err, "config: failed to read referenced file")
		}
		v = string(bytes.TrimRight(bytes.TrimRight(b, "\r"), "\n"))
	}

	return v, nil
}
