package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/pkg/v3/transport"
)

// DefaultTemplate .
const DefaultTemplate = `
env = "dev"

[log]
level = "info"
use_json = false
filename = ""
max_size = 500
max_age = 28
max_backups = 3

[controller]
mode = "floodlight"
addr = "http://127.0.0.1:8080"
route_format = "auto"
timeout = "5s"
retries = 2
device_cache_ttl = "2s"
fake_topology = ""

[flow]
data_priority = 100
arp_priority = 300
concurrency = 8
teardown_arp = false
legacy_teardown_bound = 10
rollback_on_failure = false

[meta]
type = "file"
file = ""
timeout = "1m"

[etcd]
prefix = "/labflow/v1"
endpoints = ["http://127.0.0.1:2379"]

[records]
file = ""

[http]
bind_addr = "0.0.0.0:9696"
graceful_timeout = "20s"
`

// Conf .
var Conf = newDefault()

// LogConfig .
type LogConfig struct {
	Level      string `toml:"level" enum:"debug,info,warn,error"`
	UseJSON    bool   `toml:"use_json"`
	Filename   string `toml:"filename"`
	MaxSize    int    `toml:"max_size"`
	MaxAge     int    `toml:"max_age"`
	MaxBackups int    `toml:"max_backups"`
	SentryDSN  string `toml:"sentry_dsn"`
}

// ControllerConfig describes how to reach the SDN controller.
type ControllerConfig struct {
	Mode           string   `toml:"mode" enum:"floodlight,fake"`
	Addr           string   `toml:"addr"`
	RouteFormat    string   `toml:"route_format" enum:"auto,flat,link"`
	Timeout        Duration `toml:"timeout"`
	Retries        int      `toml:"retries" range:"0-10"`
	DeviceCacheTTL Duration `toml:"device_cache_ttl"`
	// FakeTopology is a yaml file of hosts and links served in fake mode.
	FakeTopology string `toml:"fake_topology"`
}

// FlowConfig .
type FlowConfig struct {
	DataPriority        int  `toml:"data_priority" range:"1-65535"`
	ARPPriority         int  `toml:"arp_priority" range:"1-65535"`
	Concurrency         int  `toml:"concurrency" range:"1-256"`
	TeardownARP         bool `toml:"teardown_arp"`
	LegacyTeardownBound int  `toml:"legacy_teardown_bound" range:"1-1024"`
	RollbackOnFailure   bool `toml:"rollback_on_failure"`
}

// MetaConfig selects where connection records live.
type MetaConfig struct {
	Type string `toml:"type" enum:"file,memory,etcd"`
	// File is the file backend document, see MetaFile for the fallback.
	File    string   `toml:"file"`
	Timeout Duration `toml:"timeout"`
}

// EtcdConfig .
type EtcdConfig struct {
	Prefix    string   `toml:"prefix"`
	Endpoints []string `toml:"endpoints"`
	Username  string   `toml:"username"`
	Password  string   `toml:"password"`
	CA        string   `toml:"ca"`
	Key       string   `toml:"key"`
	Cert      string   `toml:"cert"`
}

// RecordsConfig .
type RecordsConfig struct {
	File string `toml:"file"`
}

// HTTPConfig .
type HTTPConfig struct {
	BindAddr        string   `toml:"bind_addr"`
	GracefulTimeout Duration `toml:"graceful_timeout"`
}

// Config .
type Config struct {
	Env string `toml:"env" enum:"dev,test,prod"`

	Log        LogConfig        `toml:"log"`
	Controller ControllerConfig `toml:"controller"`
	Flow       FlowConfig       `toml:"flow"`
	Meta       MetaConfig       `toml:"meta"`
	Etcd       EtcdConfig       `toml:"etcd"`
	Records    RecordsConfig    `toml:"records"`
	HTTP       HTTPConfig       `toml:"http"`
}

// checkedFields are validated by Check, nested fields joined by dots.
var checkedFields = []string{
	"Env",
	"Log.Level",
	"Controller.Mode",
	"Controller.RouteFormat",
	"Controller.Retries",
	"Flow.DataPriority",
	"Flow.ARPPriority",
	"Flow.Concurrency",
	"Flow.LegacyTeardownBound",
	"Meta.Type",
}

// New returns a Config holding the default values.
func New() *Config {
	conf := newDefault()
	return &conf
}

func newDefault() Config {
	var conf Config
	if err := Decode(DefaultTemplate, &conf); err != nil {
		panic(err)
	}
	return conf
}

// Dump .
func (c *Config) Dump() (string, error) {
	return Encode(c)
}

// Load .
func (c *Config) Load(files []string) error {
	for _, path := range files {
		if err := DecodeFile(path, c); err != nil {
			return errors.Wrapf(err, "failed to load config %s", path)
		}
	}
	return c.Check()
}

// Check .
func (c *Config) Check() error {
	for _, field := range checkedFields {
		if err := newChecker(c, field).check(); err != nil {
			return errors.Wrapf(err, "invalid config %s", field)
		}
	}

	switch {
	case c.Flow.DataPriority >= c.Flow.ARPPriority:
		return errors.Newf("flow.data_priority %d must be lower than flow.arp_priority %d",
			c.Flow.DataPriority, c.Flow.ARPPriority)
	case c.Controller.Mode == "floodlight" && len(c.Controller.Addr) < 1:
		return errors.New("controller.addr is required")
	case c.Meta.Type == "etcd" && len(c.Etcd.Endpoints) < 1:
		return errors.New("etcd.endpoints is required")
	}

	return nil
}

// ControllerTimeout .
func (c *Config) ControllerTimeout() time.Duration {
	return c.Controller.Timeout.Duration()
}

// MetaTimeout .
func (c *Config) MetaTimeout() time.Duration {
	return c.Meta.Timeout.Duration()
}

// MetaFile is meta.file when set, else connections.json beside the
// records file, else under ~/.labflow.
func (c *Config) MetaFile() (string, error) {
	switch {
	case len(c.Meta.File) > 0:
		return c.Meta.File, nil
	case len(c.Records.File) > 0:
		return filepath.Join(filepath.Dir(c.Records.File), "connections.json"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "")
	}
	return filepath.Join(home, ".labflow", "connections.json"), nil
}

// NewEtcdConfig .
func (c *Config) NewEtcdConfig() (etcdcnf clientv3.Config, err error) {
	etcdcnf.Endpoints = c.Etcd.Endpoints
	etcdcnf.Username = c.Etcd.Username
	etcdcnf.Password = c.Etcd.Password
	etcdcnf.DialTimeout = c.MetaTimeout()
	if len(c.Etcd.CA) < 1 || len(c.Etcd.Key) < 1 || len(c.Etcd.Cert) < 1 {
		return
	}
	etcdcnf.TLS, err = transport.TLSInfo{
		TrustedCAFile: c.Etcd.CA,
		KeyFile:       c.Etcd.Key,
		CertFile:      c.Etcd.Cert,
	}.ClientConfig()
	return
}
