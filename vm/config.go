package vm

import (
	"io"

	"gopkg.in/yaml.v3"
)

// ErrorCallback receives formatted diagnostics for uncaught exceptions and
// fatal conditions (§7 "User-visible failures... using the configured error
// callback").
type ErrorCallback func(kind, file string, line int, message string)

// Config holds the four recognized configuration keys of §6
// "Configuration options".
type Config struct {
	// StackSize is the initial operand stack capacity, rounded up to a
	// multiple of MaxLocals+1 by New (§4.1).
	StackSize int `yaml:"stackSize"`
	// InitGC is the allocation-byte threshold for the first collection
	// (consumed by the external GC collaborator; this module only tracks
	// the counter — see gc.go).
	InitGC int64 `yaml:"initGC"`
	// HeapGrowRate is the integer multiplier applied to live bytes after
	// each collection.
	HeapGrowRate int `yaml:"heapGrowRate"`

	// ErrorCallback is a Go func value and is therefore never populated by
	// LoadConfig; set it in code after loading.
	ErrorCallback ErrorCallback `yaml:"-"`
}

// DefaultConfig mirrors sane defaults for an embedded VM instance.
func DefaultConfig() Config {
	return Config{
		StackSize:    MaxLocals + 1,
		InitGC:       1 << 20, // 1 MiB
		HeapGrowRate: 2,
	}
}

// LoadConfig reads the numeric configuration keys from a YAML document (the
// ambient config-loading convenience documented in SPEC_FULL.md, grounded on
// MongooseMoo-barn's use of gopkg.in/yaml.v3 for its own server config).
// ErrorCallback is never populated this way — func values are not
// YAML-serializable — and callers should attach it afterward.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	return cfg, nil
}
