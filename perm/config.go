package perm

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// projectConfig mirrors the BP.toml layout; only the permissions table is
// read here.
type projectConfig struct {
	Permissions Permissions `toml:"permissions"`
}

// LoadFile reads the [permissions] table from a BP.toml project file.
//
//	[permissions]
//	policy = "deny"
//	allow = ["fs.read:./data/*", "net.http:api.github.com"]
//	ask = ["net.http:*"]
//	deny = ["process.shell"]
func LoadFile(path string) (*Permissions, error) {
	var cfg projectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("loading permissions from %s: %w", path, err)
	}
	if cfg.Permissions.Policy == "" {
		cfg.Permissions.Policy = PolicyDeny
	}
	return &cfg.Permissions, nil
}

// Load parses the same layout from in-memory TOML.
func Load(data string) (*Permissions, error) {
	var cfg projectConfig
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing permissions: %w", err)
	}
	if cfg.Permissions.Policy == "" {
		cfg.Permissions.Policy = PolicyDeny
	}
	return &cfg.Permissions, nil
}
