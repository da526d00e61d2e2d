package validator

import (
	"flag"

	"github.com/grafana/dskit/flagext"
	"github.com/zachfi/zkit/pkg/util"
)

const (
	defaultConcurrency   = 4
	defaultMaxUploadSize = 512 * 1024 * 1024 // 512 MiB
)

type Config struct {
	Paths         flagext.StringSliceCSV `yaml:"paths,omitempty"`
	Concurrency   int                    `yaml:"concurrency,omitempty"`     // files validated at once
	MaxUploadSize int64                  `yaml:"max-upload-size,omitempty"` // limit on a POST /validate body
	Oneshot       bool                   `yaml:"oneshot,omitempty"`         // stop the process once Paths are validated
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.Var(&cfg.Paths, util.PrefixConfig(prefix, "paths"), "Comma separated list of files to validate on start")
	f.IntVar(&cfg.Concurrency, util.PrefixConfig(prefix, "concurrency"), defaultConcurrency,
		"Number of files validated concurrently.")
	f.Int64Var(&cfg.MaxUploadSize, util.PrefixConfig(prefix, "max-upload-size"), defaultMaxUploadSize,
		"Largest stream accepted by the HTTP validate endpoint, in bytes.")
	f.BoolVar(&cfg.Oneshot, util.PrefixConfig(prefix, "oneshot"), false,
		"Stop the process after the configured paths have been validated.")
}
