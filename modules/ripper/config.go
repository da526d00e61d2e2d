package ripper

import (
	"flag"
	"time"

	"github.com/zachfi/zkit/pkg/util"
)

// Write buffer sizing guidance (write-buffer-size):
// - SSD wear: fewer, larger writes reduce I/O overhead; 256KiB-1MiB is a good range.
// - NFS: larger buffers amortize round-trip cost; 512KiB-1MiB often performs better than 256KiB.
// - The value is clamped to [minWriteBufSize, maxWriteBufSize].
const (
	defaultWriteBufferSize  = 256 * 1024 // 256 KiB
	defaultReconnectInitial = 5 * time.Second
	defaultReconnectMax     = 60 * time.Second

	minWriteBufSize = 32 * 1024       // 32 KiB
	maxWriteBufSize = 4 * 1024 * 1024 // 4 MiB
)

type Config struct {
	URL                 string        `yaml:"url,omitempty"`
	Dir                 string        `yaml:"dir,omitempty"`
	WriteBufferSize     int           `yaml:"write-buffer-size,omitempty"`     // bytes to buffer before writing
	ReconnectBackoff    time.Duration `yaml:"reconnect-backoff,omitempty"`     // initial delay before reconnecting after disconnect
	ReconnectBackoffMax time.Duration `yaml:"reconnect-backoff-max,omitempty"` // cap on reconnect delay
	KeepJunk            bool          `yaml:"keep-junk,omitempty"`             // write junk regions to the track as well
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.URL, util.PrefixConfig(prefix, "url"), "", "The URL from which to stream")
	f.StringVar(&cfg.Dir, util.PrefixConfig(prefix, "dir"), "", "The directory to save the data")
	f.IntVar(&cfg.WriteBufferSize, util.PrefixConfig(prefix, "write-buffer-size"), defaultWriteBufferSize,
		"Bytes to buffer in memory before writing to disk. Larger values reduce write frequency (helps SSD longevity and NFS). Reasonable range: 256KiB-1MiB.")
	f.DurationVar(&cfg.ReconnectBackoff, util.PrefixConfig(prefix, "reconnect-backoff"), defaultReconnectInitial,
		"Initial delay before reconnecting after stream disconnect. Exponential backoff is used up to reconnect-backoff-max.")
	f.DurationVar(&cfg.ReconnectBackoffMax, util.PrefixConfig(prefix, "reconnect-backoff-max"), defaultReconnectMax,
		"Maximum delay between reconnection attempts.")
	f.BoolVar(&cfg.KeepJunk, util.PrefixConfig(prefix, "keep-junk"), false,
		"Write bytes that are not part of an MPEG frame to the recording instead of dropping them.")
}

// writeBufferSize returns the configured write buffer size clamped to a
// usable range.
func (cfg *Config) writeBufferSize() int {
	return min(max(cfg.WriteBufferSize, minWriteBufSize), maxWriteBufSize)
}
