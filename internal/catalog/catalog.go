package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/replication"
)

/*
The catalog is a record of what a compile run produced.
The catalog is a primitive for verifying, inventorying and auditing
configuration changes: it ties compiled artifacts back to the exact
input document through a checksum.
*/

// Catalog represents one compile of a replication document.
type Catalog struct {
	CompiledAt   time.Time `json:"compiled_at"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	ConfigSHA256 string    `json:"config_sha256"`

	Streams  int `json:"streams"`
	Enabled  int `json:"enabled"`
	Disabled int `json:"disabled"`

	Version string `json:"version,omitempty"`
}

// New builds a catalog for a resolution compiled from the given raw input.
func New(res *replication.Resolution, raw []byte) *Catalog {
	sum := sha256.Sum256(raw)
	enabled := len(res.Enabled())

	return &Catalog{
		CompiledAt:   time.Now().UTC(),
		Source:       res.Source,
		Target:       res.Target,
		ConfigSHA256: hex.EncodeToString(sum[:]),
		Streams:      len(res.Streams),
		Enabled:      enabled,
		Disabled:     len(res.Streams) - enabled,
		Version:      internal.Version,
	}
}
