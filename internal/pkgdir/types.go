package pkgdir

import "time"

// Record describes one installed package instance. Records are append-only:
// after Create, only UsedAt is ever rewritten (via Touch).
type Record struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	DirectoryName string            `json:"directory_name"`
	InstalledAt   time.Time         `json:"installed_at"`
	UsedAt        *time.Time        `json:"used_at,omitempty"`
	Scripts       map[string]string `json:"scripts,omitempty"`
	Compatibility string            `json:"compatibility,omitempty"`
	Env           map[string]string `json:"env,omitempty"`

	// Path is the absolute location of the package contents. Derived from
	// the packages directory at load time; not persisted.
	Path string `json:"-"`
}

// Spec returns the human identifier "name@version".
func (r *Record) Spec() string {
	return r.Name + "@" + r.Version
}
