package resource

import (
	"github.com/kbukum/railskit/config"
)

// LoadManifest reads a definitions file. Environment variables prefixed
// with RAILSKIT_ override file values, e.g. RAILSKIT_CLIENT_BASE_URL.
func LoadManifest(path string, opts ...config.LoaderOption) (*Manifest, error) {
	m := &Manifest{}
	if err := config.Load(path, m, opts...); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadDefinitions reads only the resources of a definitions file.
func LoadDefinitions(path string, opts ...config.LoaderOption) ([]Definition, error) {
	m, err := LoadManifest(path, opts...)
	if err != nil {
		return nil, err
	}
	return m.Resources, nil
}
