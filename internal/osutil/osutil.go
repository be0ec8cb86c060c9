// Package osutil lets tests replace the OS calls that locate tally's files.
package osutil

import "os"

// PathProvider locates the user config directory and creates directories.
// config.GetConfigPath and storage.GetDataDir resolve their directories through it.
type PathProvider interface {
	UserConfigDir() (string, error)
	MkdirAll(path string, perm os.FileMode) error
}

// DefaultPathProvider calls the os package directly.
type DefaultPathProvider struct{}

// UserConfigDir returns os.UserConfigDir.
func (DefaultPathProvider) UserConfigDir() (string, error) {
	return os.UserConfigDir()
}

// MkdirAll returns os.MkdirAll.
func (DefaultPathProvider) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Provider is the provider used by path lookups.
var Provider PathProvider = DefaultPathProvider{}

// SetProvider replaces Provider.
func SetProvider(p PathProvider) {
	Provider = p
}

// ResetProvider restores DefaultPathProvider.
func ResetProvider() {
	Provider = DefaultPathProvider{}
}
