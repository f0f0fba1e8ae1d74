//go:build !windows

package config

const (
	// DefaultConfigFile is read when no config file is given.
	DefaultConfigFile = "/usr/local/etc/GeoIP.conf"
	// DefaultDatabaseDirectory is where databases are installed when the
	// config does not say otherwise.
	DefaultDatabaseDirectory = "/usr/local/share/GeoIP"
)
