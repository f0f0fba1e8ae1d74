//go:build windows

package config

const (
	DefaultConfigFile        = `C:\ProgramData\MaxMind\GeoIPUpdate\GeoIP.conf`
	DefaultDatabaseDirectory = `C:\ProgramData\MaxMind\GeoIPUpdate\GeoIP`
)
