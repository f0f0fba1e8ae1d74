package config

import "errors"

var (
	ErrReadingConfig           = errors.New("error reading config file")
	ErrInvalidDirective        = errors.New("invalid directive")
	ErrDuplicateDirective      = errors.New("directive is in the config multiple times")
	ErrUnknownDirective        = errors.New("unknown directive")
	ErrInvalidValue            = errors.New("invalid value")
	ErrInvalidSchema           = errors.New("config file does not match the schema")
	ErrMissingAccountID        = errors.New("the `AccountID` option is required")
	ErrMissingLicenseKey       = errors.New("the `LicenseKey` option is required")
	ErrMissingEditions         = errors.New("the `EditionIDs` option is required")
	ErrLegacyCredentials       = errors.New("geoipupdate requires a valid AccountID and LicenseKey combination")
	ErrUnsupportedProxy        = errors.New("unsupported proxy type")
	ErrMalformedProxyUserInfo  = errors.New("proxy user/password is malformed")
	ErrInvalidEnvironmentValue = errors.New("invalid environment variable value")
)
