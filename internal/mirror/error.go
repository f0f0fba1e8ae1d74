package mirror

import "errors"

var (
	ErrLoadingAWSConfig = errors.New("failed loading AWS config")
	ErrInvalidHash      = errors.New("invalid database hash")
	ErrOpeningDatabase  = errors.New("failed opening database for upload")
	ErrUploading        = errors.New("failed uploading database")
)
