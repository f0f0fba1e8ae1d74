package integrity

import "errors"

var ErrNotRegularFile = errors.New("not a regular file")
