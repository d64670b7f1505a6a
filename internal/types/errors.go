// errors.go — parse-failure sentinel shared by this package's text formats.
package types

import "errors"

// errMalformed marks a parse failure in one of the package's text formats
// (Timestamp, Date, Position). Wrapped with context by each Parse* function.
var errMalformed = errors.New("malformed value")
