package codes

import (
	"github.com/twitchtv/twirp"
)

const (
	// InvalidArguments invalid arguments
	InvalidArguments = 400
	// NotFound resource not found
	NotFound = 404
)

// Get get error code
func Get(code twirp.ErrorCode) int {
	switch code {
	case twirp.InvalidArgument, twirp.Malformed:
		return InvalidArguments
	case twirp.NotFound:
		return NotFound
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}
