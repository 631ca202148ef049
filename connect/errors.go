package connect

import "errors"

var (
	InvalidDestinationErr = errors.New("invalid return destination")
	NoAccessTokenErr      = errors.New("no access token available")
)
