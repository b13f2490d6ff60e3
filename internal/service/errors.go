package service

import "errors"

var (
	// ErrAuthFailed means the token exchange could not be completed: the
	// endpoint was unreachable, rejected our client credentials, or
	// returned an unusable token payload.
	ErrAuthFailed = errors.New("upstream authentication failed")

	// ErrInvalidRemoteData means a critical upstream payload failed schema
	// validation and the profile could not be assembled.
	ErrInvalidRemoteData = errors.New("invalid upstream data")

	// ErrNotFound means the requested character or guild does not exist
	// upstream.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable means the upstream API failed in a way other
	// than a clean not-found.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCacheUnavailable means the operation requires the cache database
	// and the deployment runs without one.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
