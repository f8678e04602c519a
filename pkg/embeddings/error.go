package embeddings

import "errors"

var (
	// ErrEmbedding is returned when a provider accepts a request but fails
	// to produce a usable embedding (HTTP error status, empty vector,
	// malformed response). The upstream response body is included in the
	// wrapping error.
	ErrEmbedding = errors.New("embedding failed")

	// ErrUnreachable is returned when the local provider cannot be reached
	// at all. Distinct from ErrEmbedding so callers can offer remediation.
	ErrUnreachable = errors.New("embedding provider unreachable")

	// ErrNoProvider is returned by detection when neither the local server
	// nor a cloud credential is available.
	ErrNoProvider = errors.New("no embedding provider available")

	// ErrMissingCredential is returned by the cloud provider when its API
	// key is absent from the environment. No network call is attempted.
	ErrMissingCredential = errors.New("missing cloud credential")
)
