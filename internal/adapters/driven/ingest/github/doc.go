// Package github loads entity batches stored as files in GitHub repositories.
//
// Source databases publish their extracted entity lists as JSON or YAML files
// in public repositories. This package fetches one file per source through the
// GitHub contents API and decodes it with the batchfile format. Requests are
// throttled with a token bucket and the API's own rate limit headers.
package github
