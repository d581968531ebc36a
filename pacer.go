// Package pacer exposes the client builder for bandwidth-paced uploads.
package pacer

import (
	"github.com/adamwoolhether/pacer/client"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport is
// used and uploads are not paced.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}
