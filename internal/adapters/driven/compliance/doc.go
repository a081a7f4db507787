// Package compliance implements the remote search/export service client
// over HTTP+JSON. It drives the hosted mailbox service's compliance
// search and export endpoints: searches are created, started and polled
// by name; exports package a completed search's matches into archive
// files downloadable from blob storage.
//
// All requests carry a bearer token from the configured token provider
// and pass through a client-side rate limiter, keeping poll loops well
// under the service's throttling thresholds.
package compliance
