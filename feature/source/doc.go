// Package source implements the source-catalog adapter.
//
// The client walks the source's paginated REST API per asset type and scope,
// retries transient failures with bounded exponential backoff, and
// normalizes the wire shape into typed records at the boundary so the
// reconciliation core never navigates raw API JSON.
package source
