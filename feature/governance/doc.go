// Package governance implements the downstream-catalog adapter.
//
// The client submits mapped assets as batch imports, resolves deterministic
// identifiers to internal ids and deletes assets by id, with the same
// bounded-backoff retry discipline as the source client. A resolve or delete
// against an asset the catalog no longer knows is treated as success: the
// asset being gone is the desired end state.
package governance
