// Package model defines the locally mirrored asset records and their state
// machines.
//
// An AssetRecord is one catalog asset (server, site, project, workbook,
// worksheet, datasource or report attribute) keyed by its natural key within
// a scope. Two orthogonal states track it: the lifecycle state (what changed
// at the source) and the propagation state (whether that change has been
// communicated downstream). DerivePropagation is the single transition rule
// between the two.
package model
