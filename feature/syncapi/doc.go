// Package syncapi exposes the reconciliation and propagation pipeline over
// HTTP.
//
// Endpoints are scoped per site: POST /sync/reconcile/{scope} runs a full
// reconciliation pass, POST /sync/propagate/{scope} exports pending state
// downstream, GET /sync/status/{scope} reports state counts and
// GET /sync/reports/{scope} lists archived run reports.
package syncapi
