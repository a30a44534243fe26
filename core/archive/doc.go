// Package archive stores run reports in object storage.
//
// Every reconciliation and propagation run produces a structured report;
// the archive writes them as JSON under reports/<scope>/ so the outcome of
// past runs stays inspectable after the process restarts.
package archive
