// Package services hosts the session layer between transport and the
// pure core: uuid-keyed workspaces that hold one table and one mask
// each, the orchestration of ingest/filter/tag/export around them, and
// the service health surface.
//
// The core packages (tabular, ingest, analysis, exporter) are pure and
// hold no state; everything session-scoped lives here. Access to one
// workspace is serialized by its own mutex, so concurrent requests
// against different workspaces never contend.
package services
