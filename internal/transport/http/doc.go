// Package http contains the chi handlers of the workspace API: upload,
// search, preview, tag, keyword analysis, export, plus health and the
// websocket upgrade. Handlers validate payloads, call the service
// layer, and map sentinel errors onto RFC 7807 responses.
package http
