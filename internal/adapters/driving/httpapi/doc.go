// Package httpapi exposes the synchronization engine over HTTP.
//
// Routes:
//
//	POST /v1/resync                    flat JSON property set, targeted resync
//	POST /v1/topologies/{name}/resync  same, topology taken from the path
//	POST /v1/scan                      one scan-all pass
//	GET  /v1/status                    orchestrator status
//	GET  /metrics                      prometheus exposition, when enabled
//
// Errors are returned as {"error": "..."} with a status derived from the
// domain error.
package httpapi
