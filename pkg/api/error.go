// Package api defines the wire types for the promptforge HTTP and MCP
// surfaces. These are transient request/response shapes with no lifecycle
// beyond a single call.
package api

// ErrorResponse is the error envelope returned by every failing endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
