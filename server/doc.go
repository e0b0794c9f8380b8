// Package server provides the HTTP surface for the credential service: a
// Gin-backed server with graceful shutdown, the standard middleware stack,
// and the /api/auth route handlers.
package server
