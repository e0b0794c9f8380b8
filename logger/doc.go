// Package logger wraps zerolog with service- and component-scoped loggers
// and a small structured-fields API used across the authentication service.
package logger
