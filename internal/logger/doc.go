// Package logger wraps zap with a process-wide atomic level and context-carried fields.
// Request handlers attach the request token and URL once with WithKV; every later
// helper call made with that context logs them.
package logger
