// Package logger provides structured logging for clientkit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers fetched from a named registry.
//
// # Configuration
//
//	logger:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("typedclient")
//	log.Debug("transport created", logger.Fields("transport", name))
package logger
