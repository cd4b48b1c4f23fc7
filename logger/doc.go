// Package logger provides structured logging for railskit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with map-based structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "railsctl").WithComponent("resource")
//	log.Debug("resource class defined", logger.Fields("name", "person"))
package logger
