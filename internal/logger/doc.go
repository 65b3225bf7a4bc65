// Package logger provides structured logging functionality for the daemon.
//
// Features:
//   - Multiple log levels (TRACE, DEBUG, INFO, WARN, ERROR)
//   - Component-based filtering
//   - Multiple output formats (text, JSON, color)
//   - Thread-safe operations
//   - Configurable output and formatting
//
// Usage:
//
//	// Get a component logger
//	log := logger.WithComponent(logger.ComponentUpdater)
//
//	// Log messages with different levels
//	log.Info("player updated", map[string]interface{}{
//		"player_id": 123,
//	})
//
//	// Configure global logger
//	config := logger.DefaultConfig()
//	config.Level = logger.DEBUG
//	config.Format = logger.FormatJSON
//	logger.SetGlobalLogger(logger.New(config))
//
// Components:
//   - ComponentApp: process lifecycle logs
//   - ComponentFetcher: HTTP fetch logs
//   - ComponentExtractor: player pattern-matching logs
//   - ComponentState: PlayerState commit logs
//   - ComponentPool: interpreter pool acquire/load logs
//   - ComponentProtocol: frame decode/encode logs
//   - ComponentDispatcher: connection and request routing logs
//   - ComponentUpdater: update orchestration logs
//   - ComponentHelper: external-helper fallback logs
package logger
