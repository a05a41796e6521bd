// Package database provides connection management, configuration types,
// query hooks, error classification, model registration, logging, and
// health checks built on top of Bun.
package database
