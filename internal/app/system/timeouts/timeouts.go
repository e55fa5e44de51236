// Package timeouts provides centralized timeout values for handler and
// background operations.
//
// These are used with context.WithTimeout for database and upstream calls.
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: simple single-document reads or lookups
//   - Medium: list queries, moderate writes, multi-step reads
//   - Long: complex writes, operations touching multiple collections,
//     upstream embedding/generation calls
//   - Batch: bulk imports, spreadsheet uploads
package timeouts

import "time"

const (
	Ping   = 2 * time.Second
	Short  = 5 * time.Second
	Medium = 10 * time.Second
	Long   = 30 * time.Second
	Batch  = 60 * time.Second
)
