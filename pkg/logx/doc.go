// Package logx configures hwbot's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured and append-only
//   - Optional Telegram sink (min-level + rate limiting)
package logx
