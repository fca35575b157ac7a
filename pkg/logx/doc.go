// Package logx configures notilog's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - Call sites decoupled from the zerolog API
//   - The zero value safe to use (no-op)
//
// Query commands log to stderr only, so their stdout stays
// machine-parseable; the logger run loop is the only chatty caller.
package logx
