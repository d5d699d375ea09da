// Package logger wraps zap for the action binaries:
//   - a global sugared logger writing plain console lines the runner log viewer can show,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and switching,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Services receive a context and pull the logger from it, so every line
// carries the name of the action that produced it.
package logger
