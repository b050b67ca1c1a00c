// Package probe provides the external observations the check engine
// consumes: HTTP heartbeats, subprocess liveness, structured-config
// validity, environment-variable equality, and host inspection.
//
// Every probe translates expected absence (missing file, closed port,
// stopped container) into a Fail or Warn outcome. The only condition a
// probe escalates is a broken runner environment, such as the inability
// to spawn subprocesses at all.
package probe

import (
	"time"
)

// DefaultTimeout bounds network calls and external commands so that an
// unresponsive dependency resolves to Fail instead of hanging the run.
const DefaultTimeout = 10 * time.Second
