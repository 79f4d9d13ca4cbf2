/*
Package log provides structured logging for vmctrl using zerolog.

A single global zerolog.Logger is initialized once via Init and shared
across the process. Component loggers are derived with With*() helpers
so that every log line carries enough context (component, request id,
user id, server id) to be queried without re-specifying it at each call
site.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	orchLog := log.WithComponent("orchestrator")
	orchLog.Info().Str("server_id", id).Msg("setup orchestration started")

Authorization headers and bearer tokens must never be logged verbatim;
SensitiveHeaders lists the header names this applies to. The HTTP
request-logging middleware in pkg/httpapi writes no request headers
at all, so it does not consult the list.
*/
package log
