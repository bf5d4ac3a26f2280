// Package logging is devtrack's zap setup.
//
// Logs go to stderr so stdout carries only command output. Each CLI
// invocation stores a request id in its context; Logger methods and For
// attach it, together with any OTel span ids, to every entry written while
// handling that invocation:
//
//	ctx = logging.WithRequestID(ctx, uuid.NewString())
//	logging.For(ctx, base).Debug("matched task", zap.String("task_id", id))
//
// Domain packages keep the *zap.Logger they were built with and call For at
// each log site. Values under credential keys and bearer tokens embedded in
// strings or errors are masked by the encoder.
package logging
