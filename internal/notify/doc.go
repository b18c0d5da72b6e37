// Package notify delivers alert emails for plantcore.
//
// The Mailer renders an HTML notification for a persisted alert and sends it
// over SMTP. Sends run behind a circuit breaker: after repeated consecutive
// failures the breaker opens and sends fail fast instead of dialling a dead
// server for every alert. The telemetry pipeline treats every send failure
// as non-fatal and the cooldown tracker is recorded on attempt, so an open
// breaker never causes a retry storm.
//
// # Usage
//
//	mailer := notify.NewMailer(cfg.SMTP)
//	mailer.SetLogger(log)
//
//	err := mailer.SendAlert("owner@example.com", alertRecord)
package notify
