// Package domain holds the event-sourced account core.
//
// An account's state is never stored directly: it is rebuilt by replaying the
// ordered event history through Replay. Commands on the Account aggregate
// validate input, consult the debit authorization policy, and raise exactly
// one event per invocation, which the caller persists via the event store.
//
// # Error classes
//
// Input and structural failures (blank name, malformed currency, negative
// amounts, currency mismatch) surface as *ValidationError and never become
// events. Business-rule refusals (insufficient funds, exceeded limits,
// blocked account) are not errors at all: they are recorded as rejection
// events so the history itself explains why a debit failed.
package domain
