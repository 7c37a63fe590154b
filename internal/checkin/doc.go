// Package checkin runs the per-account check-in task over a batch of accounts
// and classifies every result into a report.RunOutcome.
//
// Accounts run strictly one after another with a randomized pause in between.
// Each call receives its own RunContext; nothing is shared across accounts.
// Once the first account starts the batch runs to completion: cancellation is
// honoured only before that point.
package checkin
