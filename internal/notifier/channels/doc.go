// Package channels holds the push protocol adapters registered with the
// notifier. Every adapter reads its options from its own push config section
// and reports delivery failures as errors.
//
// Adapters share one HTTP client. A section carrying http_proxy gets a
// dedicated client routed through that proxy for the duration of the call.
package channels
