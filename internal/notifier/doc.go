// Package notifier delivers a batch report to every configured push channel.
//
// A dispatch pass loads the push config fresh, applies the suppression rules
// (missing config, global enable flag, error-only mode), then walks the ordered
// channel list: each name is resolved through the Registry, the message is
// redacted and handed to the channel, which formats it for its own protocol.
//
// Channels run strictly one after another. A failing channel is logged and
// recorded in the Result; it never stops the remaining channels.
package notifier
