// Package tgui provides small helpers for Telegram-flavoured HTML:
//   - Escaping and tag wrappers that are safe for ParseMode="HTML"
//   - Rune-aware length and truncation utilities
//   - Markup-aware splitting of long messages (SplitHTML)
//   - Telegram message limits
//
// Values of type H are balanced and escaped. A long H must still be cut with
// SplitHTML, never by raw rune count, or tags and entities break apart.
package tgui
