// Package format renders a plain-text check-in report for a delivery channel.
//
// The report is line oriented. For Telegram the formatter makes one forward
// pass, classifies each line by lightweight lexical cues (leading glyphs and
// keywords) and maps every class to an HTML transform. Lines that match no rule
// pass through escaped but otherwise untouched, so unexpected content is never
// dropped.
//
// Messages longer than a channel limit are split on line boundaries by Chunk.
// Pacing between chunks is the sender's job.
package format
