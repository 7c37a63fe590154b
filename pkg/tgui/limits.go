package tgui

// MaxMessageLen is Telegram's sendMessage text limit in characters.
const MaxMessageLen = 4096

// HardSplitMargin is subtracted from the limit when a single line must be cut,
// leaving room for tags or markers the caller may add around the piece.
const HardSplitMargin = 100
