// Package report turns per-account check-in outcomes into one aggregate result:
// bucket counts, the overall status code and the plain-text report that the
// notifier formats and delivers.
//
// The report text is line oriented and stable; downstream formatters classify
// its lines by their leading glyphs, so labels here are part of the contract.
package report
