package report

// Status is the overall outcome code of a batch. Codes 0..3 are produced by
// Aggregate; the negative codes are advisory and only used for title lookup.
type Status int

const (
	StatusSuccess   Status = 0
	StatusAllFailed Status = 1
	StatusPartial   Status = 2
	StatusCaptcha   Status = 3

	// StatusConfigOutdated replaces the real status while account configs need migrating.
	StatusConfigOutdated Status = -1
	// StatusUnknown is the title fallback for codes outside the table.
	StatusUnknown Status = -2
	// StatusDependencyMissing reports that the check-in command is unavailable.
	StatusDependencyMissing Status = -99
)

// OK reports whether s is the routine success status.
func (s Status) OK() bool { return s == StatusSuccess }

// StatusFor applies the fixed-priority status rule to bucket counts.
func StatusFor(total, failures, captchas int) Status {
	switch {
	case total <= 0:
		return StatusSuccess
	case failures == total:
		return StatusAllFailed
	case failures > 0:
		return StatusPartial
	case captchas > 0:
		return StatusCaptcha
	default:
		return StatusSuccess
	}
}
