package report

import (
	"fmt"
	"strings"
)

// Result is built once per batch, after every account has finished.
//
// Captcha outcomes are counted as successes (the check-in ran) and reported
// separately in CaptchaCount, so Success+Failure+Skipped == Total holds.
type Result struct {
	Status       Status
	Total        int
	SuccessCount int
	FailureCount int
	SkippedCount int
	CaptchaCount int

	// Outcomes in run order.
	Outcomes []RunOutcome
}

// Aggregate classifies outcomes and computes the overall status.
func Aggregate(outcomes []RunOutcome) Result {
	r := Result{
		Total:    len(outcomes),
		Outcomes: append([]RunOutcome(nil), outcomes...),
	}
	for _, o := range outcomes {
		switch o.Bucket() {
		case BucketOK:
			r.SuccessCount++
		case BucketError:
			r.FailureCount++
		case BucketCaptcha:
			r.SuccessCount++
			r.CaptchaCount++
		default:
			r.SkippedCount++
		}
	}
	r.Status = StatusFor(r.Total, r.FailureCount, r.CaptchaCount)
	return r
}

// Summary is the two-line overview heading the report.
func (r Result) Summary() string {
	s := fmt.Sprintf("📊 执行概览\n共 %d 个账号，成功 %d 个，失败 %d 个，未执行 %d 个",
		r.Total, r.SuccessCount, r.FailureCount, r.SkippedCount)
	if r.CaptchaCount > 0 {
		s += fmt.Sprintf("，触发验证码 %d 个", r.CaptchaCount)
	}
	return s
}

// Text renders the full plain-text report: the summary, then one block per
// account in run order, separated by blank lines.
func (r Result) Text() string {
	blocks := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		blocks = append(blocks, o.Block())
	}
	return r.Summary() + "\n\n" + strings.Join(blocks, "\n\n")
}
