package report

import (
	"strings"
	"testing"
)

func TestStatusForTruthTable(t *testing.T) {
	t.Parallel()
	for n := 0; n <= 4; n++ {
		for f := 0; f <= n; f++ {
			for c := 0; c <= n-f; c++ {
				got := StatusFor(n, f, c)
				var want Status
				switch {
				case n > 0 && f == n:
					want = StatusAllFailed
				case f > 0 && f < n:
					want = StatusPartial
				case f == 0 && c > 0:
					want = StatusCaptcha
				default:
					want = StatusSuccess
				}
				if got != want {
					t.Fatalf("StatusFor(%d, %d, %d) = %d, want %d", n, f, c, got, want)
				}
			}
		}
	}
}

func TestAggregateExamples(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		outcomes []RunOutcome
		status   Status
		counts   [4]int // total, success, failure, skipped
	}{
		{
			name:     "partial failure",
			outcomes: []RunOutcome{Success("a", ""), Failure("b", ""), Success("c", "")},
			status:   StatusPartial,
			counts:   [4]int{3, 2, 1, 0},
		},
		{
			name:     "all failed",
			outcomes: []RunOutcome{Failure("a", ""), Failure("b", "")},
			status:   StatusAllFailed,
			counts:   [4]int{2, 0, 2, 0},
		},
		{
			name:     "captcha",
			outcomes: []RunOutcome{Success("a", ""), CaptchaRequired("b", "")},
			status:   StatusCaptcha,
			counts:   [4]int{2, 2, 0, 0},
		},
		{
			name:     "credential errors count as failures",
			outcomes: []RunOutcome{CredentialError("a", CredentialCookie), Unknown("b")},
			status:   StatusPartial,
			counts:   [4]int{2, 0, 1, 1},
		},
		{
			name:   "empty batch",
			status: StatusSuccess,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := Aggregate(tt.outcomes)
			if r.Status != tt.status {
				t.Fatalf("Status = %d, want %d", r.Status, tt.status)
			}
			got := [4]int{r.Total, r.SuccessCount, r.FailureCount, r.SkippedCount}
			if got != tt.counts {
				t.Fatalf("counts = %v, want %v", got, tt.counts)
			}
			if r.SuccessCount+r.FailureCount+r.SkippedCount != r.Total {
				t.Fatalf("count invariant broken: %+v", r)
			}
		})
	}
}

func TestFromRunCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code   int
		bucket Bucket
	}{
		{0, BucketOK},
		{1, BucketError},
		{2, BucketError},
		{3, BucketCaptcha},
		{4, BucketSkipped},
		{-1, BucketSkipped},
	}
	for _, tt := range tests {
		if got := FromRunCode("x", tt.code, "").Bucket(); got != tt.bucket {
			t.Errorf("FromRunCode(%d).Bucket() = %s, want %s", tt.code, got, tt.bucket)
		}
	}
}

func TestResultText(t *testing.T) {
	t.Parallel()
	r := Aggregate([]RunOutcome{
		Success("主账号", "🎮 原神：签到15天 → 冒险家的经验 ×5"),
		Failure("账号2", "米游社：签到失败"),
		CaptchaRequired("账号3", "星铁：需要验证"),
		Unknown("账号4"),
		CredentialError("账号5", CredentialCookie),
		CredentialError("账号6", CredentialStoken),
	})
	want := strings.Join([]string{
		"📊 执行概览",
		"共 6 个账号，成功 2 个，失败 3 个，未执行 1 个，触发验证码 1 个",
		"",
		"【主账号】",
		"✅ 签到成功",
		"🎮 原神：签到15天 → 冒险家的经验 ×5",
		"",
		"【账号2】",
		"❌ 签到失败",
		"米游社：签到失败",
		"",
		"【账号3】",
		"⚠️ 触发验证码",
		"星铁：需要验证",
		"",
		"【账号4】",
		"⏸ 未执行",
		"",
		"【账号5】",
		"❌ 账号 Cookie 出错！",
		"",
		"【账号6】",
		"❌ 账号 Stoken 有问题！",
	}, "\n")
	if got := r.Text(); got != want {
		t.Fatalf("Text() mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestSummaryOmitsZeroCaptcha(t *testing.T) {
	t.Parallel()
	r := Aggregate([]RunOutcome{Success("a", "")})
	if strings.Contains(r.Summary(), "触发验证码") {
		t.Fatalf("summary should omit captcha count: %q", r.Summary())
	}
}

func TestTableListsAccountsInOrder(t *testing.T) {
	t.Parallel()
	r := Aggregate([]RunOutcome{Success("first", "line one\nline two"), Failure("second", "")})
	out := r.Table()
	i, j := strings.Index(out, "first"), strings.Index(out, "second")
	if i < 0 || j < 0 || i > j {
		t.Fatalf("accounts missing or out of order:\n%s", out)
	}
	if strings.Contains(out, "line two") {
		t.Fatalf("table should only show the first detail line:\n%s", out)
	}
}
