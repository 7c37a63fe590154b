package report

// Kind tags a RunOutcome.
type Kind int

const (
	KindUnknown Kind = iota
	KindSuccess
	KindFailure
	KindCaptcha
	KindCredentialError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindCaptcha:
		return "captcha"
	case KindCredentialError:
		return "credential_error"
	default:
		return "unknown"
	}
}

// Credential distinguishes the two credential-error signals of the check-in task.
type Credential int

const (
	CredentialCookie Credential = iota + 1
	CredentialStoken
)

// Cause is the fixed human-readable message for a credential error.
func (c Credential) Cause() string {
	if c == CredentialStoken {
		return "账号 Stoken 有问题！"
	}
	return "账号 Cookie 出错！"
}

// Bucket is the classification an outcome is counted under.
type Bucket string

const (
	BucketOK      Bucket = "ok"
	BucketError   Bucket = "error"
	BucketCaptcha Bucket = "captcha"
	BucketSkipped Bucket = "skipped"
)

// RunOutcome is the immutable result of one account's check-in.
type RunOutcome struct {
	Account    string
	Kind       Kind
	Message    string
	Credential Credential
}

func Success(account, msg string) RunOutcome {
	return RunOutcome{Account: account, Kind: KindSuccess, Message: msg}
}

func Failure(account, msg string) RunOutcome {
	return RunOutcome{Account: account, Kind: KindFailure, Message: msg}
}

func CaptchaRequired(account, msg string) RunOutcome {
	return RunOutcome{Account: account, Kind: KindCaptcha, Message: msg}
}

func CredentialError(account string, c Credential) RunOutcome {
	return RunOutcome{Account: account, Kind: KindCredentialError, Credential: c, Message: c.Cause()}
}

func Unknown(account string) RunOutcome {
	return RunOutcome{Account: account, Kind: KindUnknown}
}

// Run codes returned by the check-in task.
const (
	RunCodeSuccess  = 0
	RunCodeFailure  = 1
	RunCodeFailure2 = 2
	RunCodeCaptcha  = 3
)

// FromRunCode classifies a raw (code, message) pair. Codes outside the known
// set become Unknown rather than errors.
func FromRunCode(account string, code int, msg string) RunOutcome {
	switch code {
	case RunCodeSuccess:
		return Success(account, msg)
	case RunCodeFailure, RunCodeFailure2:
		return Failure(account, msg)
	case RunCodeCaptcha:
		return CaptchaRequired(account, msg)
	default:
		return Unknown(account)
	}
}

// Bucket maps the outcome onto its counting bucket.
func (o RunOutcome) Bucket() Bucket {
	switch o.Kind {
	case KindSuccess:
		return BucketOK
	case KindFailure, KindCredentialError:
		return BucketError
	case KindCaptcha:
		return BucketCaptcha
	default:
		return BucketSkipped
	}
}

// Block renders the per-account report block.
func (o RunOutcome) Block() string {
	head := "【" + o.Account + "】\n"
	switch o.Kind {
	case KindSuccess:
		return head + "✅ 签到成功\n" + o.Message
	case KindFailure:
		return head + "❌ 签到失败\n" + o.Message
	case KindCaptcha:
		return head + "⚠️ 触发验证码\n" + o.Message
	case KindCredentialError:
		return head + "❌ " + o.Credential.Cause()
	default:
		return head + "⏸ 未执行"
	}
}
