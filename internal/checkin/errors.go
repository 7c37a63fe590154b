package checkin

import (
	"errors"

	"checkinbot/internal/report"
)

var (
	// ErrCookie signals that the account cookie is invalid or expired.
	ErrCookie = errors.New("cookie error")
	// ErrStoken signals that the account stoken is invalid.
	ErrStoken = errors.New("stoken error")
	// ErrDependencyMissing means the check-in command cannot be executed at all.
	ErrDependencyMissing = errors.New("check-in dependency missing")
	// ErrAborted is returned when the batch is interrupted before the first account.
	ErrAborted = errors.New("batch aborted before start")
)

// credentialOf maps a task error to a credential kind, or 0.
func credentialOf(err error) report.Credential {
	switch {
	case errors.Is(err, ErrCookie):
		return report.CredentialCookie
	case errors.Is(err, ErrStoken):
		return report.CredentialStoken
	default:
		return 0
	}
}
