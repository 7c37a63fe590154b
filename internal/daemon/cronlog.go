package daemon

import (
	"fmt"

	logx "checkinbot/pkg/logx"
)

// cronLogger adapts logx to cron.Logger.
type cronLogger struct {
	log logx.Logger
}

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug(msg, kvFields(kv)...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []any) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
