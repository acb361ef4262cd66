package xbase

import "go.uber.org/zap"

// logger is the package-level advisory logger. Hard failures are never
// logged here - they are returned as ColumnAddError/RowAddError/ReadError
// for the caller to handle. Only non-fatal, spec-documented advisories
// (width auto-correction, surfaced-but-unhandled flags, known DBT read
// imperfections) go through this logger.
var logger = func() *zap.SugaredLogger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}()

// SetLogger replaces the package-level advisory logger. Passing nil
// silences advisory logging entirely.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l
}

func advisory(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}
