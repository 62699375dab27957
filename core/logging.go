package core

// Logger is any leveled logger the app can report through.
//
// args may carry anything worth attaching to the entry: wrapped errors,
// maps of extra data, or the acting account (implementations may use it
// to tag the report).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
