package logsvc

import (
	"log"

	"github.com/trezcool/bulletin/core"
)

// StdLogger only prints to a *log.Logger. Used by the CLI and in tests.
type StdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

func printLog(std *log.Logger, level, msg string, args []interface{}) {
	std.Println(level + ": " + msg)
	for _, arg := range args {
		std.Printf("%+v\n", arg)
	}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { printLog(l.std, "DEBUG", msg, args) }
func (l StdLogger) Info(msg string, args ...interface{})  { printLog(l.std, "INFO", msg, args) }
func (l StdLogger) Warn(msg string, args ...interface{})  { printLog(l.std, "WARN", msg, args) }
func (l StdLogger) Error(msg string, args ...interface{}) { printLog(l.std, "ERROR", msg, args) }

func (l StdLogger) Fatal(msg string, args ...interface{}) {
	printLog(l.std, "FATAL", msg, args)
	l.std.Fatal(msg)
}
