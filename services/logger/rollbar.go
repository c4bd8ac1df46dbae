package logsvc

import (
	"log"
	"sort"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/masomo-studio/core"
)

// RollbarLogger reports to Rollbar (when enabled) and always prints to the std logger.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) prepare(msg string, la logArgs) []interface{} {
	newArgs := make([]interface{}, 0, 4)
	newArgs = append(newArgs, msg)
	if la.err != nil {
		newArgs = append(newArgs, la.err)
	}
	if la.req != nil {
		newArgs = append(newArgs, la.req)
	}
	if la.fields != nil {
		newArgs = append(newArgs, la.fields)
	}
	return newArgs
}

func (l RollbarLogger) print(msg string, la logArgs) {
	l.std.Println(msg)
	if la.err != nil {
		l.std.Printf("%+v\n", la.err)
	}
	if la.req != nil {
		l.std.Printf("%s %s\n", la.req.Method, la.req.URL)
	}
	keys := make([]string, 0, len(la.fields))
	for k := range la.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l.std.Printf("  %s=%+v\n", k, la.fields[k])
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	la := parseArgs(args)
	rollbar.Debug(l.prepare(msg, la)...)
	l.print(msg, la)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	la := parseArgs(args)
	rollbar.Info(l.prepare(msg, la)...)
	l.print(msg, la)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	la := parseArgs(args)
	rollbar.Warning(l.prepare(msg, la)...)
	l.print(msg, la)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	la := parseArgs(args)
	rollbar.Error(l.prepare(msg, la)...)
	l.print(msg, la)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	la := parseArgs(args)
	rollbar.Critical(l.prepare(msg, la)...)
	rollbar.Wait()
	l.print(msg, la)
	l.std.Fatal(msg)
}
