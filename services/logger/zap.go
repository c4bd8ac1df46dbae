package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/masomo-studio/core"
)

// ZapLogger writes structured JSON logs, for when output goes to a log collector rather than Rollbar.
type ZapLogger struct {
	z *zap.Logger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(name string, conf *core.Config) (*ZapLogger, error) {
	zc := zap.NewProductionConfig()
	if conf.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.InitialFields = map[string]interface{}{"env": conf.Env, "build": conf.Build}

	z, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{z: z.Named(name)}, nil
}

// NewZapLoggerFrom wraps an existing zap.Logger.
func NewZapLoggerFrom(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

func (l ZapLogger) fields(args []interface{}) []zap.Field {
	la := parseArgs(args)
	flds := make([]zap.Field, 0, len(la.fields)+2)
	if la.err != nil {
		flds = append(flds, zap.Error(la.err))
	}
	if la.req != nil {
		flds = append(flds, zap.String("method", la.req.Method), zap.Stringer("url", la.req.URL))
	}
	for k, v := range la.fields {
		flds = append(flds, zap.Any(k, v))
	}
	return flds
}

func (l ZapLogger) Debug(msg string, args ...interface{}) { l.z.Debug(msg, l.fields(args)...) }
func (l ZapLogger) Info(msg string, args ...interface{})  { l.z.Info(msg, l.fields(args)...) }
func (l ZapLogger) Warn(msg string, args ...interface{})  { l.z.Warn(msg, l.fields(args)...) }
func (l ZapLogger) Error(msg string, args ...interface{}) { l.z.Error(msg, l.fields(args)...) }
func (l ZapLogger) Fatal(msg string, args ...interface{}) { l.z.Fatal(msg, l.fields(args)...) }

func (l ZapLogger) Sync() error { return l.z.Sync() }
