package core

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logLevel  = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	logOutput zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	logSilent bool
	sugar     = buildLogger()
)

func buildLogger() *zap.SugaredLogger {
	if logSilent {
		return zap.NewNop().Sugar()
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), logOutput, logLevel)
	return zap.New(core).Sugar()
}

// installLogger reconstrueix el logger i el fa global, perquè db i gedcom
// escriguin pel mateix lloc amb zap.S().
func installLogger() {
	sugar = buildLogger()
	zap.ReplaceGlobals(sugar.Desugar())
}

// SetLogLevel accepta silent, error, warn, info i debug.
func SetLogLevel(levelStr string) {
	level := strings.ToLower(strings.TrimSpace(levelStr))
	logSilent = false
	switch level {
	case "silent":
		logSilent = true
	case "error":
		logLevel.SetLevel(zapcore.ErrorLevel)
	case "warn", "warning":
		logLevel.SetLevel(zapcore.WarnLevel)
	case "debug":
		logLevel.SetLevel(zapcore.DebugLevel)
	default:
		logLevel.SetLevel(zapcore.InfoLevel)
	}
	installLogger()
	sugar.Debugf("nivell de log configurat: %s", level)
}

func Debugf(format string, v ...interface{}) { sugar.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { sugar.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { sugar.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { sugar.Errorf(format, v...) }

// AttachLoggerOutput redirigeix la sortida del log.
func AttachLoggerOutput(w io.Writer) {
	logOutput = zapcore.Lock(zapcore.AddSync(w))
	installLogger()
}
