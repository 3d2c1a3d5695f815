// Package logger builds the zap logger of both binaries: a console core plus
// an optional rotated JSON file.
package logger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/config"
)

// New returns a logger writing to console and, when cfg.File is set, to a
// rotated file. The file records info and above whatever the console level.
// The returned close flushes and releases the file.
func New(cfg config.Log, console io.Writer) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	jsonEnc := zapcore.NewJSONEncoder(encoderConfig())
	consoleEnc := jsonEnc
	if !cfg.JSON {
		consoleEnc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(consoleEnc, zapcore.Lock(zapcore.AddSync(console)), level)}

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		fileLevel := level
		if fileLevel > zapcore.InfoLevel {
			fileLevel = zapcore.InfoLevel
		}
		cores = append(cores, zapcore.NewCore(jsonEnc, zapcore.AddSync(rotator), fileLevel))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	closeFn := func() error {
		_ = l.Sync()
		if rotator != nil {
			return rotator.Close()
		}
		return nil
	}
	return l, closeFn, nil
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.MessageKey = "message"
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}
