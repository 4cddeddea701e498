// Package logger 初始化全局zap日志
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init builds the process logger: JSON to a rotated file when path is set,
// console output always. The returned logger is also installed as zap's global.
func Init(level, path string, maxSizeMB, maxBackups int) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stdout), lvl),
	}

	if path != "" {
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			Compress:   true,
		}
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.TimeKey = "ts"
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(rotated), lvl))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(log)
	return log, nil
}
