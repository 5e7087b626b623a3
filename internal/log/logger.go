package log

import (
	"os"
	"strings"

	"keyhub/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level 全域門檻；設定檔熱更新時由 ApplyLevel 調整
var Level = zap.NewAtomicLevelAt(zap.InfoLevel)

func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	ApplyLevel(conf.Log.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.LevelKey = "level"
	encCfg.TimeKey = "ts"
	encCfg.CallerKey = "caller"
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	// warn 以下走 stdout，warn 以上走 stderr
	stdoutLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return Level.Enabled(l) && l < zapcore.WarnLevel
	})
	stderrLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return Level.Enabled(l) && l >= zapcore.WarnLevel
	})
	tee := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), stdoutLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), stderrLevel),
	)

	logger := zap.New(tee,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(
			zap.String("service", conf.App.Name),
			zap.String("version", conf.App.Version),
		),
	)
	logger.Info("zap logger ready", zap.String("level", Level.String()))
	return logger, nil
}

// ApplyLevel 無法辨識的層級退回 info
func ApplyLevel(level string) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zap.InfoLevel
	}
	Level.SetLevel(lvl)
}
