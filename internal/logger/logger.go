package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Zap - общий логгер приложения.
type Zap struct {
	*zap.Logger
}

// New собирает логгер: цветная консоль для dev/local, JSON для остальных окружений.
// Если задан file, записи дублируются в JSON-файл с ротацией.
func New(env, level, file string) (*Zap, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("уровень логирования %q: %w", level, err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(env), zapcore.Lock(os.Stdout), lvl),
	}
	if file != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   file,
				MaxSize:    50,
				MaxBackups: 3,
				MaxAge:     14,
				Compress:   true,
			}),
			lvl,
		))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	return &Zap{Logger: l}, nil
}

// Nop - логгер, который ничего не пишет.
func Nop() *Zap {
	return &Zap{Logger: zap.NewNop()}
}

// From оборачивает готовый *zap.Logger, например zaptest.NewLogger(t).
func From(l *zap.Logger) *Zap {
	return &Zap{Logger: l}
}

// Named возвращает дочерний логгер компонента.
func (z *Zap) Named(name string) *Zap {
	return &Zap{Logger: z.Logger.Named(name)}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func consoleEncoder(env string) zapcore.Encoder {
	switch env {
	case "dev", "local":
		cfg := encoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		return zapcore.NewConsoleEncoder(cfg)
	default:
		return zapcore.NewJSONEncoder(encoderConfig())
	}
}
