package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

func New(cfg struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}) *Logger {
	file := cfg.File
	if file == "" {
		file = "logs/bot.log"
	}

	if !filepath.IsAbs(file) {
		dir, err := os.Getwd()
		if err != nil {
			log.Fatal("Failed to get working directory:", err)
		}
		file = filepath.Join(dir, file)
	}

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		log.Fatal("Failed to create log directory:", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", file, err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zl := zerolog.New(io.MultiWriter(console, f)).Level(level).With().Timestamp().Logger()

	zl.Info().Str("file", file).Msg("Logger initialized")

	return &Logger{zl: zl}
}

func (l *Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

func (l *Logger) Error(msg string) {
	l.zl.Error().Msg(msg)
}

func (l *Logger) Fatal(msg string) {
	l.zl.Fatal().Msg(msg)
}
