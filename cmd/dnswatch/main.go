package main

import (
	"log/slog"
	"os"

	"github.com/lite-lake/dnswatch/internal/infrastructure/logger"
	"github.com/lite-lake/dnswatch/internal/interfaces/cli"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("DNSWATCH_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}

	cli.Execute(&logger.Config{
		Level:     logLevel,
		Format:    os.Getenv("DNSWATCH_LOG_FORMAT"),
		Output:    os.Stderr,
		AddSource: os.Getenv("DNSWATCH_DEBUG") != "",
	})
}
