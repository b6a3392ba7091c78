/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package logger

import (
    "io"
    "os"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

func New(cfg config.Config) zerolog.Logger {
    return newWith(cfg, os.Stdout)
}

func newWith(cfg config.Config, out io.Writer) zerolog.Logger {
    level, err := zerolog.ParseLevel(cfg.LogLevel)
    if err != nil || cfg.LogLevel == "" { level = zerolog.InfoLevel }
    zerolog.TimeFieldFormat = time.RFC3339
    var w io.Writer = out
    if cfg.AppEnv == "dev" {
        w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
    }
    logger := zerolog.New(w).Level(level).With().Timestamp().Str("service", "capacity-planning").Logger()
    log.Logger = logger
    return logger
}
