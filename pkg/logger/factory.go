// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serverlogger

import (
	"github.com/livekit/protocol/logger"
	"github.com/pion/logging"
	"go.uber.org/zap/zapcore"
)

const defaultPionLevel = zapcore.ErrorLevel

// LoggerFactory hands pion (webrtc, ice, turn) loggers that write through the server logger.
type LoggerFactory struct {
	logger logger.Logger
	level  zapcore.Level
}

// NewLoggerFactory creates a factory gated at level, one of debug, info, warn, error.
// An empty or unknown level falls back to error.
func NewLoggerFactory(l logger.Logger, level string) *LoggerFactory {
	lvl := defaultPionLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = defaultPionLevel
		}
	}
	return &LoggerFactory{
		logger: l.WithName("pion"),
		level:  lvl,
	}
}

func (f *LoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &logAdapter{
		logger: f.logger.WithValues("scope", scope),
		level:  f.level,
	}
}
