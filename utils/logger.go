/*
 * Copyright 2025 careforge.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger aliases the logrus logger used across the module.
type Logger = logrus.Logger

var (
	defaultLevel     = ParseLogLevel(EnvDefaultString("DATAKIT_LOG_LEVEL", "info"))
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
)

// NewLogger returns the named logger, creating and registering it on first
// use. Loggers share the console formatter and the configured base level.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		return l
	}

	l = logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(defaultLevel)
	l.SetFormatter(&consoleFormatter{LoggerName: name})

	loggerRegistryMu.Lock()
	if existing, ok := loggerRegistry[name]; ok {
		l = existing
	} else {
		loggerRegistry[name] = l
	}
	loggerRegistryMu.Unlock()
	return l
}

// GetLogger returns a registered logger, or nil when the name is unknown.
func GetLogger(name string) *logrus.Logger {
	loggerRegistryMu.RLock()
	defer loggerRegistryMu.RUnlock()
	return loggerRegistry[name]
}

// SetLoggerLevel adjusts the level of one named logger. It reports whether
// the logger was registered.
func SetLoggerLevel(name string, levelStr string) bool {
	lvl := ParseLogLevel(levelStr)
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	l.SetLevel(lvl)
	return true
}

// SetAllLoggersLevel adjusts every registered logger and the base level for
// loggers created afterwards.
func SetAllLoggersLevel(lvl logrus.Level) {
	loggerRegistryMu.Lock()
	defaultLevel = lvl
	for _, l := range loggerRegistry {
		l.SetLevel(lvl)
	}
	loggerRegistryMu.Unlock()
}

// ParseLogLevel maps a level string to a logrus level, defaulting to info.
func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// consoleFormatter renders "2006-01-02 15:04:05.000 LEVEL [name] message".
// Levels are colorized on terminals; color detection is handled by the color
// package itself.
type consoleFormatter struct {
	LoggerName string
}

var levelColors = map[logrus.Level]*color.Color{
	logrus.TraceLevel: color.New(color.FgHiBlack),
	logrus.DebugLevel: color.New(color.FgCyan),
	logrus.InfoLevel:  color.New(color.FgGreen),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed),
	logrus.FatalLevel: color.New(color.FgRed),
	logrus.PanicLevel: color.New(color.FgRed),
}

func (f *consoleFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := fmt.Sprintf("%-5s", strings.ToUpper(e.Level.String()))
	if c, ok := levelColors[e.Level]; ok {
		level = c.Sprint(level)
	}
	line := fmt.Sprintf("%s %s [%s] %s\n",
		e.Time.Format("2006-01-02 15:04:05.000"),
		level,
		f.LoggerName,
		e.Message,
	)
	return []byte(line), nil
}
