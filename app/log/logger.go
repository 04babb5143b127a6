package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a config value such as "debug" or "WARN" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type Logger struct {
	mu     sync.Mutex
	level  Level
	writer io.Writer
	out    *log.Logger
}

var globalLogger = New(os.Stdout, LevelInfo)

func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level:  level,
		writer: w,
		out:    log.New(w, "", log.LstdFlags),
	}
}

func Debug(msg string, args ...any) {
	globalLogger.log(LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	globalLogger.log(LevelInfo, msg, args...)
}

func Warn(msg string, args ...any) {
	globalLogger.log(LevelWarn, msg, args...)
}

func Error(msg string, args ...any) {
	globalLogger.log(LevelError, msg, args...)
}

func SetLevel(level Level) {
	globalLogger.SetLevel(level)
}

func GetLevel() Level {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	return globalLogger.level
}

func SetWriter(w io.Writer) {
	globalLogger.SetWriter(w)
}

// StdLogger returns a standard library logger that writes through the global writer,
// for http.Server.ErrorLog and similar hooks.
func StdLogger() *log.Logger {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	return log.New(globalLogger.writer, "", log.LstdFlags)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
	l.out.SetOutput(w)
}

// log writes "[LEVEL] msg k1=v1 k2=v2". A trailing key without a value is printed bare.
func (l *Logger) log(level Level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		b.WriteString(" ")
		if i+1 < len(args) {
			fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
		} else {
			fmt.Fprint(&b, args[i])
		}
	}

	l.out.Println(b.String())
}
