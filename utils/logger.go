package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Source    string                 `json:"source,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Error     string                 `json:"error,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
}

// Logger represents a structured logger
type Logger struct {
	level  LogLevel
	format string // "json" or "text"
}

// NewLogger creates a new logger instance
func NewLogger(level, format string) *Logger {
	if format != "json" && format != "text" {
		format = "json"
	}
	return &Logger{
		level:  parseLogLevel(level),
		format: format,
	}
}

// parseLogLevel parses string log level to LogLevel enum
func parseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Debug logs a debug message
func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.log(DEBUG, message, "", "", "", context...)
}

// Info logs an info message
func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.log(INFO, message, "", "", "", context...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.log(WARN, message, "", "", "", context...)
}

// Error logs an error message
func (l *Logger) Error(message string, err error, context ...map[string]interface{}) {
	errorMsg := ""
	if err != nil {
		errorMsg = err.Error()
	}
	l.log(ERROR, message, errorMsg, "", "", context...)
}

// log builds the entry, resolves the caller and writes the output
func (l *Logger) log(level LogLevel, message, errorMsg, traceID, source string, context ...map[string]interface{}) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if ok {
		parts := strings.Split(file, "/")
		file = parts[len(parts)-1]
	}

	mergedContext := make(map[string]interface{})
	for _, ctx := range context {
		for k, v := range ctx {
			mergedContext[k] = v
		}
	}

	l.output(LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   message,
		TraceID:   traceID,
		Source:    source,
		Context:   mergedContext,
		Error:     errorMsg,
		File:      file,
		Line:      line,
	})
}

// output writes the log entry to stdout
func (l *Logger) output(entry LogEntry) {
	if l.format == "json" {
		jsonData, err := json.Marshal(entry)
		if err != nil {
			log.Printf("Error marshaling log entry: %v", err)
			return
		}
		fmt.Println(string(jsonData))
		return
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("[%s] %s: %s",
		entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level, entry.Message))
	if entry.TraceID != "" {
		out.WriteString(fmt.Sprintf(" [trace_id=%s]", entry.TraceID))
	}
	if entry.Source != "" {
		out.WriteString(fmt.Sprintf(" [source=%s]", entry.Source))
	}
	if entry.File != "" && entry.Line > 0 {
		out.WriteString(fmt.Sprintf(" [%s:%d]", entry.File, entry.Line))
	}
	if entry.Error != "" {
		out.WriteString(fmt.Sprintf(" [error=%s]", entry.Error))
	}
	if len(entry.Context) > 0 {
		contextStr, _ := json.Marshal(entry.Context)
		out.WriteString(fmt.Sprintf(" [context=%s]", string(contextStr)))
	}
	fmt.Println(out.String())
}

// LoggerWithContext represents a logger with additional context
type LoggerWithContext struct {
	logger  *Logger
	traceID string
	source  string
	context map[string]interface{}
}

// WithTraceID adds trace ID to log entries
func (l *Logger) WithTraceID(traceID string) *LoggerWithContext {
	return &LoggerWithContext{logger: l, traceID: traceID}
}

// WithSource adds source information to log entries
func (l *Logger) WithSource(source string) *LoggerWithContext {
	return &LoggerWithContext{logger: l, source: source}
}

// WithTraceID adds trace ID to log entries
func (lwc *LoggerWithContext) WithTraceID(traceID string) *LoggerWithContext {
	return &LoggerWithContext{logger: lwc.logger, traceID: traceID, source: lwc.source, context: lwc.context}
}

// WithSource adds source information to log entries
func (lwc *LoggerWithContext) WithSource(source string) *LoggerWithContext {
	return &LoggerWithContext{logger: lwc.logger, traceID: lwc.traceID, source: source, context: lwc.context}
}

// WithContext adds context to the logger
func (lwc *LoggerWithContext) WithContext(context map[string]interface{}) *LoggerWithContext {
	newContext := make(map[string]interface{})
	for k, v := range lwc.context {
		newContext[k] = v
	}
	for k, v := range context {
		newContext[k] = v
	}
	return &LoggerWithContext{logger: lwc.logger, traceID: lwc.traceID, source: lwc.source, context: newContext}
}

// Debug logs a debug message with context
func (lwc *LoggerWithContext) Debug(message string, context ...map[string]interface{}) {
	lwc.logger.log(DEBUG, message, "", lwc.traceID, lwc.source, lwc.mergedContext(context...))
}

// Info logs an info message with context
func (lwc *LoggerWithContext) Info(message string, context ...map[string]interface{}) {
	lwc.logger.log(INFO, message, "", lwc.traceID, lwc.source, lwc.mergedContext(context...))
}

// Warn logs a warning message with context
func (lwc *LoggerWithContext) Warn(message string, context ...map[string]interface{}) {
	lwc.logger.log(WARN, message, "", lwc.traceID, lwc.source, lwc.mergedContext(context...))
}

// Error logs an error message with context
func (lwc *LoggerWithContext) Error(message string, err error, context ...map[string]interface{}) {
	errorMsg := ""
	if err != nil {
		errorMsg = err.Error()
	}
	lwc.logger.log(ERROR, message, errorMsg, lwc.traceID, lwc.source, lwc.mergedContext(context...))
}

// mergedContext folds the stored context together with per-call context
func (lwc *LoggerWithContext) mergedContext(context ...map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for k, v := range lwc.context {
		merged[k] = v
	}
	for _, ctx := range context {
		for k, v := range ctx {
			merged[k] = v
		}
	}
	return merged
}

// Global logger instance
var globalLogger *Logger

// InitLogger initializes the global logger
func InitLogger(level, format string) {
	globalLogger = NewLogger(level, format)
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewLogger("info", "json")
	}
	return globalLogger
}
