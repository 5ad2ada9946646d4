package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Log levels in increasing severity.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var levelRank = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// StandardLogger writes JSON-line LogEntry records to a writer, filtered by
// a minimum level. It is safe for concurrent use.
type StandardLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  int
	fields []Field
}

// NewLogger creates a StandardLogger writing to out at the given minimum
// level. Unknown levels default to info.
func NewLogger(out io.Writer, level string) *StandardLogger {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[LevelInfo]
	}
	return &StandardLogger{
		mu:    &sync.Mutex{},
		out:   out,
		level: rank,
	}
}

func (l *StandardLogger) log(level, msg string, fields []Field) {
	if levelRank[level] < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   msg,
	}

	all := append(append([]Field{}, l.fields...), fields...)
	if len(all) > 0 {
		entry.Fields = make(map[string]interface{}, len(all))
		for _, f := range all {
			entry.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Fall back to a plain line so the event is not lost
		data = []byte(fmt.Sprintf(`{"level":%q,"message":%q}`, level, msg))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, string(data))
}

// Debug logs a debug message
func (l *StandardLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }

// Info logs an info message
func (l *StandardLogger) Info(msg string, fields ...Field) { l.log(LevelInfo, msg, fields) }

// Warn logs a warning message
func (l *StandardLogger) Warn(msg string, fields ...Field) { l.log(LevelWarn, msg, fields) }

// Error logs an error message
func (l *StandardLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

// WithFields returns a new logger that includes the given fields on every
// entry. The underlying writer and level are shared.
func (l *StandardLogger) WithFields(fields ...Field) Logger {
	child := &StandardLogger{
		mu:     l.mu,
		out:    l.out,
		level:  l.level,
		fields: append(append([]Field{}, l.fields...), fields...),
	}
	return child
}

// LogFlowExecution records flow execution events
func (l *StandardLogger) LogFlowExecution(flowID string, executionID string, event string, data map[string]interface{}) {
	fields := []Field{
		{Key: "flow_id", Value: flowID},
		{Key: "execution_id", Value: executionID},
		{Key: "event", Value: event},
	}
	for k, v := range data {
		fields = append(fields, Field{Key: k, Value: v})
	}
	l.log(LevelInfo, "flow execution", fields)
}

// LogNodeExecution records node execution events
func (l *StandardLogger) LogNodeExecution(flowID string, executionID string, nodeID string, event string, data map[string]interface{}) {
	fields := []Field{
		{Key: "flow_id", Value: flowID},
		{Key: "execution_id", Value: executionID},
		{Key: "node_id", Value: nodeID},
		{Key: "event", Value: event},
	}
	for k, v := range data {
		fields = append(fields, Field{Key: k, Value: v})
	}
	l.log(LevelInfo, "node execution", fields)
}

// NopLogger discards every log entry. Useful in tests.
type NopLogger struct{}

// NewNopLogger creates a logger that discards everything.
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}

func (n NopLogger) WithFields(...Field) Logger { return n }

func (NopLogger) LogFlowExecution(string, string, string, map[string]interface{}) {}

func (NopLogger) LogNodeExecution(string, string, string, string, map[string]interface{}) {}
