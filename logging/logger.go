package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when a run starts. Each
// module/package should create its own sub-logger. This allows to create unique logging instances depending on the
// use case.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger describes a custom logging object that can log events to any arbitrary channel and can handle specialized
// output to console as well.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// multiLogger describes a logger that will be used to output logs to any arbitrary channel(s) in structured
	// format.
	multiLogger zerolog.Logger

	// consoleLogger describes a logger that will be used to output unstructured output to console.
	consoleLogger zerolog.Logger

	// writers describes a list of io.Writer objects where log output will go. This writers list can be appended to /
	// removed from.
	writers []io.Writer
}

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. The Logger can output to console, if enabled,
// and output logs to any number of arbitrary io.Writer channels.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// The two base loggers are effectively loggers that are disabled.
	// We are creating instances of them so that we do not get nil pointer dereferences down the line.
	baseMultiLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	baseConsoleLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	// If we are provided a list of writers, update the multi logger
	if len(writers) > 0 {
		baseMultiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}

	// If console logging is enabled, update the console logger
	if consoleEnabled {
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}
		consoleWriter.FormatTimestamp = func(i interface{}) string { return "" }
		baseConsoleLogger = zerolog.New(consoleWriter).Level(level)
	}

	return &Logger{
		level:         level,
		multiLogger:   baseMultiLogger,
		consoleLogger: baseConsoleLogger,
		writers:       writers,
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some key.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subMultiLogger := l.multiLogger.With().Str(key, value).Logger()
	subConsoleLogger := l.consoleLogger.With().Str(key, value).Logger()
	return &Logger{
		level:         l.level,
		multiLogger:   subMultiLogger,
		consoleLogger: subConsoleLogger,
		writers:       l.writers,
	}
}

// AddWriter will add a writer to the list of channels where structured log output will be sent.
func (l *Logger) AddWriter(writer io.Writer) {
	// Check to see if the writer is already in the array of writers
	for _, w := range l.writers {
		if writer == w {
			return
		}
	}

	// Add it to the list of writers and update the multi logger
	l.writers = append(l.writers, writer)
	l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	msg, err, info := buildMsg(args...)
	chainAndSend(l.consoleLogger.Trace(), l.multiLogger.Trace(), msg, err, info)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	msg, err, info := buildMsg(args...)
	chainAndSend(l.consoleLogger.Debug(), l.multiLogger.Debug(), msg, err, info)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	msg, err, info := buildMsg(args...)
	chainAndSend(l.consoleLogger.Info(), l.multiLogger.Info(), msg, err, info)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	msg, err, info := buildMsg(args...)
	chainAndSend(l.consoleLogger.Warn(), l.multiLogger.Warn(), msg, err, info)
}

// Error is a wrapper function that will log an error event
func (l *Logger) Error(args ...any) {
	msg, err, info := buildMsg(args...)
	chainAndSend(l.consoleLogger.Error(), l.multiLogger.Error(), msg, err, info)
}

// Panic is a wrapper function that will log a panic event
func (l *Logger) Panic(args ...any) {
	msg, err, info := buildMsg(args...)
	chainAndSend(l.consoleLogger.Panic(), l.multiLogger.Panic(), msg, err, info)
}

// buildMsg describes a function that takes in a variadic list of arguments of any type and returns a message string
// and, optionally, an error and a StructuredLogInfo object. The error and the StructuredLogInfo can be used to add
// additional context to log messages.
func buildMsg(args ...any) (string, error, StructuredLogInfo) {
	// Guard clause
	if len(args) == 0 {
		return "", nil, nil
	}

	// Initialize the string buffer and the structured log info object
	output := make([]string, 0)
	var info StructuredLogInfo
	var err error

	// Iterate through each argument in the list and switch on type
	for _, arg := range args {
		switch t := arg.(type) {
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		case error:
			// Note that only one error can be provided for each log message
			err = t
		default:
			output = append(output, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(output, ""), err, info
}

// chainAndSend is a helper function that takes in a *zerolog.Event for console and multi-log output, chains any
// error and StructuredLogInfo provided to it, adds the associated message, and sends out the logs to their respective
// channels.
func chainAndSend(consoleLog *zerolog.Event, multiLog *zerolog.Event, msg string, err error, info StructuredLogInfo) {
	// First append the errors to each event. Note that even if err is nil, there will not be a panic here
	consoleLog.Err(err)
	multiLog.Err(err)

	// If we are provided a structured log info object, add that as a key-value pair to the events
	if info != nil {
		consoleLog.Any("info", info)
		multiLog.Any("info", info)
	}

	// Append the message to each event. This will also result in the log events being sent out to their respective
	// streams. Note that we are deferring the msg to the multi logger in case we are logging a panic and want to make
	// sure that all channels receive the log.
	defer multiLog.Msg(msg)
	consoleLog.Msg(msg)
}
