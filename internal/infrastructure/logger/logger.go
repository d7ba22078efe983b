// Package logger provides the process-wide leveled loggers. Informational
// output goes to stdout; warnings and errors go to stderr so container
// runtimes can split the streams.
package logger

import (
	"log"
	"os"
)

var (
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
	Warn  *log.Logger
)

func init() {
	logFlags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile

	Info = log.New(os.Stdout, "INFO: ", logFlags)
	Debug = log.New(os.Stdout, "DEBUG: ", logFlags)
	Warn = log.New(os.Stderr, "WARN: ", logFlags)
	Error = log.New(os.Stderr, "ERROR: ", logFlags)
}
