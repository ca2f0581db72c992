// Package nlog is a small leveled logger (Info/Warning/Error, each with
// f/ln variants). It does not rotate or buffer to per-severity files:
// this is a single-process service with no multi-node log-shipping
// requirement, so a single io.Writer (stderr by default) is enough.
package nlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects all log output; tests use this to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func sevChar(s severity) byte {
	switch s {
	case sevWarn:
		return 'W'
	case sevErr:
		return 'E'
	default:
		return 'I'
	}
}

func write(s severity, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%c %s %s\n", sevChar(s), time.Now().UTC().Format("15:04:05.000000"), msg)
}

func Infoln(args ...any)  { write(sevInfo, fmt.Sprintln(args...)) }
func Infof(f string, a ...any)    { write(sevInfo, fmt.Sprintf(f, a...)) }
func Warningln(args ...any)       { write(sevWarn, fmt.Sprintln(args...)) }
func Warningf(f string, a ...any) { write(sevWarn, fmt.Sprintf(f, a...)) }
func Errorln(args ...any)         { write(sevErr, fmt.Sprintln(args...)) }
func Errorf(f string, a ...any)   { write(sevErr, fmt.Sprintf(f, a...)) }
