package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Levels: 0 silent, 1 info/warn/err, 2 debug, 3 dev.

var DiscardLog = &Log{
	logLevel: 0,
	stdout:   io.Discard,
	stderr:   io.Discard,
}

func New() *Log {
	return &Log{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logLevel: 1,
	}
}

type Log struct {
	logLevel uint8
	stdout   io.Writer
	stderr   io.Writer
	sync.Mutex
}

func (l *Log) SetLogLevel(lvl uint8) {
	l.Lock()
	defer l.Unlock()
	l.logLevel = lvl
}
func (l *Log) GetLogLevel() uint8 {
	l.Lock()
	defer l.Unlock()
	return l.logLevel
}

// SetStdout redirects normal output, used when an interactive prompt owns
// the terminal.
func (l *Log) SetStdout(w io.Writer) {
	l.Lock()
	defer l.Unlock()
	l.stdout = w
}
func (l *Log) SetStderr(w io.Writer) {
	l.Lock()
	defer l.Unlock()
	l.stderr = w
}

var Reset = "\033[0m"
var Red = "\033[31m"
var Green = "\033[32m"
var Yellow = "\033[33m"
var Cyan = "\033[36m"
var Bold = "\033[1m"

func prefix() string {
	_, file, line, _ := runtime.Caller(3)
	spl := strings.Split(file, "/")
	caller := strings.Split(spl[len(spl)-1], ".")[0] + ":" + strconv.Itoa(line)
	for len(caller) < 18 {
		caller += " "
	}

	t := time.Now()
	return fmt.Sprintf("%02d:%02d:%02d.%03d %s", t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/1000/1000, caller)
}

func (l *Log) write(minLevel uint8, color, tag string, msg string) {
	l.Lock()
	defer l.Unlock()
	if l.logLevel < minLevel {
		return
	}
	w := l.stdout
	if tag == "E " || tag == "F " {
		w = l.stderr
	}
	w.Write([]byte(prefix() + color + tag + msg + Reset))
}

func (l *Log) Info(a ...any) {
	l.write(1, "", "I ", fmt.Sprintln(a...))
}
func (l *Log) Infof(format string, a ...any) {
	l.write(1, "", "I ", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Warn(a ...any) {
	l.write(1, Yellow, "W ", fmt.Sprintln(a...))
}
func (l *Log) Warnf(format string, a ...any) {
	l.write(1, Yellow, "W ", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Err(a ...any) {
	l.write(1, Red, "E ", fmt.Sprintln(a...))
}
func (l *Log) Errf(format string, a ...any) {
	l.write(1, Red, "E ", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Debug(a ...any) {
	l.write(2, Cyan, "D ", fmt.Sprintln(a...))
}
func (l *Log) Debugf(format string, a ...any) {
	l.write(2, Cyan, "D ", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Dev(a ...any) {
	l.write(3, Green, "d ", fmt.Sprintln(a...))
}
func (l *Log) Devf(format string, a ...any) {
	l.write(3, Green, "d ", fmt.Sprintf(format+"\n", a...))
}

func (l *Log) Fatal(a ...any) {
	l.write(1, Red, "F ", fmt.Sprintln(a...))
	panic(fmt.Sprintln(a...))
}
