package lumber

import "bytes"

// Writer turns byte streams from other libraries (the gorm SQL logger,
// for one) into log entries.
// Writer must be closed when finished to flush buffered data to the logger.
type Writer struct {
	// Log specifies the logger to which the Writer will write messages.
	// The Writer will panic if Log is unspecified.
	Log Logger
	// Level is one of Debug, Info, Warn or Error. Anything else logs at Debug.
	Level string
	buff  bytes.Buffer
}

// NewWriter returns a new Writer that writes to the provided Logger at the given level.
func NewWriter(log Logger, level string) *Writer {
	return &Writer{Log: log, Level: level}
}

// Write splits the input on newlines and posts each line as a new log entry.
// It returns the length of the input.
func (w *Writer) Write(bs []byte) (n int, err error) {
	n = len(bs)
	for len(bs) > 0 {
		bs = w.writeLine(bs)
	}
	return n, nil
}

// writeLine writes a single line from the input, returning the remaining,
// unconsumed bytes.
func (w *Writer) writeLine(line []byte) (remaining []byte) {
	idx := bytes.IndexByte(line, '\n')
	if idx < 0 {
		w.buff.Write(line)
		return nil
	}

	line, remaining = line[:idx], line[idx+1:]
	if w.buff.Len() == 0 {
		w.log(line)
		return remaining
	}

	w.buff.Write(line)
	w.flush(true)
	return remaining
}

// Close closes the writer, flushing any buffered data in the process.
func (w *Writer) Close() error {
	return w.Sync()
}

// Sync flushes buffered data to the logger as a new log entry even if it
// doesn't contain a newline. Empty buffers are not logged.
func (w *Writer) Sync() error {
	w.flush(false)
	return nil
}

func (w *Writer) flush(allowEmpty bool) {
	if allowEmpty || w.buff.Len() > 0 {
		w.log(w.buff.Bytes())
	}
	w.buff.Reset()
}

func (w *Writer) log(b []byte) {
	switch w.Level {
	case Info:
		w.Log.Infof("%s", string(b))
	case Warn:
		w.Log.Warnf("%s", string(b))
	case Error:
		w.Log.Errorf("%s", string(b))
	default:
		w.Log.Debugf("%s", string(b))
	}
}
