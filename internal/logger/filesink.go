package logger

import (
	"os"

	"github.com/lazy-eggplant/vs.logger/internal/entry"
)

// fileSink appends one line per entry. The file handle is unbuffered, so
// every write is flushed to the OS before the ordering lock is released; the
// file is opened in append mode and never truncated.
type fileSink struct {
	f *os.File
}

func openFileSink(path string) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f}, nil
}

func (s *fileSink) write(e entry.Entry) error {
	_, err := s.f.WriteString(entry.FormatLine(e))
	return err
}

func (s *fileSink) close() error {
	return s.f.Close()
}
