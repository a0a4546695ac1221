// Package monitor follows the child output log and hands each new line to
// the daemon log.
package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nxadm/tail"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Monitor watches a file for new lines
type Monitor struct {
	filePath string
	tail     *tail.Tail
	decoder  *encoding.Decoder
}

// LookupCharset resolves a charset label such as "utf-8", "latin1" or
// "windows-1252". An empty label means UTF-8.
func LookupCharset(label string) (encoding.Encoding, error) {
	if strings.TrimSpace(label) == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	return enc, nil
}

// NewMonitor starts following filePath from its current end. The file does
// not have to exist yet.
func NewMonitor(filePath, charset string) (*Monitor, error) {
	enc, err := LookupCharset(charset)
	if err != nil {
		return nil, err
	}

	t, err := tail.TailFile(filePath, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      true, // The child truncates or recreates the log at will
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail file: %w", err)
	}

	return &Monitor{
		filePath: filePath,
		tail:     t,
		decoder:  enc.NewDecoder(),
	}, nil
}

// Run calls fn for every decoded line until ctx is cancelled or the tail stops.
func (m *Monitor) Run(ctx context.Context, fn func(line string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-m.tail.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				continue
			}
			text, err := m.decoder.String(line.Text)
			if err != nil {
				text = line.Text
			}
			fn(text)
		}
	}
}

// Stop stops the monitor
func (m *Monitor) Stop() {
	_ = m.tail.Stop()
	m.tail.Cleanup()
}
