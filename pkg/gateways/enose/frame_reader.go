package enose

import (
	"bufio"
	"io"
)

const readChunkSize = 1024

// FrameReader splits a byte stream into newline-terminated lines. Partial
// lines are kept across reads; a trailing fragment without terminator is
// discarded when the source ends.
type FrameReader struct {
	reader *bufio.Reader
}

func NewFrameReader(source io.Reader) *FrameReader {
	return &FrameReader{reader: bufio.NewReaderSize(source, readChunkSize)}
}

// Next returns the next complete line without its terminator. It blocks
// until a terminator arrives and returns the source error once the stream
// is closed or fails.
func (f *FrameReader) Next() (string, error) {
	line, err := f.reader.ReadBytes('\n')
	if err != nil {
		return "", err
	}
	return string(line[:len(line)-1]), nil
}
