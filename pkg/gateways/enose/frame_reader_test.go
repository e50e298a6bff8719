package enose

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

// chunkedReader hands out the stream in fixed-size pieces.
type chunkedReader struct {
	data  []byte
	chunk int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.chunk
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func readAllLines(reader *FrameReader) ([]string, error) {
	var lines []string
	for {
		line, err := reader.Next()
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
}

const stream = "DATA:{\"timestamp\":1000,\"co_m\":1.5}\nSTATUS:{\"msg_type\":\"motor\",\"motor\":\"M1\",\"speed\":40}\n\nnoise\nDATA:{\"timestamp\":3000,\"sample\":\"Daun Kari\"}\n"

func TestFrameReaderSplitsLines(t *testing.T) {
	lines, err := readAllLines(NewFrameReader(strings.NewReader(stream)))

	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []string{
		`DATA:{"timestamp":1000,"co_m":1.5}`,
		`STATUS:{"msg_type":"motor","motor":"M1","speed":40}`,
		"",
		"noise",
		`DATA:{"timestamp":3000,"sample":"Daun Kari"}`,
	}, lines)
}

func TestFrameReaderIsChunkingInvariant(t *testing.T) {
	expected, _ := readAllLines(NewFrameReader(strings.NewReader(stream)))

	for _, chunk := range []int{1, 2, 3, 7, 16, 64, 4096} {
		lines, err := readAllLines(NewFrameReader(&chunkedReader{data: []byte(stream), chunk: chunk}))
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, expected, lines, "chunk size %d", chunk)
	}
	lines, _ := readAllLines(NewFrameReader(iotest.OneByteReader(strings.NewReader(stream))))
	assert.Equal(t, expected, lines)
}

func TestFrameReaderKeepsMultibyteRunesSplitAcrossReads(t *testing.T) {
	text := "STATUS:{\"msg_type\":\"status\",\"msg\":\"Kalibrasi selesai ✓\"}\n"
	lines, _ := readAllLines(NewFrameReader(iotest.OneByteReader(strings.NewReader(text))))

	assert.Equal(t, []string{strings.TrimSuffix(text, "\n")}, lines)
}

func TestFrameReaderDiscardsTrailingFragment(t *testing.T) {
	lines, err := readAllLines(NewFrameReader(strings.NewReader("first\nsecond\npartial")))

	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []string{"first", "second"}, lines)
}

func TestFrameReaderHandlesLinesLongerThanChunk(t *testing.T) {
	long := strings.Repeat("x", readChunkSize*3+17)
	lines, _ := readAllLines(NewFrameReader(bytes.NewBufferString(long + "\nshort\n")))

	assert.Equal(t, []string{long, "short"}, lines)
}

func TestFrameReaderPropagatesSourceError(t *testing.T) {
	failure := iotest.ErrTimeout
	reader := NewFrameReader(io.MultiReader(strings.NewReader("ok\n"), iotest.ErrReader(failure)))

	lines, err := readAllLines(reader)

	assert.Equal(t, []string{"ok"}, lines)
	assert.ErrorIs(t, err, failure)
}
