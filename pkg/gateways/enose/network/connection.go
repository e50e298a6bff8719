package network

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/janael-pinheiro/enose-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
)

const (
	dialTimeout       = 5 * time.Second
	lineTerminator    = "\n"
	maximumPortNumber = 65535
)

// Connection is the byte stream to the acquisition device.
type Connection interface {
	io.Reader
	WriteLine(text string) error
	Close() error
}

type tcpConnection struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// NewConnection wraps an established stream, mainly so tests can hand in one
// side of a net.Pipe.
func NewConnection(conn net.Conn) Connection {
	return &tcpConnection{conn: conn}
}

// Dial opens a TCP connection to host:port. A failed dial is retried up to
// retries times with exponential backoff; zero means a single attempt.
func Dial(ctx context.Context, host string, port int, retries uint64) (Connection, error) {
	address, err := JoinAddress(host, port)
	if err != nil {
		return nil, &entities.ConnectionError{Host: host, Port: port, Err: err}
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	var conn net.Conn
	dial := func() error {
		var dialErr error
		conn, dialErr = dialer.DialContext(ctx, "tcp", address)
		return dialErr
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	if err := backoff.Retry(dial, policy); err != nil {
		return nil, &entities.ConnectionError{Host: host, Port: port, Err: err}
	}
	return NewConnection(conn), nil
}

// JoinAddress validates host and port and formats them as a dial address.
func JoinAddress(host string, port int) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", errors.Wrap(entities.ErrInvalidAddress, "empty host")
	}
	if port <= 0 || port > maximumPortNumber {
		return "", errors.Wrapf(entities.ErrInvalidAddress, "port %d out of range", port)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func (c *tcpConnection) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

// WriteLine sends text followed by a single line terminator.
func (c *tcpConnection) WriteLine(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := io.WriteString(c.conn, text+lineTerminator)
	return err
}

func (c *tcpConnection) Close() error {
	return c.conn.Close()
}
