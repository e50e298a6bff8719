package entities

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrEmptySession     = errors.New("no data in session")
	ErrClientClosed     = errors.New("client closed")
)

// ConnectionError reports a failed connection attempt to the device.
type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
