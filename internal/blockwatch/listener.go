// Package blockwatch receives new-block notifications over a local UDP
// socket from the chain-watching sidecar.
package blockwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
)

// Notification is one new-block datagram payload.
type Notification struct {
	Level int64 `json:"level"`
}

// Listener binds a UDP port and invokes a handler per decoded notification.
// Malformed datagrams are logged and dropped; the handler runs on the read
// loop, so it must return quickly or hand off.
type Listener struct {
	port   int
	logger *log.Logger
}

// NewListener creates a Listener on the given UDP port.
func NewListener(port int, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{port: port, logger: logger}
}

// Listen blocks reading datagrams until ctx is cancelled.
func (l *Listener) Listen(ctx context.Context, handle func(Notification)) error {
	conn, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("bind udp port %d: %w", l.port, err)
	}
	defer conn.Close()

	l.logger.Printf("listening for blocks on port %d", l.port)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 4096)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read datagram: %w", err)
		}

		var notification Notification
		if err := json.Unmarshal(buf[:n], &notification); err != nil {
			l.logger.Printf("dropping malformed block notification: %v", err)
			continue
		}

		handle(notification)
	}
}
