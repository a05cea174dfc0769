// Package heartbeat pings an external uptime monitor at a fixed interval.
package heartbeat

import (
	"context"
	"log"
	"net/http"
	"time"
)

// DefaultInterval matches the expectations of hosted uptime monitors.
const DefaultInterval = time.Minute

// Pinger sends periodic GET requests to a monitoring URL. A stopped stream
// of pings is the operational signal that the pipeline is down.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *log.Logger
}

// NewPinger creates a Pinger. An interval of zero selects DefaultInterval.
func NewPinger(url string, interval time.Duration, logger *log.Logger) *Pinger {
	if interval == 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Run pings immediately and then on every interval tick until ctx is
// cancelled. Failed pings are logged, never fatal.
func (p *Pinger) Run(ctx context.Context) {
	if p.url == "" {
		return
	}

	p.ping(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Printf("heartbeat request: %v", err)
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Printf("unable to reach heartbeat service: %v", err)
		return
	}
	resp.Body.Close()
}
