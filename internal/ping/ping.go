package ping

import (
	"errors"
	"fmt"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Result summarises one probe.
type Result struct {
	Target    string        `json:"target"`
	Reachable bool          `json:"reachable"`
	Sent      int           `json:"sent"`
	Received  int           `json:"received"`
	AvgRTT    time.Duration `json:"avg_rtt_ns"`
}

// Options tune a probe. Zero values use 3 packets, a 5s timeout and
// unprivileged (UDP) sockets.
type Options struct {
	Count      int
	Timeout    time.Duration
	Privileged bool
}

// PingHost sends ICMP echo requests to target. A host behind the address's
// power line that stops answering is a hint the outage is real.
func PingHost(target string, opts Options) (Result, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Result{}, errors.New("ping: empty target")
	}
	if opts.Count <= 0 {
		opts.Count = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	pinger, err := probing.NewPinger(target)
	if err != nil {
		return Result{}, fmt.Errorf("create pinger for %s: %w", target, err)
	}
	pinger.Count = opts.Count
	pinger.Timeout = opts.Timeout
	pinger.SetPrivileged(opts.Privileged)
	if err := pinger.Run(); err != nil {
		return Result{}, fmt.Errorf("ping %s: %w", target, err)
	}

	stats := pinger.Statistics()
	return Result{
		Target:    target,
		Reachable: stats.PacketsRecv > 0,
		Sent:      stats.PacketsSent,
		Received:  stats.PacketsRecv,
		AvgRTT:    stats.AvgRtt,
	}, nil
}
