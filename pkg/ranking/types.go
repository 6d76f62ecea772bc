package ranking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of probing one gateway.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnreachable Status = "unreachable"
)

// ProbeResult is one gateway's outcome in a round. Time is only meaningful
// when Status is StatusAvailable.
type ProbeResult struct {
	URL       string
	Status    Status
	Time      time.Duration
	Round     string
	CheckedAt time.Time
}

// Available reports whether the gateway answered in time with a 2xx.
func (r ProbeResult) Available() bool {
	return r.Status == StatusAvailable
}

type probeResultJSON struct {
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	TimeMS    *float64  `json:"time_ms"`
	Round     string    `json:"round,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// MarshalJSON renders Time as fractional milliseconds, or null when unreachable.
func (r ProbeResult) MarshalJSON() ([]byte, error) {
	out := probeResultJSON{
		URL:       r.URL,
		Status:    r.Status,
		Round:     r.Round,
		CheckedAt: r.CheckedAt,
	}
	if r.Available() {
		ms := float64(r.Time) / float64(time.Millisecond)
		out.TimeMS = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *ProbeResult) UnmarshalJSON(data []byte) error {
	var in probeResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = ProbeResult{
		URL:       in.URL,
		Status:    in.Status,
		Round:     in.Round,
		CheckedAt: in.CheckedAt,
	}
	if in.TimeMS != nil {
		r.Time = time.Duration(*in.TimeMS * float64(time.Millisecond))
	}
	return nil
}

// RankedList holds available results ordered by ascending Time.
type RankedList []ProbeResult

// URLs returns the gateways in rank order.
func (l RankedList) URLs() []string {
	urls := make([]string, len(l))
	for i, r := range l {
		urls[i] = r.URL
	}
	return urls
}

// Mode selects how candidates are probed within an attempt.
type Mode int

const (
	// Concurrent probes every candidate at once.
	Concurrent Mode = iota
	// Sequential probes one candidate at a time and honors StopOnFirstSuccess.
	Sequential
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	default:
		return "concurrent"
	}
}

// ParseMode maps "concurrent" or "sequential" to a Mode. Empty means Concurrent.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "concurrent":
		return Concurrent, nil
	case "sequential":
		return Sequential, nil
	default:
		return Concurrent, fmt.Errorf("unknown probing mode %q", s)
	}
}

// Options tune a single Rank call. Zero values select the engine defaults.
type Options struct {
	CID        string
	RetryCount int
	// RetryDelay is the wait between attempts. Zero selects the engine default.
	RetryDelay time.Duration
	Observer   Observer
	Mode       Mode
	// OnlyNew probes just the most recently added user gateways and merges
	// their results into the previous snapshot.
	OnlyNew bool
}
