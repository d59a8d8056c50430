package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestSnapshotCountsRequestsAndRenders(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(502, 30*time.Millisecond)
	c.Record(429, 0)

	c.ObserveRender("epf", 5*time.Millisecond, nil)
	c.ObserveRender("epf", 5*time.Millisecond, nil)
	c.ObserveRender("payslip", time.Millisecond, errors.New("boom"))

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) || snap["errorsTotal"] != uint64(1) || snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("unexpected request counters: %v", snap)
	}
	if snap["rendersTotal"] != uint64(2) || snap["renderFailures"] != uint64(1) {
		t.Fatalf("unexpected render counters: %v", snap)
	}
	epf := snap["renders"].(map[string]any)["epf"].(map[string]any)
	if epf["rendered"] != uint64(2) || epf["totalDurationMs"] != uint64(10) {
		t.Fatalf("unexpected epf stats: %v", epf)
	}
}
