// debug.go exposes the read-only counters as an HTTP handler so a host
// process can wire up /debug/zcache/snapshot and cmd/zcache-inspect has
// something real to poll.
//
// © 2025 zcache authors. MIT License.
package zcache

import (
	"encoding/json"
	"net/http"
)

// SnapshotHandler returns an http.Handler serving a JSON snapshot of
// StatsFor(swapType) under GET /debug/zcache/snapshot?type=<n>. type
// defaults to 0 when absent or unparsable.
func (c *Cache) SnapshotHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		swapType := parseSwapType(r.URL.Query().Get("type"))
		stats := c.StatsFor(swapType)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"swap_type":              swapType,
			"pool_pages":             stats.PoolPages,
			"stored_pages":           stats.StoredPages,
			"outstanding_writebacks": stats.OutstandingWritebacks,
			"pages_written_back":     stats.PagesWrittenBack,
		})
	})
}

func parseSwapType(raw string) uint8 {
	if raw == "" {
		return 0
	}
	var n int
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			return 0
		}
		n = n*10 + int(ch-'0')
		if n > 255 {
			return 255
		}
	}
	return uint8(n)
}
