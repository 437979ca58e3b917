package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
)

const healthPingTimeout = 2 * time.Second

type memoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapInuse  uint64 `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
}

type healthResponse struct {
	Status     string      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Uptime     float64     `json:"uptime"`
	Memory     memoryStats `json:"memory"`
	Goroutines int         `json:"goroutines"`
	Database   string      `json:"database"`
}

type HealthHandler struct {
	pinger  domain.Pinger
	started time.Time
	now     func() time.Time
}

func NewHealthHandler(pinger domain.Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger, started: time.Now(), now: time.Now}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	now := h.now()
	resp := healthResponse{
		Status:    "OK",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.started).Seconds(),
		Memory: memoryStats{
			Alloc:      ms.Alloc,
			TotalAlloc: ms.TotalAlloc,
			Sys:        ms.Sys,
			HeapInuse:  ms.HeapInuse,
			NumGC:      ms.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
		Database:   "connected",
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	status := http.StatusOK
	if err := h.pinger.Ping(ctx); err != nil {
		resp.Status = "DEGRADED"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}
	respondWithJSON(w, status, resp)
}
