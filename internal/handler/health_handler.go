package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/cache"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/db"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// @Summary Healthcheck
// @Tags health
// @Success 200
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte("ok"))
}

type systemStats struct {
	NumGoroutine int    `json:"numGoroutine"`
	Alloc        uint64 `json:"allocBytes"`
	NumGC        uint32 `json:"numGc"`

	TotalRAM        uint64    `json:"totalRam"`
	AvailableRAM    uint64    `json:"availableRam"`
	UsedRAMPercent  float64   `json:"usedRamPercent"`
	TotalCPUCores   int       `json:"totalCpuCores"`
	CPUUsagePercent []float64 `json:"cpuUsagePercent"`
}

type statusResponse struct {
	Timestamp time.Time   `json:"timestamp"`
	MongoDB   string      `json:"mongodb"`
	Redis     string      `json:"redis"`
	System    systemStats `json:"system"`
}

// @Summary Estado del sistema (ADMIN)
// @Description Estado de Mongo/Redis y métricas del host y del proceso.
// @Tags health
// @Security BearerAuth
// @Produce json
// @Success 200 {object} statusResponse
// @Router /admin/status [get]
func Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	mongoStatus := "ok"
	if err := db.Ping(ctx); err != nil {
		mongoStatus = "down"
	}
	redisStatus := "ok"
	if err := cache.Ping(ctx); err != nil {
		redisStatus = "down"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	vMem, _ := mem.VirtualMemory()
	cpuPercent, _ := cpu.Percent(0, true) // per cpu

	sys := systemStats{
		NumGoroutine:    runtime.NumGoroutine(),
		Alloc:           memStats.Alloc,
		NumGC:           memStats.NumGC,
		TotalCPUCores:   runtime.NumCPU(),
		CPUUsagePercent: cpuPercent,
	}
	if vMem != nil {
		sys.TotalRAM = vMem.Total
		sys.AvailableRAM = vMem.Available
		sys.UsedRAMPercent = vMem.UsedPercent
	}

	_ = json.NewEncoder(w).Encode(statusResponse{
		Timestamp: time.Now(),
		MongoDB:   mongoStatus,
		Redis:     redisStatus,
		System:    sys,
	})
}
