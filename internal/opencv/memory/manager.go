// Package memory tracks gocv.Mat allocations across a capture session so a
// pipeline that processes dozens of burst frames a minute doesn't slowly
// leak native OpenCV memory. The sync.Pool-of-raw-Mats field from an
// earlier draft of this manager has been dropped in favor of the
// already-correct Pool type in pool.go.
package memory

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/irislab/irisgo/internal/logger"
	"github.com/irislab/irisgo/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type Manager struct {
	mu           sync.RWMutex
	logger       logger.Logger
	maxMemory    int64
	usedMemory   int64
	allocCount   int64
	deallocCount int64
	activeMats   map[uint64]*MatInfo
	ctx          context.Context
	cancel       context.CancelFunc

	gcTriggerThreshold int64
	lastGCTime         time.Time
	gcForceInterval    time.Duration
}

type MatInfo struct {
	ID        uint64
	Tag       string
	Size      int64
	Timestamp time.Time
	Type      gocv.MatType
	Rows      int
	Cols      int
}

func NewManager(log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	var memStats runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&memStats)

	systemMemory := int64(memStats.Sys)
	maxMemory := systemMemory * 3 / 10
	if maxMemory < 512*1024*1024 {
		maxMemory = 512 * 1024 * 1024
	}
	if maxMemory > 4*1024*1024*1024 {
		maxMemory = 4 * 1024 * 1024 * 1024
	}

	manager := &Manager{
		logger:             log,
		maxMemory:          maxMemory,
		activeMats:         make(map[uint64]*MatInfo),
		ctx:                ctx,
		cancel:             cancel,
		gcTriggerThreshold: maxMemory * 7 / 10,
		gcForceInterval:    30 * time.Second,
		lastGCTime:         time.Now(),
	}

	go manager.monitorMemory()

	log.Info("memory_manager", "initialized with adaptive limits", map[string]interface{}{
		"max_memory_mb":      maxMemory / (1024 * 1024),
		"gc_trigger_mb":      manager.gcTriggerThreshold / (1024 * 1024),
		"system_memory_mb":   systemMemory / (1024 * 1024),
		"gocv_initial_count": gocv.MatProfile.Count(),
	})

	return manager
}

func (m *Manager) GetMat(rows, cols int, matType gocv.MatType, tag string) (*safe.Mat, error) {
	size := int64(rows * cols * getMatTypeSize(matType))

	m.mu.Lock()
	if m.usedMemory+size > m.maxMemory {
		m.mu.Unlock()
		m.forceGarbageCollection()

		m.mu.Lock()
		if m.usedMemory+size > m.maxMemory {
			m.mu.Unlock()
			return nil, fmt.Errorf("memory limit exceeded: would use %d MB, limit is %d MB, current usage %d MB",
				(m.usedMemory+size)/(1024*1024), m.maxMemory/(1024*1024), m.usedMemory/(1024*1024))
		}
	}
	m.mu.Unlock()

	mat, err := safe.NewMatWithTracker(rows, cols, matType, m, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat: %w", err)
	}

	m.mu.Lock()
	m.usedMemory += size
	m.allocCount++
	m.activeMats[mat.ID()] = &MatInfo{
		ID:        mat.ID(),
		Tag:       tag,
		Size:      size,
		Timestamp: time.Now(),
		Type:      matType,
		Rows:      rows,
		Cols:      cols,
	}
	m.mu.Unlock()

	if m.usedMemory > m.gcTriggerThreshold {
		go m.proactiveGarbageCollection()
	}

	return mat, nil
}

func (m *Manager) TrackAllocation(ptr uintptr, size int64, tag string) {
	// allocation accounting happens in GetMat; this satisfies safe.MemoryTracker.
}

func (m *Manager) TrackDeallocation(ptr uintptr, tag string) {
	m.mu.Lock()
	m.deallocCount++
	m.mu.Unlock()
}

func (m *Manager) ReleaseMat(mat *safe.Mat, tag string) {
	if mat == nil {
		return
	}

	m.mu.Lock()
	if info, exists := m.activeMats[mat.ID()]; exists {
		delete(m.activeMats, mat.ID())
		m.usedMemory -= info.Size

		m.logger.Debug("memory_manager", "mat released", map[string]interface{}{
			"mat_id":          mat.ID(),
			"tag":             tag,
			"size_mb":         info.Size / (1024 * 1024),
			"remaining_usage": m.usedMemory / (1024 * 1024),
			"active_count":    len(m.activeMats),
		})
	}
	m.mu.Unlock()

	mat.Close()
}

func (m *Manager) GetUsedMemory() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usedMemory
}

func (m *Manager) GetStats() (allocCount, deallocCount int64, usedMemory int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allocCount, m.deallocCount, m.usedMemory
}

func (m *Manager) GetActiveMatCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.activeMats)
}

func (m *Manager) monitorMemory() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.performMonitoringCheck()
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) performMonitoringCheck() {
	alloc, dealloc, used := m.GetStats()
	activeCount := m.GetActiveMatCount()
	gocvCount := gocv.MatProfile.Count()

	m.logger.Debug("memory_manager", "memory statistics", map[string]interface{}{
		"allocations":    alloc,
		"deallocations":  dealloc,
		"used_mb":        used / (1024 * 1024),
		"max_mb":         m.maxMemory / (1024 * 1024),
		"active_mats":    activeCount,
		"gocv_mat_count": gocvCount,
		"leak_indicator": alloc - dealloc,
	})

	if gocvCount > 200 {
		m.logger.Warning("memory_manager", "high GoCV Mat count detected", map[string]interface{}{
			"gocv_mat_count": gocvCount,
			"active_mats":    activeCount,
		})
	}

	utilizationRatio := float64(used) / float64(m.maxMemory)
	if utilizationRatio > 0.8 {
		m.logger.Warning("memory_manager", "high memory pressure", map[string]interface{}{
			"utilization": utilizationRatio,
			"used_mb":     used / (1024 * 1024),
			"max_mb":      m.maxMemory / (1024 * 1024),
		})
		go m.forceGarbageCollection()
	}

	if time.Since(m.lastGCTime) > m.gcForceInterval && utilizationRatio > 0.5 {
		go m.proactiveGarbageCollection()
	}
}

func (m *Manager) forceGarbageCollection() {
	m.logger.Debug("memory_manager", "forcing garbage collection", nil)

	runtime.GC()
	runtime.GC()

	m.mu.Lock()
	m.lastGCTime = time.Now()
	m.mu.Unlock()

	runtime.Gosched()
}

func (m *Manager) proactiveGarbageCollection() {
	m.mu.RLock()
	timeSinceLastGC := time.Since(m.lastGCTime)
	m.mu.RUnlock()

	if timeSinceLastGC < 5*time.Second {
		return
	}
	m.forceGarbageCollection()
}

func (m *Manager) Shutdown() {
	m.cancel()
	m.Cleanup()
}

func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	matCount := len(m.activeMats)
	totalSize := int64(0)

	for id, info := range m.activeMats {
		totalSize += info.Size
		m.logger.Warning("memory_manager", "cleaning up unreleased Mat", map[string]interface{}{
			"mat_id":     info.ID,
			"tag":        info.Tag,
			"size_mb":    info.Size / (1024 * 1024),
			"age":        time.Since(info.Timestamp).String(),
			"dimensions": fmt.Sprintf("%dx%d", info.Cols, info.Rows),
		})
		delete(m.activeMats, id)
	}

	m.logger.Info("memory_manager", "cleanup completed", map[string]interface{}{
		"mats_cleaned":        matCount,
		"memory_freed_mb":     totalSize / (1024 * 1024),
		"final_gocv_count":    gocv.MatProfile.Count(),
		"final_allocations":   m.allocCount,
		"final_deallocations": m.deallocCount,
	})

	m.usedMemory = 0
	runtime.GC()
	runtime.GC()
}

func getMatTypeSize(matType gocv.MatType) int {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return 1
	case gocv.MatTypeCV8UC3:
		return 3
	case gocv.MatTypeCV8UC4:
		return 4
	case gocv.MatTypeCV32FC1:
		return 4
	case gocv.MatTypeCV64FC1:
		return 8
	default:
		return 1
	}
}
