package workers

import (
	"context"
	"sync"
	"taclink/services"
	"time"

	"github.com/sirupsen/logrus"
)

// PresenceWorker periodically sweeps units whose positions have gone
// stale while still flagged online. A crashed client whose socket
// never closed cleanly would otherwise stay online forever.
type PresenceWorker struct {
	presence *services.PresenceService

	sweepInterval time.Duration
	staleAfter    time.Duration

	isRunning bool
	mutex     sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	sweepsRun  int64
	unitsSwept int64
	statsMutex sync.RWMutex
}

type PresenceWorkerStats struct {
	SweepsRun  int64 `json:"sweepsRun"`
	UnitsSwept int64 `json:"unitsSwept"`
}

func NewPresenceWorker(presence *services.PresenceService, sweepInterval, staleAfter time.Duration) *PresenceWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &PresenceWorker{
		presence:      presence,
		sweepInterval: sweepInterval,
		staleAfter:    staleAfter,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start launches the sweep loop.
func (pw *PresenceWorker) Start() {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	if pw.isRunning {
		return
	}
	pw.isRunning = true

	pw.wg.Add(1)
	go pw.run()

	logrus.Infof("Presence worker started, sweep every %s, stale after %s", pw.sweepInterval, pw.staleAfter)
}

// Stop shuts the worker down and waits for the current sweep.
func (pw *PresenceWorker) Stop() {
	pw.mutex.Lock()
	if !pw.isRunning {
		pw.mutex.Unlock()
		return
	}
	pw.isRunning = false
	pw.mutex.Unlock()

	pw.cancel()
	pw.wg.Wait()

	logrus.Info("Presence worker stopped")
}

func (pw *PresenceWorker) run() {
	defer pw.wg.Done()

	ticker := time.NewTicker(pw.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return
		case <-ticker.C:
			pw.sweep()
		}
	}
}

func (pw *PresenceWorker) sweep() {
	ctx, cancel := context.WithTimeout(pw.ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-pw.staleAfter)

	stale, err := pw.presence.ListStale(ctx, cutoff)
	if err != nil {
		logrus.Errorf("Presence sweep failed to list stale units: %v", err)
		return
	}

	swept := 0
	for _, unit := range stale {
		if err := pw.presence.MarkOffline(ctx, unit.UnitID); err != nil {
			logrus.Warnf("Presence sweep failed to mark %s offline: %v", unit.UnitID, err)
			continue
		}
		swept++
	}

	pw.statsMutex.Lock()
	pw.sweepsRun++
	pw.unitsSwept += int64(swept)
	pw.statsMutex.Unlock()

	if swept > 0 {
		logrus.Infof("Presence sweep marked %d stale units offline", swept)
	}
}

// GetStats returns sweep counters.
func (pw *PresenceWorker) GetStats() PresenceWorkerStats {
	pw.statsMutex.RLock()
	defer pw.statsMutex.RUnlock()

	return PresenceWorkerStats{
		SweepsRun:  pw.sweepsRun,
		UnitsSwept: pw.unitsSwept,
	}
}
