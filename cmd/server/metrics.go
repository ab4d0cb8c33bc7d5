package main

import (
	"context"
	"log"
	"time"

	"github.com/nadmax/servicetime/internal/inventory"
	"github.com/nadmax/servicetime/internal/metrics"
	"github.com/nadmax/servicetime/internal/workload"
)

func startMetricsCollector(ctx context.Context, interval time.Duration, tracker *workload.Tracker, inv *inventory.Store) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateServiceMetrics(ctx, tracker, inv)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, tracker, inv)
		}
	}
}

func updateServiceMetrics(ctx context.Context, tracker *workload.Tracker, inv *inventory.Store) {
	snapshot, err := tracker.Snapshot(ctx)
	if err != nil {
		log.Printf("Failed to read workload for metrics: %v", err)
	} else {
		metrics.UpdateQueueDepth(snapshot.QueueLength)
		metrics.UpdateWorkload(snapshot.WorkloadPercentage, snapshot.WorkerAvailability)
	}

	metrics.UpdateLowStockParts(lowStockByModel(inv.Status()))
}

func lowStockByModel(snapshot inventory.Snapshot) map[string]int {
	low := make(map[string]int, len(snapshot))
	for model, parts := range snapshot {
		count := 0
		for _, stock := range parts {
			if stock.Low() {
				count++
			}
		}
		low[model] = count
	}

	return low
}
