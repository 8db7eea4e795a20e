// services/scheduler.go
package services

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"archery-competition-system/utils"

	"github.com/go-co-op/gocron/v2"
)

const defaultSnapshotInterval = 10 * time.Minute

// snapshotInterval reads SNAPSHOT_INTERVAL_MIN (whole minutes).
func snapshotInterval() time.Duration {
	v := os.Getenv("SNAPSHOT_INTERVAL_MIN")
	if v == "" {
		return defaultSnapshotInterval
	}
	minutes, err := strconv.Atoi(v)
	if err != nil || minutes < 1 {
		log.Printf("[Scheduler] invalid SNAPSHOT_INTERVAL_MIN %q, using %s", v, defaultSnapshotInterval)
		return defaultSnapshotInterval
	}
	return time.Duration(minutes) * time.Minute
}

// StartSnapshotScheduler writes a JSON snapshot of the competition on a
// fixed interval so a crashed machine mid-competition loses at most one
// interval of score entry. When R2 is configured the snapshot is also
// mirrored off-site.
func (s *ExportService) StartSnapshotScheduler() {
	interval := snapshotInterval()

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			path, err := s.WriteSnapshot()
			if err != nil {
				log.Printf("[Scheduler] snapshot failed: %v", err)
				return
			}
			log.Printf("[Scheduler] snapshot written: %s", path)

			if !utils.R2Enabled() {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				log.Printf("[Scheduler] failed to read snapshot for upload: %v", err)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			key := "snapshots/" + filepath.Base(path)
			if err := utils.UploadSnapshotToR2(ctx, key, data); err != nil {
				log.Printf("[Scheduler] snapshot upload failed: %v", err)
				return
			}
			log.Printf("[Scheduler] snapshot mirrored to R2: %s", key)
		}),
	)
}
