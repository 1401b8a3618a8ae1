package main

import (
	"context"
	"log"
	"time"

	"socioBack/internal/config"
	"socioBack/internal/services"
)

// startBackupRunner dumps the database on a fixed interval and uploads the
// dump to object storage. Disabled unless backup.enabled is set.
func startBackupRunner(ctx context.Context, svc *services.BackupService, cfg config.Config, infoLog, errorLog *log.Logger) {
	if !cfg.Backup.Enabled {
		return
	}

	interval := 24 * time.Hour
	if cfg.Backup.Interval != "" {
		d, err := time.ParseDuration(cfg.Backup.Interval)
		if err != nil {
			if errorLog != nil {
				errorLog.Printf("invalid backup interval %q, using 24h: %v", cfg.Backup.Interval, err)
			}
		} else {
			interval = d
		}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
				result, err := svc.RunBackup(runCtx)
				cancel()
				if err != nil {
					if errorLog != nil {
						errorLog.Printf("scheduled backup failed: %v", err)
					}
					continue
				}
				if infoLog != nil {
					infoLog.Printf("scheduled backup done: %s (%d bytes)", result.FileName, result.Size)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
