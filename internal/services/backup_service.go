package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"socioBack/utils"
)

// BackupService produces a mysqldump snapshot and uploads it to the
// configured S3-compatible bucket.
type BackupService struct {
	DatabaseName string
	DatabaseUser string
	DatabasePass string
	Storage      *utils.Storage
	Audit        *AuditService
	Now          Clock
}

type BackupResult struct {
	FileName string `json:"file_name"`
	URL      string `json:"url,omitempty"`
	Size     int    `json:"size"`
}

func (s *BackupService) RunBackup(ctx context.Context) (BackupResult, error) {
	stamp := nowOr(s.Now).Format("20060102-150405")
	fileName := fmt.Sprintf("backup-%s-%s.sql", stamp, uuid.NewString()[:8])
	tmpPath := filepath.Join(os.TempDir(), fileName)
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, "mysqldump",
		"-u", s.DatabaseUser,
		"-p"+s.DatabasePass,
		"--single-transaction",
		"--result-file="+tmpPath,
		s.DatabaseName)
	if out, err := cmd.CombinedOutput(); err != nil {
		return BackupResult{}, fmt.Errorf("mysqldump failed: %v: %s", err, out)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return BackupResult{}, err
	}

	result := BackupResult{FileName: fileName, Size: len(data)}
	if s.Storage != nil {
		url, err := s.Storage.UploadFile(data, fileName, "backups")
		if err != nil {
			return BackupResult{}, err
		}
		result.URL = url
	}
	if userID, ok := ctx.Value("user_id").(int); ok && userID > 0 {
		s.Audit.Record(ctx, "backup", "database", 0, fileName)
	}
	log.Printf("database backup completed: %s (%d bytes)", fileName, len(data))
	return result, nil
}
