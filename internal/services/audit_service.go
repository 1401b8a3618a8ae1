package services

import (
	"context"
	"log"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
)

type AuditService struct {
	AuditRepo *repositories.AuditRepository
}

// Record writes one audit row for a mutation. The acting user comes from the
// request context set by the auth middleware. Audit failures are logged and
// swallowed; they never fail the operation being audited.
func (s *AuditService) Record(ctx context.Context, action, entity string, entityID int, detail string) {
	if s == nil || s.AuditRepo == nil {
		return
	}
	l := models.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if userID, ok := ctx.Value("user_id").(int); ok && userID > 0 {
		l.UserID = &userID
	}
	if err := s.AuditRepo.CreateAuditLog(ctx, l); err != nil {
		log.Printf("audit write failed (%s %s %d): %v", action, entity, entityID, err)
	}
}

func (s *AuditService) List(ctx context.Context, f models.AuditFilter) ([]models.AuditLog, int, error) {
	return s.AuditRepo.ListAuditLogs(ctx, f)
}
