// Package service holds the business rules of the club: registration,
// roster administration, scheduling and attendance.
package service

import (
	"fmt"
	"log"
	"time"

	"sportclub/internal/access"
	"sportclub/internal/models"
	"sportclub/internal/repository"
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func today(clock Clock) models.Date {
	return models.DateOf(clock())
}

// recordAudit persists an audit entry and mirrors it to the log
func recordAudit(repos *repository.Repositories, actor *access.Actor, action, targetType string, targetID int64, detail string) error {
	entry := &models.AuditEntry{
		ActorID:    actor.ID(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	}
	if err := repos.Audit.Record(entry); err != nil {
		return err
	}

	who := "system"
	if actor != nil {
		who = fmt.Sprintf("user:%d", actor.UserID)
	}
	log.Printf("Audit: %s %s %s/%d %s", who, action, targetType, targetID, detail)
	return nil
}
