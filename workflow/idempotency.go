package workflow

import (
	"errors"
	"strings"
	"time"

	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests) reports unique violations as plain text.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// BeginIdempotency inserts STARTED for (businessId, handlerName, messageId).
// If a SUCCEEDED row already exists it returns its ResultId, meaning "replay
// the first outcome, do not execute again". A stale or FAILED row is reclaimed.
func BeginIdempotency(db *gorm.DB, businessId, handlerName, messageId string) (replayResultId *int, err error) {
	key := models.IdempotencyKey{
		BusinessId:  businessId,
		HandlerName: handlerName,
		MessageId:   messageId,
		Status:      models.IdempotencyStatusStarted,
	}
	if err := db.Create(&key).Error; err == nil {
		return nil, nil
	} else if !isDuplicateKeyErr(err) {
		return nil, err
	}

	var existing models.IdempotencyKey
	if err := db.Where("business_id = ? AND handler_name = ? AND message_id = ?", businessId, handlerName, messageId).
		First(&existing).Error; err != nil {
		return nil, err
	}

	switch existing.Status {
	case models.IdempotencyStatusSucceeded:
		return existing.ResultId, nil
	case models.IdempotencyStatusStarted:
		// Another request is in flight; tell the caller to back off rather
		// than risk a duplicate write. A stale row is reclaimed.
		if time.Since(existing.UpdatedAt) < 5*time.Minute {
			return nil, utils.NewError(utils.ErrorKindConflict,
				"request with idempotency key %q is already in progress", messageId)
		}
		fallthrough
	default:
		return nil, db.Model(&models.IdempotencyKey{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{"status": models.IdempotencyStatusStarted, "last_error": nil}).Error
	}
}

func MarkIdempotencySucceeded(db *gorm.DB, businessId, handlerName, messageId string, resultId int) error {
	return db.Model(&models.IdempotencyKey{}).
		Where("business_id = ? AND handler_name = ? AND message_id = ?", businessId, handlerName, messageId).
		Updates(map[string]interface{}{"status": models.IdempotencyStatusSucceeded, "result_id": resultId, "last_error": nil}).Error
}

func MarkIdempotencyFailed(db *gorm.DB, businessId, handlerName, messageId string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return db.Model(&models.IdempotencyKey{}).
		Where("business_id = ? AND handler_name = ? AND message_id = ?", businessId, handlerName, messageId).
		Updates(map[string]interface{}{"status": models.IdempotencyStatusFailed, "last_error": &msg}).Error
}
