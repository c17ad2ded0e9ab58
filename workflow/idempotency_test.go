package workflow_test

import (
	"testing"

	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/caribesoft/pos_backend/workflow"
)

func TestBeginIdempotency_FirstCallProceeds(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)

	replay, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1")
	if err != nil {
		t.Fatalf("BeginIdempotency: %v", err)
	}
	if replay != nil {
		t.Fatalf("expected no replay on first call, got result id %d", *replay)
	}
}

func TestBeginIdempotency_SucceededReplaysResult(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)

	if _, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1"); err != nil {
		t.Fatalf("BeginIdempotency: %v", err)
	}
	if err := workflow.MarkIdempotencySucceeded(db, businessId, "createSale", "msg-1", 42); err != nil {
		t.Fatalf("MarkIdempotencySucceeded: %v", err)
	}

	replay, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1")
	if err != nil {
		t.Fatalf("BeginIdempotency replay: %v", err)
	}
	if replay == nil || *replay != 42 {
		t.Fatalf("replay = %v, want result id 42", replay)
	}
}

func TestBeginIdempotency_InFlightConflicts(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)

	if _, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1"); err != nil {
		t.Fatalf("BeginIdempotency: %v", err)
	}
	_, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1")
	if err == nil {
		t.Fatal("expected conflict while first request is in flight")
	}
	if kind := utils.KindOf(err); kind != utils.ErrorKindConflict {
		t.Fatalf("expected CONFLICT, got %s (%v)", kind, err)
	}
}

func TestBeginIdempotency_FailedKeyIsReclaimed(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)

	if _, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1"); err != nil {
		t.Fatalf("BeginIdempotency: %v", err)
	}
	if err := workflow.MarkIdempotencyFailed(db, businessId, "createSale", "msg-1", utils.NewError(utils.ErrorKindInternal, "boom")); err != nil {
		t.Fatalf("MarkIdempotencyFailed: %v", err)
	}

	replay, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1")
	if err != nil {
		t.Fatalf("BeginIdempotency after failure: %v", err)
	}
	if replay != nil {
		t.Fatalf("expected reclaim after failure, got replay %v", replay)
	}

	var key models.IdempotencyKey
	if err := db.Where("business_id = ? AND message_id = ?", businessId, "msg-1").First(&key).Error; err != nil {
		t.Fatalf("load key: %v", err)
	}
	if key.Status != models.IdempotencyStatusStarted {
		t.Fatalf("status = %s, want %s", key.Status, models.IdempotencyStatusStarted)
	}
	if key.LastError != nil {
		t.Fatalf("last error not cleared: %q", *key.LastError)
	}
}

func TestBeginIdempotency_KeysAreScopedPerHandler(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)

	if _, err := workflow.BeginIdempotency(db, businessId, "createSale", "msg-1"); err != nil {
		t.Fatalf("BeginIdempotency: %v", err)
	}
	// same message id under a different handler is a different operation
	replay, err := workflow.BeginIdempotency(db, businessId, "issueDocument", "msg-1")
	if err != nil {
		t.Fatalf("BeginIdempotency other handler: %v", err)
	}
	if replay != nil {
		t.Fatalf("expected independent key, got replay %v", replay)
	}
}
