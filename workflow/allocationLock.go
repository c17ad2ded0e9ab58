package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/caribesoft/pos_backend/config"
	"github.com/sirupsen/logrus"
)

// ObtainAllocationLock takes a short per-(business, sequence type) lock to
// reduce compare-and-swap contention when many cashiers allocate at once.
//
// Best-effort only: the conditional UPDATE on the sequence row is the actual
// correctness guard, so the caller proceeds without the lock when Redis is
// absent or the lock cannot be obtained. The returned release func is always
// safe to call.
func ObtainAllocationLock(ctx context.Context, locker *redislock.Client, logger *logrus.Logger, businessId string, sequenceType string) func() {
	if locker == nil {
		return func() {}
	}

	lockKey := fmt.Sprintf("fiscalseq:%s:%s", businessId, sequenceType)
	lock, err := locker.Obtain(ctx, lockKey, 10*time.Second, nil)
	if err == redislock.ErrNotObtained {
		return func() {}
	}
	if err != nil {
		config.LogError(logger, "allocationLock.go", "ObtainAllocationLock", "locker.Obtain", lockKey, err)
		return func() {}
	}

	return func() { _ = lock.Release(ctx) }
}
