package service

import (
	"context"
	"sync"
	"time"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// StoreTx provides the project-scoped atomic unit every state-changing
// operation runs in. Implementations may wrap a database transaction or, in
// memory, a per-project lock. Operations on different projects never block
// each other.
type StoreTx interface {
	RunInProjectTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error
}

// shardedProjectTx serializes writes per project using sharded mutexes.
// Operations hash their project ID onto one of N shards, so two projects
// rarely contend and one project's writes always serialize.
const numProjectShards = 128

// defaultTxTimeout is the maximum duration for one atomic unit.
const defaultTxTimeout = 5 * time.Second

type shardedProjectTx struct {
	shards  [numProjectShards]sync.Mutex
	timeout time.Duration
}

// NewShardedTx returns the in-memory transactional boundary used with the
// in-memory store.
func NewShardedTx() StoreTx {
	return &shardedProjectTx{}
}

func (t *shardedProjectTx) RunInProjectTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashProjectID(projectID) % numProjectShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock; a caller that waited out its
	// deadline in the queue must not run.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashProjectID uses FNV-1a over the raw UUID bytes.
func hashProjectID(projectID id.ProjectID) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	raw := projectID.String()
	h := uint32(fnvOffset)
	for i := 0; i < len(raw); i++ {
		h ^= uint32(raw[i])
		h *= fnvPrime
	}
	return h
}
