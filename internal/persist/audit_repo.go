package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit entry kinds.
const (
	AuditRejected  = "rejected"  // client submission discarded
	AuditDestroyed = "destroyed" // legitimate net decrease during a chest transfer
	AuditRepaired  = "repaired"  // sanitizer altered persisted slots
	AuditGranted   = "granted"   // trusted server-side creation
)

// AuditEntry is one inventory anti-cheat / economy audit record.
type AuditEntry struct {
	ID        uuid.UUID
	Player    string
	Container string
	Kind      string
	ItemID    int32
	Amount    int32
	Reason    string
	CreatedAt time.Time
}

type AuditRepo struct {
	db *DB
}

func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Write atomically stores a batch of audit entries in a single transaction.
// Entries without an ID get a fresh one.
func (r *AuditRepo) Write(ctx context.Context, entries []AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO inventory_audit (id, player, container, kind, item_id, amount, reason)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, e.Player, e.Container, e.Kind, e.ItemID, e.Amount, e.Reason,
		); err != nil {
			return fmt.Errorf("audit insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns the newest entries for a player, newest first.
func (r *AuditRepo) Recent(ctx context.Context, player string, limit int) ([]AuditEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, player, container, kind, item_id, amount, reason, created_at
		 FROM inventory_audit WHERE player = $1 ORDER BY created_at DESC LIMIT $2`,
		player, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(
			&e.ID, &e.Player, &e.Container, &e.Kind, &e.ItemID, &e.Amount, &e.Reason, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
