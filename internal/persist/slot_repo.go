package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/voxelkeep/server/internal/item"
)

// ContainerRef addresses one persisted slot container. For hotbar and
// backpack Owner is the player name; for chests it is the chest key.
type ContainerRef struct {
	Kind  string
	Owner string
}

func (r ContainerRef) String() string {
	return r.Kind + "/" + r.Owner
}

// ContainerWrite is a full replacement of one container's slots.
type ContainerWrite struct {
	Ref   ContainerRef
	Slots item.Slots
}

// SlotRow represents a persisted slot.
type SlotRow struct {
	Kind     string
	Owner    string
	Slot     int32
	ItemID   int32
	Count    int32
	MaxStack *int32
	Metadata map[string]any
}

type SlotRepo struct {
	db *DB
}

func NewSlotRepo(db *DB) *SlotRepo {
	return &SlotRepo{db: db}
}

// Load returns the slots of one container. A container never saved loads empty.
func (r *SlotRepo) Load(ctx context.Context, ref ContainerRef) (item.Slots, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT kind, owner, slot, item_id, count, max_stack, metadata
		 FROM container_slots WHERE kind = $1 AND owner = $2`, ref.Kind, ref.Owner,
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	defer rows.Close()

	slots := item.Slots{}
	for rows.Next() {
		var row SlotRow
		if err := rows.Scan(
			&row.Kind, &row.Owner, &row.Slot, &row.ItemID, &row.Count, &row.MaxStack, &row.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", ref, err)
		}
		slots[int(row.Slot)] = rowToRecord(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return slots, nil
}

// SaveBatch replaces every listed container (delete + bulk insert) in one
// transaction, so a chest transfer never persists half-applied.
func (r *SlotRepo) SaveBatch(ctx context.Context, writes []ContainerWrite) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("slots begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range writes {
		if _, err := tx.Exec(ctx,
			`DELETE FROM container_slots WHERE kind = $1 AND owner = $2`, w.Ref.Kind, w.Ref.Owner,
		); err != nil {
			return fmt.Errorf("clear %s: %w", w.Ref, err)
		}

		batch := &pgx.Batch{}
		for _, idx := range w.Slots.Indices() {
			rec := w.Slots[idx]
			if rec == nil || rec.IsAir() {
				continue
			}
			var maxStack *int32
			if rec.MaxStack != nil {
				m := int32(*rec.MaxStack)
				maxStack = &m
			}
			batch.Queue(
				`INSERT INTO container_slots (kind, owner, slot, item_id, count, max_stack, metadata)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				w.Ref.Kind, w.Ref.Owner, int32(idx), int32(rec.ItemID), int32(rec.Count), maxStack, rec.Metadata,
			)
		}
		if batch.Len() == 0 {
			continue
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save %s: %w", w.Ref, err)
		}
	}

	return tx.Commit(ctx)
}

// Save replaces a single container.
func (r *SlotRepo) Save(ctx context.Context, ref ContainerRef, slots item.Slots) error {
	return r.SaveBatch(ctx, []ContainerWrite{{Ref: ref, Slots: slots}})
}

// ListContainers returns every container that has at least one stored slot.
func (r *SlotRepo) ListContainers(ctx context.Context) ([]ContainerRef, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT DISTINCT kind, owner FROM container_slots ORDER BY kind, owner`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ContainerRef
	for rows.Next() {
		var ref ContainerRef
		if err := rows.Scan(&ref.Kind, &ref.Owner); err != nil {
			return nil, err
		}
		result = append(result, ref)
	}
	return result, rows.Err()
}

func rowToRecord(row SlotRow) *item.Record {
	rec := &item.Record{
		ItemID:   int(row.ItemID),
		Count:    int(row.Count),
		Metadata: row.Metadata,
	}
	if row.MaxStack != nil {
		m := int(*row.MaxStack)
		rec.MaxStack = &m
	}
	return rec
}
