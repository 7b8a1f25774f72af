package system

import (
	"context"
	"fmt"

	"github.com/voxelkeep/server/internal/persist"
	"github.com/voxelkeep/server/internal/world"
	"go.uber.org/zap"
)

// RepairReport 是一次全面修復的結果。
type RepairReport struct {
	Scanned  int
	Repaired []persist.ContainerRef
	DryRun   bool
}

// RepairAll 掃描 DB 中所有容器並以 Sanitizer 修復。dryRun 時只回報不寫入。
// 寶箱一律以設定的 chest_size 作為容量。
func (s *InventorySystem) RepairAll(ctx context.Context, dryRun bool) (RepairReport, error) {
	report := RepairReport{DryRun: dryRun}

	refs, err := s.deps.Store.ListContainers(ctx)
	if err != nil {
		return report, fmt.Errorf("list containers: %w", err)
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		size, ok := s.sizeFor(ref.Kind)
		if !ok {
			s.deps.Log.Warn("未知的容器類型，略過", zap.String("container", ref.String()))
			continue
		}
		if ref.Kind == string(world.KindChest) {
			if _, err := world.ParseChestKey(ref.Owner); err != nil {
				s.deps.Log.Warn("寶箱鍵值無效，略過", zap.String("container", ref.String()), zap.Error(err))
				continue
			}
		}

		slots, err := s.deps.Store.Load(ctx, ref)
		if err != nil {
			return report, fmt.Errorf("load %s: %w", ref, err)
		}
		report.Scanned++

		repaired, modified := s.deps.Validator.SanitizeSlotArray(slots, size)
		if !modified {
			continue
		}
		report.Repaired = append(report.Repaired, ref)
		if dryRun {
			continue
		}
		if err := s.deps.Store.SaveBatch(ctx, []persist.ContainerWrite{{Ref: ref, Slots: repaired}}); err != nil {
			return report, fmt.Errorf("save %s: %w", ref, err)
		}

		player := ref.Owner
		if ref.Kind == string(world.KindChest) {
			player = ""
		}
		s.writeAudit(ctx, []persist.AuditEntry{{
			Player:    player,
			Container: ref.String(),
			Kind:      persist.AuditRepaired,
			Reason:    "offline repair",
		}})
	}
	return report, nil
}

func (s *InventorySystem) sizeFor(kind string) (int, bool) {
	switch world.ContainerKind(kind) {
	case world.KindHotbar:
		return s.deps.Config.HotbarSize, true
	case world.KindBackpack:
		return s.deps.Config.BackpackSize, true
	case world.KindChest:
		return s.deps.Config.ChestSize, true
	}
	return 0, false
}
