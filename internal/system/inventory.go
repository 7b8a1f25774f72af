package system

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/voxelkeep/server/internal/data"
	"github.com/voxelkeep/server/internal/item"
	"github.com/voxelkeep/server/internal/persist"
	"github.com/voxelkeep/server/internal/validate"
	"github.com/voxelkeep/server/internal/world"
	"go.uber.org/zap"
)

// InventorySystem 負責所有庫存變更：載入、客戶端提交驗證、寶箱轉移、放置方塊、伺服器發放。
// 驗證→提交期間持有對應的鎖（先寶箱、後玩家），同一玩家同時只會有一筆變更在處理。
// 提交順序：先寫 DB，成功後才替換記憶體狀態；任何失敗都保留上一份權威狀態。
type InventorySystem struct {
	deps *Deps
}

// NewInventorySystem 建立庫存系統。
func NewInventorySystem(deps *Deps) *InventorySystem {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &InventorySystem{deps: deps}
}

func hotbarRef(player string) persist.ContainerRef {
	return persist.ContainerRef{Kind: string(world.KindHotbar), Owner: player}
}

func backpackRef(player string) persist.ContainerRef {
	return persist.ContainerRef{Kind: string(world.KindBackpack), Owner: player}
}

func chestRef(key world.ChestKey) persist.ContainerRef {
	return persist.ContainerRef{Kind: string(world.KindChest), Owner: key.String()}
}

// LoadPlayer 從 DB 載入快捷列與背包並放入世界狀態。
// SanitizeOnLoad 開啟時修復損壞資料（並寫回、稽核）；關閉時損壞資料直接拒絕登入。
// 玩家已在線時直接回傳現有狀態，不會以 DB 內容覆蓋。
func (s *InventorySystem) LoadPlayer(ctx context.Context, player string) (*world.PlayerInventory, error) {
	if p := s.deps.World.GetPlayer(player); p != nil {
		return p, nil
	}
	hotbar, err := s.loadContainer(ctx, player, hotbarRef(player), s.deps.Config.HotbarSize)
	if err != nil {
		return nil, err
	}
	backpack, err := s.loadContainer(ctx, player, backpackRef(player), s.deps.Config.BackpackSize)
	if err != nil {
		return nil, err
	}

	inv := s.deps.World.AddPlayer(world.NewPlayerInventory(player, hotbar, backpack))

	s.deps.Log.Debug("inventory loaded",
		zap.String("player", player),
		zap.Int("hotbar", len(inv.Hotbar)),
		zap.Int("backpack", len(inv.Backpack)),
	)
	return inv, nil
}

// SavePlayer 將玩家目前的權威庫存寫入 DB。
func (s *InventorySystem) SavePlayer(ctx context.Context, player string) error {
	p, err := s.lockPlayer(player)
	if err != nil {
		return err
	}
	defer p.Unlock()
	return s.savePlayerLocked(ctx, p)
}

// UnloadPlayer 存檔後移出世界狀態。存檔失敗時玩家保留在線上狀態，以便重試。
// 移除期間持有玩家鎖，進行中的提交會先完成。
func (s *InventorySystem) UnloadPlayer(ctx context.Context, player string) error {
	p, err := s.lockPlayer(player)
	if err != nil {
		return fmt.Errorf("save %s: %w", player, err)
	}
	defer p.Unlock()
	if err := s.savePlayerLocked(ctx, p); err != nil {
		return fmt.Errorf("save %s: %w", player, err)
	}
	s.deps.World.RemovePlayer(player)
	return nil
}

// SubmitInventory 處理客戶端送來的整份快捷列 + 背包。
// 兩個陣列都必須通過格位驗證，且合計數量不得超過權威狀態（物品只能減少，不能憑空出現）。
func (s *InventorySystem) SubmitInventory(ctx context.Context, player string, hotbar, backpack item.Slots) error {
	p, err := s.lockPlayer(player)
	if err != nil {
		return err
	}
	defer p.Unlock()

	v := s.deps.Validator
	hotTotals, err := v.ValidateSlotArray(hotbar, s.deps.Config.HotbarSize)
	if err != nil {
		s.rejected(ctx, player, string(world.KindHotbar), err)
		return err
	}
	packTotals, err := v.ValidateSlotArray(backpack, s.deps.Config.BackpackSize)
	if err != nil {
		s.rejected(ctx, player, string(world.KindBackpack), err)
		return err
	}
	if err = v.ValidateInventoryTransaction(p.Totals(), item.Combine(hotTotals, packTotals)); err != nil {
		s.rejected(ctx, player, "inventory", err)
		return err
	}

	if err := s.deps.Store.SaveBatch(ctx, []persist.ContainerWrite{
		{Ref: hotbarRef(player), Slots: hotbar},
		{Ref: backpackRef(player), Slots: backpack},
	}); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	p.Commit(hotbar, backpack)
	return nil
}

// OpenChest 載入寶箱（已開啟則直接回傳）。size <= 0 使用設定的預設容量。
func (s *InventorySystem) OpenChest(ctx context.Context, key world.ChestKey, size int) (*world.Chest, error) {
	if c := s.deps.World.GetChest(key); c != nil {
		return c, nil
	}
	if size <= 0 {
		size = s.deps.Config.ChestSize
	}
	slots, err := s.loadContainer(ctx, "", chestRef(key), size)
	if err != nil {
		return nil, err
	}
	return s.deps.World.AddChest(world.NewChest(key, size, slots)), nil
}

// CloseChest 將寶箱移出世界狀態。內容在每次提交時已寫入 DB。
// 移除期間持有寶箱鎖，之後重新開啟會讀到最後一次提交的內容。
func (s *InventorySystem) CloseChest(key world.ChestKey) {
	c, err := s.lockChest(key)
	if err != nil {
		return
	}
	defer c.Unlock()
	s.deps.World.RemoveChest(key)
}

// SubmitChest 處理一次寶箱存取：客戶端送來寶箱、快捷列、背包的新內容。
// 寶箱 + 玩家庫存的合計不得增加；合計減少視為合法銷毀，寫入稽核但不拒絕。
// 游標上的物品不納入計算：客戶端只在游標清空後才送出。
func (s *InventorySystem) SubmitChest(ctx context.Context, player string, key world.ChestKey, chest, hotbar, backpack item.Slots) error {
	// 鎖定順序：寶箱 → 玩家
	c, err := s.lockChest(key)
	if err != nil {
		return err
	}
	defer c.Unlock()
	p, err := s.lockPlayer(player)
	if err != nil {
		return err
	}
	defer p.Unlock()

	ref := chestRef(key)
	v := s.deps.Validator
	chestTotals, err := v.ValidateSlotArray(chest, c.Size)
	if err != nil {
		s.rejected(ctx, player, ref.String(), err)
		return err
	}
	hotTotals, err := v.ValidateSlotArray(hotbar, s.deps.Config.HotbarSize)
	if err != nil {
		s.rejected(ctx, player, string(world.KindHotbar), err)
		return err
	}
	packTotals, err := v.ValidateSlotArray(backpack, s.deps.Config.BackpackSize)
	if err != nil {
		s.rejected(ctx, player, string(world.KindBackpack), err)
		return err
	}

	before := validate.ChestState{Chest: c.Totals(), Inventory: p.Totals()}
	after := validate.ChestState{Chest: chestTotals, Inventory: item.Combine(hotTotals, packTotals)}
	losses, err := v.ValidateChestTransaction(player, before, after)
	if err != nil {
		s.rejected(ctx, player, ref.String(), err)
		return err
	}

	if err := s.deps.Store.SaveBatch(ctx, []persist.ContainerWrite{
		{Ref: ref, Slots: chest},
		{Ref: hotbarRef(player), Slots: hotbar},
		{Ref: backpackRef(player), Slots: backpack},
	}); err != nil {
		return fmt.Errorf("save chest transfer: %w", err)
	}
	c.Commit(chest)
	p.Commit(hotbar, backpack)

	if len(losses) > 0 {
		entries := make([]persist.AuditEntry, 0, len(losses))
		for _, id := range losses.ItemIDs() {
			entries = append(entries, persist.AuditEntry{
				Player:    player,
				Container: ref.String(),
				Kind:      persist.AuditDestroyed,
				ItemID:    auditInt(id),
				Amount:    auditInt(losses[id]),
			})
		}
		s.writeAudit(ctx, entries)
	}
	return nil
}

// PlaceBlock 驗證玩家從快捷列 slot 放置 itemID 恰好消耗一個。
// newStack 是客戶端回報的新格位內容；成功時以權威資料扣一個寫回（保留 metadata）。
func (s *InventorySystem) PlaceBlock(ctx context.Context, player string, slot, itemID int, newStack *item.Record) error {
	p, err := s.lockPlayer(player)
	if err != nil {
		return err
	}
	defer p.Unlock()

	old := p.HotbarSlot(slot)
	if err := s.deps.Validator.ValidateBlockPlacement(slot, itemID, old, newStack); err != nil {
		s.rejected(ctx, player, string(world.KindHotbar), err)
		return err
	}
	if s.deps.Catalogs != nil {
		if b := s.deps.Catalogs.Blocks.Get(itemID); b == nil || !b.Placeable {
			err := fmt.Errorf("%w: %d", ErrNotPlaceable, itemID)
			s.rejected(ctx, player, string(world.KindHotbar), err)
			return err
		}
	}

	stack := item.Deserialize(old)
	stack.RemoveCount(1)

	var next *item.Record
	if !stack.IsEmpty() {
		rec := stack.Serialize()
		next = &rec
	}
	hotbar := p.Hotbar.Clone()
	if next == nil {
		delete(hotbar, slot)
	} else {
		hotbar[slot] = next
	}
	if err := s.deps.Store.SaveBatch(ctx, []persist.ContainerWrite{
		{Ref: hotbarRef(player), Slots: hotbar},
	}); err != nil {
		return fmt.Errorf("save hotbar: %w", err)
	}
	p.SetHotbarSlot(slot, next)
	return nil
}

// SaveAll 將所有在線玩家的庫存寫入 DB（關機前呼叫）。單一玩家失敗不中斷其餘玩家。
func (s *InventorySystem) SaveAll(ctx context.Context) error {
	var errs []error
	saved := 0
	s.deps.World.AllPlayers(func(p *world.PlayerInventory) {
		if err := s.SavePlayer(ctx, p.Name); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", p.Name, err))
			return
		}
		saved++
	})
	s.deps.Log.Info("庫存全部存檔",
		zap.Int("saved", saved),
		zap.Int("failed", len(errs)),
		zap.Int("open_chests", s.deps.World.ChestCount()),
	)
	return errors.Join(errs...)
}

// Grant 是受信任的伺服器端發放（合成完成、掉落拾取、任務獎勵），不受「不得增加」規則限制。
// 先疊到同種物品的格位，再依序放入空格（快捷列優先）。回傳放不下的數量。
func (s *InventorySystem) Grant(ctx context.Context, player string, itemID, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	if count > math.MaxInt32 {
		return count, fmt.Errorf("%w: %d", ErrGrantTooLarge, count)
	}
	oracle := s.deps.Validator.Oracle()
	if !oracle.IsValidItem(itemID) {
		return count, fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}
	p, err := s.lockPlayer(player)
	if err != nil {
		return count, err
	}
	defer p.Unlock()

	hotbar := p.Hotbar.Clone()
	backpack := p.Backpack.Clone()
	src := item.NewWithMax(itemID, count, count)
	maxStack := oracle.MaxStack(itemID)

	containers := []struct {
		slots item.Slots
		size  int
	}{
		{hotbar, s.deps.Config.HotbarSize},
		{backpack, s.deps.Config.BackpackSize},
	}

	// 先補滿同種物品的格位
	for _, c := range containers {
		for idx := 1; idx <= c.size && !src.IsEmpty(); idx++ {
			rec := c.slots[idx]
			if rec == nil || rec.ItemID != itemID {
				continue
			}
			dst := item.Deserialize(rec)
			dst.MaxStack = maxStack
			if dst.Merge(src) > 0 {
				out := dst.Serialize()
				c.slots[idx] = &out
			}
		}
	}
	// 再放入空格
	for _, c := range containers {
		for idx := 1; idx <= c.size && !src.IsEmpty(); idx++ {
			if rec := c.slots[idx]; rec != nil && !rec.IsAir() && rec.Count > 0 {
				continue
			}
			n := min(src.Count, maxStack)
			dst := oracle.NewStack(itemID, n)
			src.RemoveCount(n)
			out := dst.Serialize()
			c.slots[idx] = &out
		}
	}

	leftover := 0
	if !src.IsEmpty() {
		leftover = src.Count
	}
	granted := count - leftover
	if granted == 0 {
		return leftover, nil
	}

	if err := s.deps.Store.SaveBatch(ctx, []persist.ContainerWrite{
		{Ref: hotbarRef(player), Slots: hotbar},
		{Ref: backpackRef(player), Slots: backpack},
	}); err != nil {
		return count, fmt.Errorf("save grant: %w", err)
	}
	p.Commit(hotbar, backpack)

	s.deps.Log.Debug("items granted",
		zap.String("player", player),
		zap.Int("item_id", itemID),
		zap.String("catalog", s.catalogOwner(itemID)),
		zap.Int("granted", granted),
		zap.Int("leftover", leftover),
	)
	s.writeAudit(ctx, []persist.AuditEntry{{
		Player:    player,
		Container: "inventory",
		Kind:      persist.AuditGranted,
		ItemID:    auditInt(itemID),
		Amount:    auditInt(granted),
	}})
	return leftover, nil
}

// ========================================================================
//  內部函式
// ========================================================================

// lockPlayer 鎖定在線玩家，並確認鎖住的仍是目前登記的物件。
// 在等待鎖的期間玩家可能已被卸載或重新載入。
func (s *InventorySystem) lockPlayer(player string) (*world.PlayerInventory, error) {
	p := s.deps.World.GetPlayer(player)
	if p == nil {
		return nil, ErrPlayerNotLoaded
	}
	p.Lock()
	if s.deps.World.GetPlayer(player) != p {
		p.Unlock()
		return nil, ErrPlayerNotLoaded
	}
	return p, nil
}

// lockChest 同 lockPlayer，用於寶箱。
func (s *InventorySystem) lockChest(key world.ChestKey) (*world.Chest, error) {
	c := s.deps.World.GetChest(key)
	if c == nil {
		return nil, ErrChestNotOpen
	}
	c.Lock()
	if s.deps.World.GetChest(key) != c {
		c.Unlock()
		return nil, ErrChestNotOpen
	}
	return c, nil
}

// savePlayerLocked 寫入玩家庫存；呼叫端須持有玩家鎖。
func (s *InventorySystem) savePlayerLocked(ctx context.Context, p *world.PlayerInventory) error {
	return s.deps.Store.SaveBatch(ctx, []persist.ContainerWrite{
		{Ref: hotbarRef(p.Name), Slots: p.Hotbar},
		{Ref: backpackRef(p.Name), Slots: p.Backpack},
	})
}

// auditInt 將數量收斂到稽核欄位 (INTEGER) 的範圍內。
func auditInt(n int) int32 {
	return int32(min(max(n, math.MinInt32), math.MaxInt32))
}

// loadContainer 讀取一個容器並依設定修復或驗證。
func (s *InventorySystem) loadContainer(ctx context.Context, player string, ref persist.ContainerRef, size int) (item.Slots, error) {
	slots, err := s.deps.Store.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}

	if !s.deps.Config.SanitizeOnLoad {
		if _, err := s.deps.Validator.ValidateSlotArray(slots, size); err != nil {
			return nil, fmt.Errorf("corrupt %s: %w", ref, err)
		}
		return slots, nil
	}

	repaired, modified := s.deps.Validator.SanitizeSlotArray(slots, size)
	if !modified {
		return slots, nil
	}
	s.deps.Log.Warn("庫存資料已修復",
		zap.String("container", ref.String()),
		zap.Int("before", len(slots)),
		zap.Int("after", len(repaired)),
	)
	if err := s.deps.Store.SaveBatch(ctx, []persist.ContainerWrite{{Ref: ref, Slots: repaired}}); err != nil {
		return nil, fmt.Errorf("save repaired %s: %w", ref, err)
	}
	s.writeAudit(ctx, []persist.AuditEntry{{
		Player:    player,
		Container: ref.String(),
		Kind:      persist.AuditRepaired,
		Reason:    "sanitized on load",
	}})
	return repaired, nil
}

// rejected 記錄被丟棄的客戶端提交。
func (s *InventorySystem) rejected(ctx context.Context, player, container string, err error) {
	s.deps.Log.Warn("庫存提交被拒絕",
		zap.String("player", player),
		zap.String("container", container),
		zap.String("kind", validate.KindOf(err).String()),
		zap.Error(err),
	)
	s.writeAudit(ctx, []persist.AuditEntry{{
		Player:    player,
		Container: container,
		Kind:      persist.AuditRejected,
		Reason:    err.Error(),
	}})
}

// writeAudit 寫入稽核；失敗只記錄日誌，不影響已完成的判定。
func (s *InventorySystem) writeAudit(ctx context.Context, entries []persist.AuditEntry) {
	if s.deps.Audit == nil {
		return
	}
	if err := s.deps.Audit.Write(ctx, entries); err != nil {
		s.deps.Log.Error("稽核寫入失敗", zap.Error(err), zap.Int("entries", len(entries)))
	}
}

// catalogOwner 供日誌使用：回傳物品所屬目錄名稱。
func (s *InventorySystem) catalogOwner(itemID int) string {
	if s.deps.Catalogs == nil {
		return data.KindNone.String()
	}
	return s.deps.Catalogs.Owner(itemID).String()
}
