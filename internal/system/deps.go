package system

import (
	"context"
	"errors"

	"github.com/voxelkeep/server/internal/config"
	"github.com/voxelkeep/server/internal/data"
	"github.com/voxelkeep/server/internal/item"
	"github.com/voxelkeep/server/internal/persist"
	"github.com/voxelkeep/server/internal/validate"
	"github.com/voxelkeep/server/internal/world"
	"go.uber.org/zap"
)

// Store 是權威庫存的持久層（persist.SlotRepo 實作）。
type Store interface {
	Load(ctx context.Context, ref persist.ContainerRef) (item.Slots, error)
	SaveBatch(ctx context.Context, writes []persist.ContainerWrite) error
	ListContainers(ctx context.Context) ([]persist.ContainerRef, error)
}

// Auditor 接收拒絕、銷毀、修復、發放的稽核記錄（persist.AuditRepo 實作）。
type Auditor interface {
	Write(ctx context.Context, entries []persist.AuditEntry) error
}

// Deps 集中 InventorySystem 的所有依賴。
type Deps struct {
	World     *world.State
	Validator *validate.Validator
	Catalogs  *data.Catalogs // 可為 nil：不檢查方塊是否可放置
	Store     Store
	Audit     Auditor // 可為 nil：只寫日誌
	Config    config.InventoryConfig
	Log       *zap.Logger
}

var (
	ErrPlayerNotLoaded = errors.New("player inventory not loaded")
	ErrChestNotOpen    = errors.New("chest not open")
	ErrNotPlaceable    = errors.New("item is not a placeable block")
	ErrUnknownItem     = errors.New("unknown item")
	ErrGrantTooLarge   = errors.New("grant count out of range")
)
