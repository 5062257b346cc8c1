package factory

import (
	"fmt"

	"github.com/thortx/thortx-go/pkg/config"
	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/persistence/badger"
	"github.com/thortx/thortx-go/pkg/persistence/memory"
	"github.com/thortx/thortx-go/pkg/persistence/redis"
	"go.uber.org/zap"
)

// NewJournal opens the journal backend selected by cfg.
func NewJournal(cfg *config.JournalConfig, logger *zap.Logger) (persistence.ITxJournal, error) {
	switch cfg.Type {
	case config.JournalType_Memory, "":
		logger.Sugar().Warnw("Using in-memory journal, pending transactions are lost on exit")
		return memory.NewMemoryJournal(), nil
	case config.JournalType_Badger:
		return badger.NewBadgerJournal(cfg.DataPath, logger)
	case config.JournalType_Redis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis journal requires a redis config")
		}
		return redis.NewRedisJournal(&redis.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported journal type: %s", cfg.Type)
	}
}
