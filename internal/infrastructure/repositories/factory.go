package repositories

import (
	"context"

	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/infrastructure/repositories/memory"
	redisrepo "github.com/Netboss008/yacoolo/internal/infrastructure/repositories/redis"
	"github.com/Netboss008/yacoolo/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

// RedisClient exposes the shared client for the event bridge and the
// cross-instance stream lock. Nil when running on memory repositories.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	if f.useRedis {
		return f.redisClient
	}
	return nil
}

func (f *RepositoryFactory) CreateStreamRepository() ports.StreamRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisStreamRepository(f.redisClient)
	}
	return memory.NewMemoryStreamRepository()
}

// Control, moderation and user records stay in memory; only the stream
// registry is shared across instances for now.
func (f *RepositoryFactory) CreateInterventionRepository() ports.InterventionRepository {
	return memory.NewMemoryInterventionRepository()
}

func (f *RepositoryFactory) CreateTakeoverRepository() ports.TakeoverRepository {
	return memory.NewMemoryTakeoverRepository()
}

func (f *RepositoryFactory) CreateModeratorRepository() ports.ModeratorRepository {
	return memory.NewMemoryModeratorRepository()
}

func (f *RepositoryFactory) CreateModerationLogRepository() ports.ModerationLogRepository {
	return memory.NewMemoryModerationLogRepository()
}

func (f *RepositoryFactory) CreateChatMessageRepository() ports.ChatMessageRepository {
	return memory.NewMemoryChatMessageRepository()
}

func (f *RepositoryFactory) CreateLegalAnalysisRepository() ports.LegalAnalysisRepository {
	return memory.NewMemoryLegalAnalysisRepository()
}

func (f *RepositoryFactory) CreateSettingsRepository() ports.SettingsRepository {
	return memory.NewMemorySettingsRepository()
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	return memory.NewMemoryUserRepository()
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
