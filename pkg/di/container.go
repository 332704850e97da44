package di

import (
	"context"

	"character-chat/backend/internal/llm"
	"character-chat/backend/internal/service"
	"character-chat/backend/internal/session"
	"character-chat/backend/internal/store"
	"character-chat/backend/pkg/config"
	"character-chat/backend/pkg/jwt"
	"character-chat/backend/pkg/logger"
	"character-chat/backend/pkg/resilience"
	"character-chat/backend/pkg/secrets"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *logger.Logger

	Stores         *store.GormStores
	SessionBackend session.Backend
	Completions    llm.Client
	JWTService     *jwt.Service

	Characters    *service.CharacterService
	Conversations *service.ConversationService
	Prompts       *service.PromptBuilder
	Guard         *service.AccessGuard
	Chat          *service.ChatService
	Users         *service.UserService
}

// New wires the full dependency graph from the database connection outward.
func New(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Container {
	stores := store.NewGormStores(db)

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	// API key resolution goes through the secrets manager so Vault can
	// override the environment when configured.
	apiKey := secrets.CompletionAPIKey(context.Background(), cfg.Completion.APIKey)
	breaker := resilience.New(resilience.DefaultConfig("completion"), log)
	completions := llm.WithBreaker(llm.NewClient(cfg, apiKey), breaker)

	var backend session.Backend
	if cfg.Session.RedisAddr != "" {
		backend = session.NewRedisBackend(cfg.Session.RedisAddr, cfg.Session.RedisDB, cfg.Session.TTL)
	} else {
		backend = session.NewMemoryBackendTTL(cfg.Session.TTL)
	}

	prompts := service.NewPromptBuilder(stores.Messages)

	return &Container{
		Config:         cfg,
		DB:             db,
		Logger:         log,
		Stores:         stores,
		SessionBackend: backend,
		Completions:    completions,
		JWTService:     jwtService,
		Characters:     service.NewCharacterService(stores.Characters),
		Conversations:  service.NewConversationService(stores.Conversations, stores.Messages),
		Prompts:        prompts,
		Guard:          service.NewAccessGuard(stores.Characters, stores.Conversations),
		Chat:           service.NewChatService(stores.Messages, prompts, completions, log),
		Users:          service.NewUserService(stores.Users, jwtService),
	}
}
