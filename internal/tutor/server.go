// Package tutor provides the tutoring API server implementation.
package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/tutor-x/internal/pkg/document"
	"github.com/kart-io/tutor-x/internal/tutor/biz"
	"github.com/kart-io/tutor-x/internal/tutor/handler"
	"github.com/kart-io/tutor-x/internal/tutor/router"
	"github.com/kart-io/tutor-x/internal/tutor/store"
	"github.com/kart-io/tutor-x/pkg/app"
	"github.com/kart-io/tutor-x/pkg/llm"
	llmopts "github.com/kart-io/tutor-x/pkg/options/llm"
	logopts "github.com/kart-io/tutor-x/pkg/options/logger"
	ragopts "github.com/kart-io/tutor-x/pkg/options/rag"
	httpopts "github.com/kart-io/tutor-x/pkg/options/server/http"
	sessionopts "github.com/kart-io/tutor-x/pkg/options/session"
	"github.com/kart-io/tutor-x/pkg/server"

	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/tutor-x/pkg/llm/groq"
	_ "github.com/kart-io/tutor-x/pkg/llm/ollama"
)

// Name is the name of the application.
const Name = "tutor-api"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	RAGOptions       *ragopts.Options
	SessionOptions   *sessionopts.Options
	ShutdownTimeout  time.Duration
}

// Server represents the tutoring API server.
type Server struct {
	srv        *server.Server
	redisClose func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(_ context.Context) (*Server, error) {
	printBanner(cfg)

	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting tutor service...")

	// 2. 初始化 LLM 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	// 3. 初始化 Store 层
	vectorStore, err := store.NewDiskStore(cfg.RAGOptions.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	logger.Infow("Vector store initialized", "data_dir", cfg.RAGOptions.DataDir)

	// 4. 初始化会话存储（可选 Redis，连接失败时回退到内存）
	var sessionStore biz.SessionStore
	var redisClose func()
	if cfg.SessionOptions.RedisEnabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.SessionOptions.RedisAddr,
			Password: cfg.SessionOptions.RedisPassword,
			DB:       cfg.SessionOptions.RedisDB,
		})

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnw("failed to connect to redis, falling back to in-memory sessions", "error", err.Error())
			_ = redisClient.Close()
			sessionStore = biz.NewMemorySessionStore(cfg.SessionOptions.HistoryLimit)
		} else {
			sessionStore = biz.NewRedisSessionStore(redisClient, cfg.SessionOptions.HistoryLimit, cfg.SessionOptions.KeyPrefix)
			redisClose = func() { _ = redisClient.Close() }
			logger.Infow("Redis session store initialized",
				"addr", cfg.SessionOptions.RedisAddr,
				"history_limit", cfg.SessionOptions.HistoryLimit,
			)
		}
	} else {
		sessionStore = biz.NewMemorySessionStore(cfg.SessionOptions.HistoryLimit)
		logger.Infow("In-memory session store initialized", "history_limit", cfg.SessionOptions.HistoryLimit)
	}

	// 5. 初始化 Biz 层
	chatService := biz.NewChatService(chatProvider, sessionStore)
	coachService := biz.NewCoachService(chatService)
	splitter := document.NewRecursiveSplitter(document.SplitterConfig{
		ChunkSize:    cfg.RAGOptions.ChunkSize,
		ChunkOverlap: cfg.RAGOptions.ChunkOverlap,
	})
	studyService := biz.NewStudyService(embedProvider, chatService, vectorStore, splitter, cfg.RAGOptions.TopK)
	logger.Infow("Tutor services initialized",
		"chunk_size", cfg.RAGOptions.ChunkSize,
		"chunk_overlap", cfg.RAGOptions.ChunkOverlap,
		"top_k", cfg.RAGOptions.TopK,
	)

	// 6. 初始化 Handler 层
	healthHandler := handler.NewHealthHandler(chatProvider, embedProvider, cfg.ChatOptions.APIKey != "")
	chatHandler := handler.NewChatHandler(chatService)
	coachHandler := handler.NewCoachHandler(coachService)
	studyHandler := handler.NewStudyHandler(studyService, cfg.RAGOptions.UploadDir, cfg.RAGOptions.MaxUploadSize)
	logger.Info("Handler layer initialized")

	// 7. 初始化服务器
	srv := server.New(
		server.WithHTTPOptions(cfg.HTTPOptions),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)

	// 8. 注册路由
	router.Register(srv.Engine(), healthHandler, chatHandler, coachHandler, studyHandler)

	logger.Info("Tutor service is ready")
	return &Server{
		srv:        srv,
		redisClose: redisClose,
	}, nil
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if s.redisClose != nil {
			s.redisClose()
		}
	}()
	return s.srv.Run(ctx)
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)
	fmt.Printf("  Listen: %s\n", cfg.HTTPOptions.Addr)
}
