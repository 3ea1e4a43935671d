package api

import (
	"log/slog"

	"github.com/shaiso/FlowMaster/internal/executor"
)

// defaultMaxBodyBytes — лимит размера тела запроса.
const defaultMaxBodyBytes = 1 << 20 // 1 MB

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	executor     *executor.Executor
	maxBodyBytes int64
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Executor     *executor.Executor
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	exec := cfg.Executor
	if exec == nil {
		exec = executor.New(executor.Config{Logger: cfg.Logger})
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		executor:     exec,
		maxBodyBytes: maxBody,
		logger:       logger,
	}
}
