package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/V1per16/an0n-chat-render/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChatModule owns the persistent message log and its mutation service.
type ChatModule struct {
	db       *gorm.DB
	pool     *pgxpool.Pool
	service  *ChatService
	eventBus mono.EventBus
	dbPath   string
	dbURL    string
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*ChatModule)(nil)
	_ mono.ServiceProviderModule = (*ChatModule)(nil)
	_ mono.EventBusAwareModule   = (*ChatModule)(nil)
	_ mono.EventEmitterModule    = (*ChatModule)(nil)
	_ mono.HealthCheckableModule = (*ChatModule)(nil)
)

// NewModule creates a new ChatModule. The storage backend is selected by
// CHAT_DATABASE_URL: set it to use Postgres via pgx, leave it empty for the
// GORM/SQLite file store at CHAT_DB_PATH.
func NewModule() *ChatModule {
	dbPath := os.Getenv("CHAT_DB_PATH")
	if dbPath == "" {
		dbPath = "chat.db"
	}
	return &ChatModule{
		dbPath: dbPath,
		dbURL:  os.Getenv("CHAT_DATABASE_URL"),
	}
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *ChatModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *ChatModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessagePostedV1.ToBase(),
		events.MessageEditedV1.ToBase(),
		events.MessageDeletedV1.ToBase(),
	}
}

// Start opens the selected storage backend and creates the service.
func (m *ChatModule) Start(ctx context.Context) error {
	var messageLog MessageLog

	if m.dbURL != "" {
		config, err := pgxpool.ParseConfig(m.dbURL)
		if err != nil {
			return fmt.Errorf("failed to parse database URL: %w", err)
		}
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}
		m.pool = pool

		pgLog := NewPostgresMessageLog(pool)
		if err := pgLog.EnsureSchema(ctx); err != nil {
			pool.Close()
			return err
		}
		messageLog = pgLog
		log.Println("[chat] Message log: postgres (pgx)")
	} else {
		db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.AutoMigrate(&domain.Message{}); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		m.db = db
		messageLog = NewGormMessageLog(db)
		log.Printf("[chat] Message log: sqlite (%s)", m.dbPath)
	}

	m.service = NewChatService(messageLog, m.eventBus)
	log.Println("[chat] Module started")
	return nil
}

// Stop shuts down the module.
func (m *ChatModule) Stop(_ context.Context) error {
	if m.pool != nil {
		m.pool.Close()
	}
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *ChatModule) Health(ctx context.Context) mono.HealthStatus {
	if m.pool != nil {
		if err := m.pool.Ping(ctx); err != nil {
			return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
		}
		return mono.HealthStatus{
			Healthy: true,
			Message: "operational",
			Details: map[string]any{"backend": "postgres"},
		}
	}

	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get database connection: %v", err)}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"backend": "sqlite", "database": m.dbPath},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *ChatModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "post", json.Unmarshal, json.Marshal, m.handlePost,
	); err != nil {
		return fmt.Errorf("failed to register post service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "edit", json.Unmarshal, json.Marshal, m.handleEdit,
	); err != nil {
		return fmt.Errorf("failed to register edit service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "history", json.Unmarshal, json.Marshal, m.handleHistory,
	); err != nil {
		return fmt.Errorf("failed to register history service: %w", err)
	}

	log.Printf("[chat] Registered services: post, edit, delete, history")
	return nil
}

func (m *ChatModule) handlePost(ctx context.Context, req PostMessageRequest, _ *mono.Msg) (PostMessageResponse, error) {
	msg, err := m.service.Post(ctx, req.Author(), req.Text)
	if err != nil {
		return PostMessageResponse{}, err
	}
	return PostMessageResponse{Message: *msg}, nil
}

// handleEdit carries denials in the response so the caller can distinguish
// not_author from not_found without string matching.
func (m *ChatModule) handleEdit(ctx context.Context, req EditMessageRequest, _ *mono.Msg) (EditMessageResponse, error) {
	err := m.service.Edit(ctx, req.RequesterID, req.MessageID, req.NewText)
	switch {
	case err == nil:
		return EditMessageResponse{Applied: true}, nil
	case errors.Is(err, ErrNotAuthor):
		return EditMessageResponse{Applied: false, Error: "not_author"}, nil
	case errors.Is(err, ErrMessageNotFound):
		return EditMessageResponse{Applied: false, Error: "not_found"}, nil
	default:
		return EditMessageResponse{}, err
	}
}

func (m *ChatModule) handleDelete(ctx context.Context, req DeleteMessageRequest, _ *mono.Msg) (DeleteMessageResponse, error) {
	err := m.service.Delete(ctx, req.RequesterID, req.MessageID)
	switch {
	case err == nil:
		return DeleteMessageResponse{Applied: true}, nil
	case errors.Is(err, ErrNotAuthor):
		return DeleteMessageResponse{Applied: false, Error: "not_author"}, nil
	case errors.Is(err, ErrMessageNotFound):
		return DeleteMessageResponse{Applied: false, Error: "not_found"}, nil
	default:
		return DeleteMessageResponse{}, err
	}
}

func (m *ChatModule) handleHistory(ctx context.Context, req HistoryRequest, _ *mono.Msg) (HistoryResponse, error) {
	messages, err := m.service.History(ctx, req.Limit)
	if err != nil {
		return HistoryResponse{}, err
	}
	return HistoryResponse{Messages: messages}, nil
}
