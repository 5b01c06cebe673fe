package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sweepInterval controls the periodic eviction of expired sessions from the
// memory backend. Expiry is still checked on every use; this is hygiene only.
const sweepInterval = time.Hour

// AuthModule provides the credential/profile service and the session store.
type AuthModule struct {
	db          *gorm.DB
	redisClient *redis.Client
	sessions    SessionStore
	service     *AuthService
	dbPath      string
	redisAddr   string
	sessionTTL  time.Duration
	stopSweep   chan struct{}
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*AuthModule)(nil)
	_ mono.ServiceProviderModule = (*AuthModule)(nil)
	_ mono.HealthCheckableModule = (*AuthModule)(nil)
)

// NewModule creates a new AuthModule. The session backend is selected by
// REDIS_ADDR: set it to use Redis, leave it empty for the in-memory store.
func NewModule() *AuthModule {
	dbPath := os.Getenv("AUTH_DB_PATH")
	if dbPath == "" {
		dbPath = "chat.db"
	}

	ttl := DefaultSessionTTL
	if days := os.Getenv("SESSION_TTL_DAYS"); days != "" {
		if parsed, err := strconv.Atoi(days); err == nil && parsed > 0 {
			ttl = time.Duration(parsed) * 24 * time.Hour
		}
	}

	return &AuthModule{
		dbPath:     dbPath,
		redisAddr:  os.Getenv("REDIS_ADDR"),
		sessionTTL: ttl,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user database and wires the session backend.
func (m *AuthModule) Start(ctx context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if m.redisAddr != "" {
		m.redisClient = redis.NewClient(&redis.Options{
			Addr:         m.redisAddr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := m.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		m.sessions = NewRedisSessionStore(m.redisClient, m.sessionTTL)
		log.Printf("[auth] Session store: redis at %s", m.redisAddr)
	} else {
		memStore := NewMemorySessionStore(m.sessionTTL)
		m.sessions = memStore
		m.stopSweep = make(chan struct{})
		go m.runSweep(memStore)
		log.Println("[auth] Session store: in-memory")
	}

	repo := NewUserRepository(db)
	m.service, err = NewAuthService(repo, NewPasswordHasher(), m.sessions)
	if err != nil {
		return err
	}

	log.Printf("[auth] Module started (database: %s, session ttl: %s)", m.dbPath, m.sessionTTL)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.stopSweep != nil {
		close(m.stopSweep)
	}
	if m.redisClient != nil {
		if err := m.redisClient.Close(); err != nil {
			log.Printf("[auth] Error closing Redis connection: %v", err)
		}
	}
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
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
	if m.redisClient != nil {
		if err := m.redisClient.Ping(ctx).Err(); err != nil {
			return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err)}
		}
	}

	backend := "memory"
	if m.redisClient != nil {
		backend = "redis"
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database":        m.dbPath,
			"session_backend": backend,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func() error{
		"register": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "register", json.Unmarshal, json.Marshal, m.handleRegister)
		},
		"login": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "login", json.Unmarshal, json.Marshal, m.handleLogin)
		},
		"logout": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "logout", json.Unmarshal, json.Marshal, m.handleLogout)
		},
		"validate-session": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "validate-session", json.Unmarshal, json.Marshal, m.handleValidateSession)
		},
		"update-profile": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "update-profile", json.Unmarshal, json.Marshal, m.handleUpdateProfile)
		},
		"get-user": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser)
		},
	}
	for name, register := range services {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[auth] Registered services: register, login, logout, validate-session, update-profile, get-user")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Name, req.Password, req.Color)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{User: NewUserPayload(*user)}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	token, user, err := m.service.Login(ctx, req.Name, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		Token:     token,
		User:      NewUserPayload(*user),
		ExpiresIn: int64(m.sessionTTL.Seconds()),
	}, nil
}

func (m *AuthModule) handleLogout(ctx context.Context, req LogoutRequest, _ *mono.Msg) (LogoutResponse, error) {
	if err := m.service.Logout(ctx, req.Token); err != nil {
		return LogoutResponse{}, err
	}
	return LogoutResponse{Revoked: true}, nil
}

// handleValidateSession reports validation failures in the response rather
// than as service errors so callers can distinguish expired from unknown.
func (m *AuthModule) handleValidateSession(ctx context.Context, req ValidateSessionRequest, _ *mono.Msg) (ValidateSessionResponse, error) {
	sess, err := m.service.ValidateSession(ctx, req.Token)
	if err != nil {
		reason := "not_found"
		if errors.Is(err, ErrSessionExpired) {
			reason = "expired"
		} else if !errors.Is(err, ErrSessionNotFound) {
			return ValidateSessionResponse{}, err
		}
		return ValidateSessionResponse{Valid: false, Error: reason}, nil
	}
	return ValidateSessionResponse{
		Valid:     true,
		User:      NewUserPayload(sess.User),
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (UpdateProfileResponse, error) {
	user, err := m.service.UpdateProfile(ctx, req.UserID, req.Name, req.Color)
	if err != nil {
		return UpdateProfileResponse{}, err
	}
	return UpdateProfileResponse{User: NewUserPayload(*user)}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}
	return GetUserResponse{User: NewUserPayload(*user)}, nil
}

func (m *AuthModule) runSweep(store *MemorySessionStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := store.Sweep(); removed > 0 {
				log.Printf("[auth] Swept %d expired sessions", removed)
			}
		case <-m.stopSweep:
			return
		}
	}
}
