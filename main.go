package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/V1per16/an0n-chat-render/modules/api"
	"github.com/V1per16/an0n-chat-render/modules/auth"
	"github.com/V1per16/an0n-chat-render/modules/broadcast"
	"github.com/V1per16/an0n-chat-render/modules/chat"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== an0n chat - realtime multi-user chat server ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	authModule := auth.NewModule()
	chatModule := chat.NewModule()
	broadcastModule := broadcast.NewModule()
	apiModule := api.NewModule()

	// Inject broadcast hub into API module
	// (This is done manually because the hub is not exposed via ServiceContainer)
	apiModule.SetHub(broadcastModule.GetHub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - auth: Accounts and sessions (ServiceProviderModule)
	// - chat: Message log (ServiceProviderModule + EventEmitterModule)
	// - broadcast: Event consumer (EventConsumerModule for WebSocket fan-out)
	// - api: Driving adapter (Fiber HTTP/WebSocket server, depends on auth + chat)
	app.Register(authModule)      // Accounts + sessions
	app.Register(chatModule)      // Message log + event emitter
	app.Register(broadcastModule) // WebSocket hub + event consumer
	app.Register(apiModule)       // HTTP/WebSocket API

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Storage:")
	log.Println("  - Users/messages: SQLite (set CHAT_DATABASE_URL for Postgres messages)")
	log.Println("  - Sessions: in-memory (set REDIS_ADDR for Redis)")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                  - Health check")
	log.Println("  POST   /api/v1/auth/register    - Create an account")
	log.Println("  POST   /api/v1/auth/login       - Log in, returns session token")
	log.Println("  POST   /api/v1/auth/logout      - Revoke the session token")
	log.Println("  GET    /api/v1/users/me         - Current profile")
	log.Println("  PUT    /api/v1/users/me         - Update name / color")
	log.Println("  GET    /api/v1/messages         - Recent message history")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Connect with: ws://localhost:3000/ws?token=<session token>")
	log.Println("  Inbound types: post, edit, delete, typing")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
