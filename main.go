package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/events"
	"task-manager/handlers"
	"task-manager/logging"
	"task-manager/repositories"
	"task-manager/services"
	"task-manager/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logging.InitLogger()

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("No .env file loaded: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Database connection failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("MongoDB connection error: %v", err)
	}

	db := client.Database("task_manager_db")

	projectRepo := repositories.NewProjectRepository(db.Collection("projects"))
	userRepo := repositories.NewUserRepository(db.Collection("users"))
	taskRepo := repositories.NewTaskRepository(db.Collection("tasks"))
	messageRepo := repositories.NewMessageRepository(db.Collection("conversations"), db.Collection("messages"))

	notificationRepo, err := repositories.NewNotificationRepository(logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Failed to initialize notification repository: %v", err)
	}
	defer notificationRepo.CloseSession()
	notificationRepo.CreateTable()

	// The bus lives for the whole process; every mutating service publishes
	// into it and the subscription gateway reads from it.
	bus := events.NewBus()

	emailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "email-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	notificationService := services.NewNotificationService(notificationRepo, userRepo, bus)
	projectService := services.NewProjectService(projectRepo, userRepo, notificationService, bus)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, notificationService, utils.NewSMTPSenderFromEnv(), emailBreaker, bus)
	messageService := services.NewMessageService(messageRepo, userRepo, bus)
	userService := services.NewUserService(userRepo)

	projectHandler := handlers.NewProjectHandler(projectService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	taskHandler := handlers.NewTaskHandler(taskService)
	messageHandler := handlers.NewMessageHandler(messageService)
	userHandler := handlers.NewUserHandler(userService)
	subscriptionHandler := handlers.NewSubscriptionHandler(bus)

	r := mux.NewRouter()
	r.HandleFunc("/api/projects", projectHandler.CreateProject).Methods("POST")
	r.HandleFunc("/api/projects", projectHandler.ListProjects).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}", projectHandler.GetProjectByID).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}", projectHandler.DeleteProject).Methods("DELETE")
	r.HandleFunc("/api/projects/{projectId}/invitations", projectHandler.InviteUser).Methods("POST")
	r.HandleFunc("/api/projects/{projectId}/invitations", projectHandler.RespondToInvitation).Methods("PUT")
	r.HandleFunc("/api/projects/{projectId}/members", projectHandler.AddMember).Methods("POST")
	r.HandleFunc("/api/projects/{projectId}/tasks", taskHandler.GetTasksByProject).Methods("GET")
	r.HandleFunc("/api/tasks", taskHandler.CreateTask).Methods("POST")
	r.HandleFunc("/api/notifications", notificationHandler.CreateNotification).Methods("POST")
	r.HandleFunc("/api/notifications", notificationHandler.GetNotifications).Methods("GET")
	r.HandleFunc("/api/notifications/{notificationId}/read", notificationHandler.MarkNotificationRead).Methods("PUT")
	r.HandleFunc("/api/notifications/{notificationId}", notificationHandler.DeleteNotification).Methods("DELETE")
	r.HandleFunc("/api/conversations", messageHandler.CreateConversation).Methods("POST")
	r.HandleFunc("/api/conversations/{conversationId}/messages", messageHandler.SendMessage).Methods("POST")
	r.HandleFunc("/api/conversations/{conversationId}/messages", messageHandler.GetMessages).Methods("GET")
	r.HandleFunc("/api/users", userHandler.EnsureUser).Methods("POST")
	r.HandleFunc("/api/users/search", userHandler.SearchUsers).Methods("GET")
	r.HandleFunc("/api/subscriptions/{topics}", subscriptionHandler.Subscribe).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Task manager service is running"))
	}).Methods("GET")

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: enableCORS(r),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Logger.Infof("Server is running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-runCtx.Done()
	logging.Logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Server shutdown error: %v", err)
	}
	bus.Close()
}

// enableCORS allows CORS for the frontend application
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
