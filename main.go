package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mohammedh897/graduation-backend/handlers"
	"github.com/mohammedh897/graduation-backend/jobs"
	"github.com/mohammedh897/graduation-backend/logging"
	"github.com/mohammedh897/graduation-backend/mailer"
	appmiddleware "github.com/mohammedh897/graduation-backend/middleware"
	"github.com/mohammedh897/graduation-backend/repositories"
	"github.com/mohammedh897/graduation-backend/services"
)

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting graduation backend...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded, relying on process environment: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "graduation_db"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	usersCollection := db.Collection("users")
	projectsCollection := db.Collection("projects")
	tasksCollection := db.Collection("tasks")

	if err := repositories.EnsureTeamCodeIndex(ctx, projectsCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	userRepo := repositories.NewUserRepository(usersCollection)
	projectRepo := repositories.NewProjectRepository(projectsCollection)
	taskRepo := repositories.NewTaskRepository(tasksCollection)

	var mailSvc mailer.Service
	if os.Getenv("EMAIL_PASSWORD") != "" {
		mailSvc = mailer.NewSMTPMailer()
	} else {
		logging.Logger.Warn("Event ID: MAILER_DISABLED, Description: EMAIL_PASSWORD not set, emails will be skipped")
		mailSvc = mailer.NoopMailer{}
	}

	projectService := services.NewProjectService(projectRepo, userRepo, mailSvc)
	taskService := services.NewTaskService(taskRepo, projectRepo)
	supervisorService := services.NewSupervisorService(userRepo, projectRepo, taskRepo, projectService)
	userService := services.NewUserService(userRepo)

	discussionDays := services.DefaultDiscussionWindowDays
	if v := os.Getenv("DISCUSSION_WINDOW_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			discussionDays = parsed
		}
	}
	dashboardService := services.NewDashboardService(userRepo, projectRepo, taskRepo, projectService, taskService, supervisorService, discussionDays)

	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	supervisorHandler := handlers.NewSupervisorHandler(supervisorService)
	userHandler := handlers.NewUserHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/users/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/supervisors/available", supervisorHandler.GetAvailableSupervisors).Methods(http.MethodGet)

	// Authenticated routes
	projectsRouter := api.PathPrefix("/projects").Subrouter()
	projectsRouter.Use(appmiddleware.JWTAuthMiddleware)
	projectsRouter.HandleFunc("/create", projectHandler.CreateProject).Methods(http.MethodPost)
	projectsRouter.HandleFunc("/join", projectHandler.JoinProject).Methods(http.MethodPost)
	projectsRouter.HandleFunc("/my-project", projectHandler.GetMyProject).Methods(http.MethodGet)
	projectsRouter.HandleFunc("/members", projectHandler.GetProjectMembers).Methods(http.MethodGet)
	projectsRouter.HandleFunc("/{projectId}/final-presentation", projectHandler.SetFinalPresentation).Methods(http.MethodPut)
	projectsRouter.HandleFunc("/{projectId}/final-presentation", projectHandler.GetFinalPresentation).Methods(http.MethodGet)

	tasksRouter := api.PathPrefix("/tasks").Subrouter()
	tasksRouter.Use(appmiddleware.JWTAuthMiddleware)
	tasksRouter.HandleFunc("", taskHandler.CreateTask).Methods(http.MethodPost)
	tasksRouter.HandleFunc("", taskHandler.GetProjectTasks).Methods(http.MethodGet)
	tasksRouter.HandleFunc("/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	tasksRouter.HandleFunc("/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	api.Handle("/dashboard", appmiddleware.JWTAuthMiddleware(http.HandlerFunc(dashboardHandler.GetDashboard))).Methods(http.MethodGet)

	// Supervisor-only routes
	supervisorsRouter := api.PathPrefix("/supervisors").Subrouter()
	supervisorsRouter.Use(appmiddleware.JWTAuthMiddleware, appmiddleware.SupervisorOnly)
	supervisorsRouter.HandleFunc("/status", supervisorHandler.UpdateStatus).Methods(http.MethodPut)
	supervisorsRouter.HandleFunc("/max-projects", supervisorHandler.SetMaxProjects).Methods(http.MethodPut)
	supervisorsRouter.HandleFunc("/projects", supervisorHandler.GetMyProjects).Methods(http.MethodGet)
	supervisorsRouter.HandleFunc("/students", supervisorHandler.GetMyStudents).Methods(http.MethodGet)
	supervisorsRouter.HandleFunc("/teams/{projectId}", supervisorHandler.GetTeamDetails).Methods(http.MethodGet)
	supervisorsRouter.HandleFunc("/teams/{projectId}/tasks", supervisorHandler.GetTeamTasks).Methods(http.MethodGet)

	// Admin-only routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(appmiddleware.JWTAuthMiddleware, appmiddleware.AdminOnly)
	adminRouter.HandleFunc("/users", userHandler.GetAllUsers).Methods(http.MethodGet)
	adminRouter.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/tasks", taskHandler.GetAllTasks).Methods(http.MethodGet)

	// Reminder sweep runs independently of request handling.
	reminderInterval := time.Hour
	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			reminderInterval = parsed
		}
	}
	reminderJob := jobs.NewReminderJob(taskRepo, userRepo, mailSvc, reminderInterval)
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	go reminderJob.Run(jobCtx)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
