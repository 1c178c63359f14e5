package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/courseward-api/internal/config"
	"github.com/yourusername/courseward-api/internal/handler"
	"github.com/yourusername/courseward-api/internal/llm"
	"github.com/yourusername/courseward-api/internal/middleware"
	"github.com/yourusername/courseward-api/internal/rag/composer"
	"github.com/yourusername/courseward-api/internal/rag/embedding"
	"github.com/yourusername/courseward-api/internal/rag/ingest"
	"github.com/yourusername/courseward-api/internal/rag/vectorstore"
	pgRepo "github.com/yourusername/courseward-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/courseward-api/internal/repository/redis"
	"github.com/yourusername/courseward-api/internal/service"
	"github.com/yourusername/courseward-api/internal/storage"
	"github.com/yourusername/courseward-api/pkg/auth"
	"github.com/yourusername/courseward-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(database.RedisConfig{
		Mode:       cfg.Redis.Mode,
		Addrs:      cfg.Redis.Addresses(),
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	courseRepo := pgRepo.NewCourseRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	fileRepo := pgRepo.NewFileRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Векторный индекс: по одной коллекции на курс
	vectorStore, err := vectorstore.NewFileStore(cfg.RAG.IndexPath)
	if err != nil {
		log.Printf("Failed to initialize vector store: %v", err)
		os.Exit(1)
	}

	// Хранилище исходных документов
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var provider storage.Provider
	switch cfg.Storage.Provider {
	case "minio":
		provider, err = storage.NewMinioProvider(ctx,
			cfg.Storage.MinioEndpoint,
			cfg.Storage.MinioAccessKey,
			cfg.Storage.MinioSecretKey,
			cfg.Storage.MinioBucket,
			cfg.Storage.MinioUseSSL,
		)
	default:
		provider, err = storage.NewLocalProvider(cfg.Storage.LocalPath)
	}
	if err != nil {
		log.Printf("Failed to initialize storage provider %q: %v", cfg.Storage.Provider, err)
		os.Exit(1)
	}

	// Клиенты OpenAI-совместимого API: эмбеддинги и чат-комплишены
	embedder := embedding.NewOpenAIEmbedder(
		cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.EmbeddingModel,
		cfg.LLM.Timeout, cfg.LLM.MaxRetries,
	)
	completer := llm.NewOpenAIClient(
		cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.ChatModel,
		cfg.LLM.Timeout, cfg.LLM.MaxRetries,
	)

	splitter := ingest.NewTextSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	promptComposer := composer.NewComposer(embedder, vectorStore, cfg.RAG.TopK)

	// Почта: при выключенном флаге письма не отправляются
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo)
	courseService := service.NewCourseService(courseRepo, userRepo, vectorStore, emailService)
	quizService := service.NewQuizService(quizRepo, courseRepo, attemptRepo, userRepo, cacheRepo)
	attemptService := service.NewAttemptService(attemptRepo, courseRepo, quizService, completer)
	fileService := service.NewFileService(fileRepo, courseRepo, cacheRepo, provider, embedder, vectorStore, splitter)
	chatService := service.NewChatService(courseRepo, promptComposer, completer)
	notifierService := service.NewNotifierService(attemptRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, userService)
	courseHandler := handler.NewCourseHandler(courseService)
	quizHandler := handler.NewQuizHandler(quizService, attemptService)
	fileHandler := handler.NewFileHandler(fileService)
	chatHandler := handler.NewChatHandler(chatService)
	sseHandler := handler.NewSSEHandler(notifierService, cfg.Notifier.PollInterval)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.LimitByIP(middleware.AuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Пользователи
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", authHandler.Me)
			users.PUT("/me", authHandler.UpdateMe)
		}

		// Поток уведомлений о готовых результатах
		notifications := api.Group("/notifications")
		notifications.Use(authMiddleware.RequireAuth())
		{
			notifications.GET("/stream", sseHandler.Stream)
		}

		// Курсы
		courses := api.Group("/courses")
		courses.Use(authMiddleware.RequireAuth())
		{
			courses.POST("", courseHandler.CreateCourse)
			courses.GET("", courseHandler.ListCourses)

			courseWithID := courses.Group("/:id")
			courseWithID.Use(middleware.ExtractUintParam("id", "courseID"))
			{
				courseWithID.GET("", courseHandler.GetCourse)
				courseWithID.DELETE("", courseHandler.DeleteCourse)

				// Участники
				courseWithID.GET("/members", courseHandler.GetMembers)
				courseWithID.POST("/members", courseHandler.InviteMember)
				memberWithID := courseWithID.Group("/members/:memberId")
				memberWithID.Use(middleware.ExtractUintParam("memberId", "memberID"))
				{
					memberWithID.DELETE("", courseHandler.RemoveMember)
				}

				// Материалы курса
				courseWithID.GET("/files", fileHandler.ListFiles)
				courseWithID.POST("/files",
					rateLimiter.Limit(middleware.UploadRateLimitConfig()),
					fileHandler.UploadFile,
				)

				// Викторины курса
				courseWithID.GET("/quizzes", quizHandler.ListQuizzes)
				courseWithID.POST("/quizzes", quizHandler.CreateQuiz)
				courseWithID.GET("/progress", quizHandler.GetCourseProgress)

				// Ассистент курса
				courseWithID.POST("/chat", chatHandler.Ask)
			}
		}

		// Материалы (операции по id файла)
		files := api.Group("/files/:id")
		files.Use(authMiddleware.RequireAuth(), middleware.ExtractUintParam("id", "fileID"))
		{
			files.GET("", fileHandler.DownloadFile)
			files.DELETE("", fileHandler.DeleteFile)
		}

		// Викторины (операции по id викторины)
		quizzes := api.Group("/quizzes/:id")
		quizzes.Use(authMiddleware.RequireAuth(), middleware.ExtractUintParam("id", "quizID"))
		{
			quizzes.GET("", quizHandler.GetQuiz)
			quizzes.DELETE("", quizHandler.DeleteQuiz)
			quizzes.POST("/do", quizHandler.SubmitQuiz)
			quizzes.GET("/result", quizHandler.GetQuizResult)
			quizzes.GET("/export", quizHandler.ExportQuizResults)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks.
	// WriteTimeout не задаем: SSE-поток живет дольше любого разумного лимита.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM завершаем горутины и сервер
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
