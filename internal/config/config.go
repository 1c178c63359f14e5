package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	LLM      LLMConfig
	RAG      RAGConfig
	Storage  StorageConfig
	Email    EmailConfig
	Notifier NotifierConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит настройки подключения к Redis
// Поддерживает режимы: single, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
}

// LLMConfig содержит настройки доступа к OpenAI-совместимому API
// (используется и для чат-комплишенов, и для эмбеддингов)
type LLMConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// RAGConfig содержит настройки пайплайна документов
type RAGConfig struct {
	// IndexPath — корневая директория снапшотов векторного индекса
	IndexPath string `mapstructure:"index_path"`
	// ChunkSize — целевой размер фрагмента в символах
	ChunkSize int `mapstructure:"chunk_size"`
	// ChunkOverlap — перекрытие соседних фрагментов в символах
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	// TopK — количество фрагментов в контексте промпта
	TopK int `mapstructure:"top_k"`
}

// StorageConfig содержит настройки хранилища загруженных файлов
type StorageConfig struct {
	// Provider: "local" или "minio"
	Provider  string `mapstructure:"provider"`
	LocalPath string `mapstructure:"local_path"`

	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
}

// EmailConfig содержит настройки отправки почты (Resend)
type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
}

// NotifierConfig содержит настройки поллера уведомлений
type NotifierConfig struct {
	// PollInterval — период опроса необработанных результатов
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Addresses возвращает адреса Redis: список Addrs, либо одиночный Addr
// для режима single, либо локальный адрес по умолчанию.
func (r *RedisConfig) Addresses() []string {
	if len(r.Addrs) > 0 {
		return r.Addrs
	}
	if r.Addr != "" {
		return []string{r.Addr}
	}
	return []string{"localhost:6379"}
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("llm.base_url", "https://api.openai.com/v1")
	vip.SetDefault("llm.chat_model", "gpt-4o-mini")
	vip.SetDefault("llm.embedding_model", "text-embedding-3-small")
	vip.SetDefault("llm.timeout", 60*time.Second)
	vip.SetDefault("llm.max_retries", 3)
	vip.SetDefault("rag.index_path", "data/index")
	vip.SetDefault("rag.chunk_size", 1000)
	vip.SetDefault("rag.chunk_overlap", 200)
	vip.SetDefault("rag.top_k", 5)
	vip.SetDefault("storage.provider", "local")
	vip.SetDefault("storage.local_path", "data/uploads")
	vip.SetDefault("notifier.poll_interval", time.Second)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	vip.BindEnv("llm.base_url", "LLM_BASE_URL")
	vip.BindEnv("llm.api_key", "LLM_API_KEY")
	vip.BindEnv("llm.chat_model", "LLM_CHAT_MODEL")
	vip.BindEnv("llm.embedding_model", "LLM_EMBEDDING_MODEL")

	vip.BindEnv("rag.index_path", "RAG_INDEX_PATH")
	vip.BindEnv("rag.chunk_size", "RAG_CHUNK_SIZE")
	vip.BindEnv("rag.chunk_overlap", "RAG_CHUNK_OVERLAP")
	vip.BindEnv("rag.top_k", "RAG_TOP_K")

	vip.BindEnv("storage.provider", "STORAGE_PROVIDER")
	vip.BindEnv("storage.local_path", "STORAGE_LOCAL_PATH")
	vip.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	vip.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	vip.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	vip.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	vip.BindEnv("storage.minio_use_ssl", "MINIO_USE_SSL")

	vip.BindEnv("email.enabled", "EMAIL_ENABLED")
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from_address", "EMAIL_FROM_ADDRESS")

	vip.BindEnv("notifier.poll_interval", "NOTIFIER_POLL_INTERVAL")

	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Путь к файлу конфигурации (не страшно, если файла нет — есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Mode: %s, Addrs: %v", cfg.Redis.Mode, cfg.Redis.Addrs)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("LLM Base URL: %s, Chat Model: %s", cfg.LLM.BaseURL, cfg.LLM.ChatModel)
		log.Printf("RAG Index Path: %s, ChunkSize: %d, Overlap: %d, TopK: %d",
			cfg.RAG.IndexPath, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, cfg.RAG.TopK)
		log.Printf("Storage Provider: %s", cfg.Storage.Provider)
		log.Printf("Email Enabled: %t", cfg.Email.Enabled)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("rag.chunk_overlap (%d) must be less than rag.chunk_size (%d)", cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	if cfg.Storage.Provider == "minio" && cfg.Storage.MinioEndpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required when storage.provider=minio (check MINIO_ENDPOINT env var)")
	}

	return &cfg, nil
}
