package config

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "github.com/pkg/errors"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            return n
        }
    }
    return def
}

func getenvUint64(key string, def uint64) uint64 {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.ParseUint(v, 10, 64); err == nil {
            return n
        }
    }
    return def
}

func getenvDur(key string, def time.Duration) time.Duration {
    if v := os.Getenv(key); v != "" {
        if d, err := time.ParseDuration(v); err == nil {
            return d
        }
    }
    return def
}

// LoadDotenv loads .env style files into the environment. Variables that are
// already set win; missing files are skipped.
func LoadDotenv(files ...string) error {
    if len(files) == 0 { files = []string{".env"} }
    for _, f := range files {
        if _, err := os.Stat(f); os.IsNotExist(err) { continue }
        if err := godotenv.Load(f); err != nil {
            return errors.Wrapf(err, "load %s", f)
        }
    }
    return nil
}

type Common struct {
    RPCURL string
    // ChainID of 0 means ask the node.
    ChainID   uint64
    Factory   string
    PgDSN     string
    // RedisAddr empty selects the in-process LRU cache.
    RedisAddr  string
    RedisDB    int
    CacheTTL   time.Duration
    CacheSize  int
    PageSize   int
    LogLevel   string
    TokensFile string
}

func LoadCommon() Common {
    return Common{
        RPCURL:     getenv("RPC_URL", "http://127.0.0.1:8545"),
        ChainID:    getenvUint64("CHAIN_ID", 0),
        Factory:    getenv("FACTORY_ADDRESS", ""),
        PgDSN:      os.Getenv("PG_DSN"),
        RedisAddr:  os.Getenv("REDIS_ADDR"),
        RedisDB:    getenvInt("REDIS_DB", 0),
        CacheTTL:   getenvDur("CACHE_TTL", 5*time.Minute),
        CacheSize:  getenvInt("CACHE_SIZE", 4096),
        PageSize:   getenvInt("PAGE_SIZE", 12),
        LogLevel:   getenv("LOG_LEVEL", "info"),
        TokensFile: os.Getenv("TOKENS_FILE"),
    }
}

// Logger builds the process logger. debug selects the development config.
func (c Common) Logger() (*zap.Logger, error) {
    if strings.EqualFold(c.LogLevel, "debug") {
        return zap.NewDevelopment()
    }
    cfg := zap.NewProductionConfig()
    lvl, err := zapcore.ParseLevel(c.LogLevel)
    if err != nil { return nil, errors.Wrapf(err, "LOG_LEVEL %q", c.LogLevel) }
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    return cfg.Build()
}

type API struct {
    Common
    Addr string
}

func LoadAPI() API {
    return API{Common: LoadCommon(), Addr: getenv("API_ADDR", ":8080")}
}

type Warmer struct {
    Common
    Pages            int
    Interval         time.Duration
    ProgressInterval time.Duration
}

func LoadWarmer() Warmer {
    return Warmer{
        Common:           LoadCommon(),
        Pages:            getenvInt("WARM_PAGES", 3),
        Interval:         getenvDur("WARM_INTERVAL", time.Minute),
        ProgressInterval: getenvDur("PROGRESS_LOG_INTERVAL", 15*time.Minute),
    }
}

type Worker struct {
    Common
    Batch         int
    IdleDelay     time.Duration
    RetryInterval time.Duration
}

func LoadWorker() Worker {
    return Worker{
        Common:        LoadCommon(),
        Batch:         getenvInt("BATCH_SIZE", 100),
        IdleDelay:     getenvDur("IDLE_DELAY", 5*time.Second),
        RetryInterval: getenvDur("METADATA_RETRY_INTERVAL", time.Hour),
    }
}

type CLI struct {
    Common
    PrivateKey string
}

func LoadCLI() CLI {
    return CLI{Common: LoadCommon(), PrivateKey: os.Getenv("PRIVATE_KEY")}
}
