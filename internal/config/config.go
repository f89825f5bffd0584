package config // package config loads worker configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strings"
    "time"
)

// Task store backends selectable through TASK_STORE.
const (
    TaskStoreMySQL  = "mysql"
    TaskStoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Nested structs group the settings of one
// collaborator (Temporal, Google Sheets).
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port of the task API
    Temporal  TemporalConfig
    Sheets    SheetsConfig
    TaskStore string // "mysql" or "memory"
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to sign and verify task API tokens
    RabbitURL string // broker URL; empty disables event publishing
}

// TemporalConfig describes how the worker reaches the workflow engine.
type TemporalConfig struct {
    Address       string        // host:port of the frontend service
    Namespace     string        // namespace the worker polls in
    TaskQueue     string        // named task queue the worker is bound to
    ShutdownGrace time.Duration // how long Stop waits for in-flight work
}

// SheetsConfig names the spreadsheet and the A1 ranges each gateway
// operation reads or writes, plus the credential flow settings.
type SheetsConfig struct {
    SpreadsheetID   string
    ApplicationName string
    TableRange      string // block shown on the reservation form
    AppendRange     string // where reservation rows are appended
    SeatsCell       string // single cell holding the seats-available count
    SeatNoRange     string // column whose occupied rows give the seat number
    Auth            string // "installed" or "default"
    CredentialsFile string // OAuth client secret JSON for the installed flow
    TokensDir       string // directory where the OAuth token is persisted
    OAuthPort       int    // loopback port of the authorization receiver
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The database
// variables are only required when the MySQL task store is selected.
func Load() Config {
    cfg := Config{
        Env:  envStr("APP_ENV", "dev"),
        Port: envStr("APP_PORT", "8080"),
        Temporal: TemporalConfig{
            Address:       envStr("TEMPORAL_ADDRESS", "localhost:7233"),
            Namespace:     envStr("TEMPORAL_NAMESPACE", "default"),
            TaskQueue:     must("TEMPORAL_TASK_QUEUE"),
            ShutdownGrace: envDur("WORKER_SHUTDOWN_GRACE", time.Minute),
        },
        Sheets: SheetsConfig{
            SpreadsheetID:   must("SHEETS_SPREADSHEET_ID"),
            ApplicationName: envStr("SHEETS_APPLICATION_NAME", "bus-seat-reservation"),
            TableRange:      envStr("SHEETS_TABLE_RANGE", "BUS!A1:D2"),
            AppendRange:     envStr("SHEETS_APPEND_RANGE", "BUS!A5:C5"),
            SeatsCell:       envStr("SHEETS_SEATS_CELL", "BUS!D2"),
            SeatNoRange:     envStr("SHEETS_SEAT_NO_RANGE", "BUS!B5:B116"),
            Auth:            strings.ToLower(envStr("SHEETS_AUTH", "installed")),
            CredentialsFile: envStr("SHEETS_CREDENTIALS_FILE", "credentials.json"),
            TokensDir:       envStr("SHEETS_TOKENS_DIR", "tokens"),
            OAuthPort:       envInt("SHEETS_OAUTH_PORT", 8888),
        },
        TaskStore: strings.ToLower(envStr("TASK_STORE", TaskStoreMySQL)),
        JWTSecret: must("JWT_SECRET"),
        RabbitURL: os.Getenv("RABBITMQ_URL"),
    }
    switch cfg.TaskStore {
    case TaskStoreMySQL:
        cfg.DBUser = must("DB_USER")
        cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = must("DB_PORT")
        cfg.DBName = must("DB_NAME")
    case TaskStoreMemory:
    default:
        log.Fatalf("invalid TASK_STORE: %q", cfg.TaskStore)
    }
    if cfg.RabbitURL == "" {
        cfg.RabbitURL = os.Getenv("AMQP_URL")
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
