package config

// HTTPConfig configures the shared HTTP client used by adapters and the
// coupon checker.
type HTTPConfig struct {
	UserAgent   string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	TimeoutSecs int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1,max=300"`
}

// NewDefaultHTTPConfig creates an HTTPConfig with production defaults.
func NewDefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		UserAgent:   DefaultHTTPUserAgent,
		TimeoutSecs: DefaultHTTPTimeoutSecs,
	}
}

// CouponCheckConfig configures the pricing API validation client.
type CouponCheckConfig struct {
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	TimeoutSecs int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1,max=120"`
}

// NewDefaultCouponCheckConfig creates a CouponCheckConfig with production defaults.
func NewDefaultCouponCheckConfig() CouponCheckConfig {
	return CouponCheckConfig{
		BaseURL:     DefaultCouponCheckBaseURL,
		TimeoutSecs: DefaultCouponCheckTimeoutSecs,
	}
}

// HistoryConfig configures the bounded record of previously emitted URLs.
type HistoryConfig struct {
	Capacity   int    `json:"capacity,omitempty" yaml:"capacity,omitempty" validate:"omitempty,min=1"`
	Persist    bool   `json:"persist,omitempty" yaml:"persist,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// NewDefaultHistoryConfig creates a HistoryConfig with in-memory defaults.
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Capacity:   DefaultHistoryCapacity,
		Persist:    false,
		SQLitePath: DefaultHistorySQLitePath,
	}
}

// SchedulerConfig configures the periodic run driver.
type SchedulerConfig struct {
	CycleMinutes     int    `json:"cycle_minutes,omitempty" yaml:"cycle_minutes,omitempty" validate:"omitempty,min=1"`
	InitialDelaySecs int    `json:"initial_delay_secs,omitempty" yaml:"initial_delay_secs,omitempty" validate:"omitempty,min=0"`
	SQLiteDBPath     string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty"`
}

// NewDefaultSchedulerConfig creates a SchedulerConfig with production defaults.
func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CycleMinutes:     DefaultSchedulerCycleMinutes,
		InitialDelaySecs: DefaultSchedulerInitialDelaySecs,
		SQLiteDBPath:     DefaultSchedulerSQLiteDBPath,
	}
}

// NotificationConfig configures the Discord webhook delivery collaborator.
type NotificationConfig struct {
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" validate:"omitempty,url"`
	MessageDelayMs    int    `json:"message_delay_ms,omitempty" yaml:"message_delay_ms,omitempty" validate:"omitempty,min=0"`
	NotifyOnEmptyRun  bool   `json:"notify_on_empty_run,omitempty" yaml:"notify_on_empty_run,omitempty"`
}

// NewDefaultNotificationConfig creates a NotificationConfig with delivery disabled
// (no webhook URL configured).
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		MessageDelayMs:   DefaultNotificationMessageDelayMs,
		NotifyOnEmptyRun: false,
	}
}

// LogConfig configures zerolog output.
type LogConfig struct {
	LogLevel     string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	LogFormat    string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogFile      string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	MaxLogSizeMB int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"omitempty,min=1"`
	MaxLogBackup int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultLogConfig creates a LogConfig with console output at info level.
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		MaxLogSizeMB: DefaultMaxLogSizeMB,
		MaxLogBackup: DefaultMaxLogBackups,
	}
}
