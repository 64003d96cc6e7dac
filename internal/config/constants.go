package config

const (
	// HTTP Defaults
	DefaultHTTPUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultHTTPTimeoutSecs = 30

	// Real.discount Defaults
	DefaultRealDiscountBaseURL  = "https://cdn.real.discount"
	DefaultRealDiscountReferer  = "https://www.real.discount/"
	DefaultRealDiscountPages    = 1
	DefaultRealDiscountPageSize = 100

	// Discudemy Defaults
	DefaultDiscudemyBaseURL       = "https://www.discudemy.com"
	DefaultDiscudemyListingPages  = 3
	DefaultDiscudemyDetailDelayMs = 300
	DefaultDiscudemyPageDelayMs   = 1000

	// CourseVania Defaults
	DefaultCourseVaniaBaseURL       = "https://coursevania.com"
	DefaultCourseVaniaMaxCourses    = 20
	DefaultCourseVaniaDetailDelayMs = 300

	// UdemyFreebies Defaults
	DefaultUdemyFreebiesBaseURL  = "https://www.udemyfreebies.com"
	DefaultUdemyFreebiesMaxLinks = 30

	// Coupon Check Defaults
	DefaultCouponCheckBaseURL     = "https://www.udemy.com"
	DefaultCouponCheckTimeoutSecs = 15

	// History Defaults
	DefaultHistoryCapacity   = 2000
	DefaultHistorySQLitePath = "database/history/emitted_urls.db"

	// Scheduler Defaults
	DefaultSchedulerCycleMinutes     = 120
	DefaultSchedulerInitialDelaySecs = 10
	DefaultSchedulerSQLiteDBPath     = "database/scheduler/run_history.db"

	// Notification Defaults
	DefaultNotificationMessageDelayMs = 3000

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)
