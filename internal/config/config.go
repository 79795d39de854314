package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-KeepInTouch/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Keep In Touch"
	AppID             = "com.github.tartampluch.go-keepintouch"
	KeyringService    = "com.github.tartampluch.go-keepintouch"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache and data directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagImport       = "import"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescImport   = "Import relationships from a vCard (.vcf) file before serving"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables (Runtime Settings)
// -----------------------------------------------------------------------------

const (
	EnvBackendMode = "KEEPINTOUCH_MODE"
	EnvDBPath      = "KEEPINTOUCH_DB"
	EnvRemoteURL   = "KEEPINTOUCH_URL"
	EnvRemoteUser  = "KEEPINTOUCH_USER"
	EnvRemotePass  = "KEEPINTOUCH_PASS"
	EnvServerPort  = "KEEPINTOUCH_PORT"
	EnvLanguage    = "KEEPINTOUCH_LANG"
	EnvReminder    = "KEEPINTOUCH_REMINDER"
	EnvGroupUnit   = "KEEPINTOUCH_GROUP_UNIT"
)

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	BackendModeLocal = "local"
	BackendModeWeb   = "web"

	DefaultPort      = "18090"
	DefaultLanguage  = "en"
	DefaultGroupUnit = "week"
	DefaultDBName    = "keepintouch.db"

	// SoonThresholdDays is the countdown value at or below which a relationship
	// is classified as "Due Soon" rather than "No Attention Needed".
	SoonThresholdDays = 3

	UIDSalt = "go-keepintouch-v1-" // Salt for deterministic UID generation
)

// -----------------------------------------------------------------------------
// Urgency Status Display Colors
// -----------------------------------------------------------------------------

const (
	ColorToday        = "#e57373"
	ColorOverdue      = "#ff8a65"
	ColorSoon         = "#ffd54f"
	ColorGood         = "#81c784"
	ColorNotAvailable = "#b0bec5"
)

// -----------------------------------------------------------------------------
// Attention Text Formats (computed alongside derived properties)
// -----------------------------------------------------------------------------

const (
	AttentionTextToday        = "Due today"
	AttentionTextOverdueOne   = "1 day overdue"
	AttentionTextOverdueMany  = "%d days overdue"
	AttentionTextDueInOne     = "Due in 1 day"
	AttentionTextDueInMany    = "Due in %d days"
	AttentionTextNotAvailable = "N/A"
)

// -----------------------------------------------------------------------------
// Deletion Confirmation
// -----------------------------------------------------------------------------

const (
	FormatConfirmDelete      = "Are you sure you want to delete %s? This action cannot be undone."
	FormatInteractionSubject = "an interaction with %s"
)

// -----------------------------------------------------------------------------
// Translation Keys (i18n)
// -----------------------------------------------------------------------------

const (
	TKeyGroupToday     = "group_today"
	TKeyGroupYesterday = "group_yesterday"
	TKeyGroupThisWeek  = "group_this_week"
	TKeyGroupThisMonth = "group_this_month"
	TKeyGroupThisYear  = "group_this_year"
	TKeyGroupLastWeek  = "group_last_week"
	TKeyGroupLastMonth = "group_last_month"
	TKeyGroupLastYear  = "group_last_year"
	TKeyGroupDaysAgo   = "group_days_ago"   // Template: {{.Count}}
	TKeyGroupWeeksAgo  = "group_weeks_ago"  // Template: {{.Count}}
	TKeyGroupMonthsAgo = "group_months_ago" // Template: {{.Count}}
	TKeyGroupYearsAgo  = "group_years_ago"  // Template: {{.Count}}
	TKeyGroupWeekOf    = "group_week_of"    // Template: {{.Date}}
	TKeyFeedSummary    = "feed_summary"     // Template: {{.Name}}
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Keep In Touch//Engine//EN"
	ICalCalName   = "Keep In Touch"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gokeepintouch"

	// iCal Properties
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardFN = "FN"
	VCardN  = "N"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no
	// relationship has a known due date. Using a constant avoids hardcoded
	// magic strings in the feed logic and keeps the feed valid when empty.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts
	DateFormatFullDash = "2006-01-02"
	DateFormatRFC3339  = time.RFC3339

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// File Extensions
	ExtVCF = ".vcf"

	FallbackName = "Unknown"

	// FallbackSummary is used when no localized formatter is injected.
	FallbackSummary = "Time to catch up with %s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"
)

// HTTP routes served by the snapshot server.
const (
	RouteCalendar      = "/calendar.ics"
	RouteRelationships = "/relationships"
	RouteInteractions  = "/interactions"
)

// Remote API paths (hosted backend).
const (
	APIPathRelationships = "/relationships"
	APIPathInteractions  = "/interactions"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrDBPathEmpty      = "configuration error: database path is empty"
	ErrRemoteURLEmpty   = "configuration error: remote URL is empty"
	ErrModeUnsupport    = "configuration error: unsupported backend mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrSchemaApply      = "failed to apply database schema"
	ErrBackendAdd       = "backend add failed"
	ErrBackendUpdate    = "backend update failed"
	ErrBackendDelete    = "backend delete failed"
	ErrBackendFetch     = "backend fetch failed"
	ErrRequestBuild     = "failed to build request"
	ErrRequestSend      = "network error during request"
	ErrResponseDecode   = "failed to decode response body"
	ErrUnexpectedStatus = "server returned unexpected status"
	ErrRelationshipMiss = "relationship not found"
	ErrInteractionMiss  = "interaction not found"
	ErrImportOpen       = "failed to open import file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgSnapshotUpdate = "Snapshot cache updated"
	MsgLoadStarted    = "Loading collections from backend"
	MsgLoadFinished   = "Collections loaded"
	MsgFeedGenerated  = "Attention feed generated"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgImportFinished = "vCard import finished"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgDeleteCancel   = "Deletion cancelled by user"
	MsgMutationOK     = "Mutation reconciled"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyUser      = "user"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyID        = "id"
	LogKeyOp        = "op"
	LogKeyUnit      = "unit"
	LogKeyQuery     = "query"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyPath      = "path"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total"
	LogKeyImported  = "imported"
	LogKeySkipped   = "skipped"
	LogKeyDueToday  = "due_today"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine   = "engine"
	CompStore    = "store"
	CompRemote   = "remote"
	CompServer   = "server"
	CompFeed     = "feed"
	CompImporter = "importer"
	CompMain     = "main"
	CompI18n     = "i18n"
)
