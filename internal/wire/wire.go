// Package wire provides dependency injection for the aide application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/example/aide/internal/adapters/calendar"
	"github.com/example/aide/internal/adapters/filesystem"
	"github.com/example/aide/internal/adapters/sqlite"
	"github.com/example/aide/internal/adapters/workspace"
	"github.com/example/aide/internal/app"
	"github.com/example/aide/internal/config"
	"github.com/example/aide/internal/core/intent"
	"github.com/example/aide/internal/core/triage"
	"github.com/example/aide/internal/db"
	"github.com/example/aide/internal/logging"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
	"github.com/example/aide/internal/retry"
)

var (
	routerService  primary.RouterService
	captureService primary.CaptureService
	triageService  primary.TriageService
	queueService   primary.QueueService
	syncService    primary.SyncService
	prefsService   primary.PrefsService
	once           sync.Once
)

// RouterService returns the singleton RouterService instance.
func RouterService() primary.RouterService {
	once.Do(initServices)
	return routerService
}

// CaptureService returns the singleton CaptureService instance.
func CaptureService() primary.CaptureService {
	once.Do(initServices)
	return captureService
}

// TriageService returns the singleton TriageService instance.
func TriageService() primary.TriageService {
	once.Do(initServices)
	return triageService
}

// QueueService returns the singleton QueueService instance.
func QueueService() primary.QueueService {
	once.Do(initServices)
	return queueService
}

// SyncService returns the singleton SyncService instance.
func SyncService() primary.SyncService {
	once.Do(initServices)
	return syncService
}

// PrefsService returns the singleton PrefsService instance.
func PrefsService() primary.PrefsService {
	once.Do(initServices)
	return prefsService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	home, err := config.Home()
	if err != nil {
		log.Fatalf("failed to resolve aide home: %v", err)
	}

	logger, err := logging.New(home)
	if err != nil {
		logger = zap.NewNop()
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	rules, err := config.LoadRules()
	if err != nil {
		log.Fatalf("failed to load rules: %v", err)
	}

	// Secondary adapters.
	prefRepo := sqlite.NewPreferenceRepository(database)
	queueRepo := sqlite.NewQueueRepository(database)
	auditRepo := sqlite.NewAuditRepository(database)
	workspaceClient := workspace.New(cfg, retry.DefaultPolicy(), logger)
	fsStore := filesystem.NewStore(afero.NewOsFs(), home)

	var calendarReader secondary.CalendarReader
	if client := calendar.New(cfg); client != nil {
		calendarReader = client
	}

	// Services (primary ports implementation).
	gate := app.NewGateService(prefRepo, workspaceClient, calendarReader, queueRepo, auditRepo, logger)
	prefsApp := app.NewPrefsApp(prefRepo, gate)
	captureApp := app.NewCaptureApp(gate, logger)
	triageApp := app.NewTriageApp(workspaceClient, fsStore, fsStore, prefRepo, queueRepo, auditRepo,
		themeRules(rules), logger)

	captureService = captureApp
	triageService = triageApp
	queueService = app.NewQueueApp(queueRepo, workspaceClient, logger)
	syncService = app.NewSyncApp(workspaceClient, fsStore, logger)
	prefsService = prefsApp
	routerService = app.NewRouterApp(gate, captureApp, triageApp, prefsApp,
		workspaceClient, fsStore, intentRules(rules), cfg.DeployCommand, logger)
}

// intentRules layers operator route overrides over the defaults.
func intentRules(rules *config.Rules) intent.Rules {
	merged := intent.DefaultRules()
	if rules.FuzzyThreshold > 0 {
		merged.Threshold = rules.FuzzyThreshold
	}
	for route, words := range rules.Routes {
		merged = merged.Extend(route, words)
	}
	return merged
}

// themeRules layers operator theme overrides over the defaults.
func themeRules(rules *config.Rules) triage.Rules {
	keywords := make([]triage.KeywordTheme, 0, len(rules.ThemeKeywords))
	for _, kt := range rules.ThemeKeywords {
		keywords = append(keywords, triage.KeywordTheme{Keyword: kt.Keyword, Theme: kt.Theme})
	}
	return triage.DefaultRules().Merge(rules.ThemeByDomain, keywords)
}
