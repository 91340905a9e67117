// Package wire provides dependency injection for the SpecFirst
// application. It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"

	cliadapter "github.com/example/specfirst/internal/adapters/cli"
	"github.com/example/specfirst/internal/adapters/gitledger"
	"github.com/example/specfirst/internal/adapters/sqlite"
	"github.com/example/specfirst/internal/app"
	"github.com/example/specfirst/internal/config"
	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/db"
	"github.com/example/specfirst/internal/ports/primary"
)

// Store-backed services and ledger-backed services initialize
// separately: feature and session commands work in any directory, while
// workflow commands additionally need a git repository for the ledger.
var (
	sessionService   primary.SessionService
	featureService   primary.FeatureService
	criterionService primary.CriterionService
	logService       primary.LogService
	storeOnce        sync.Once

	workflowService primary.WorkflowService
	resumeService   primary.ResumeService
	ledgerOnce      sync.Once
)

// ProjectRoot returns the directory the CLI operates on. Commands run
// from the project root, like git.
func ProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	return cwd
}

// LoadedConfig returns the project config. Before `specfirst init` has
// run there is no config file; defaults cover the standard layout so
// read-only commands still work.
func LoadedConfig() *config.Config {
	cfg, err := config.LoadConfig(ProjectRoot())
	if err != nil {
		return config.Default()
	}
	return cfg
}

// DatabasePath resolves the database location. SPECFIRST_DB_PATH
// overrides the config so the dev shim can redirect state away from the
// real project database.
func DatabasePath() string {
	if override := os.Getenv("SPECFIRST_DB_PATH"); override != "" {
		return override
	}
	return LoadedConfig().DatabasePath(ProjectRoot())
}

// Layout returns the artifact layout for the project.
func Layout() artifact.Layout {
	return artifact.NewLayout(ProjectRoot(), LoadedConfig().SpecsDir)
}

// WorkflowService returns the singleton WorkflowService instance.
func WorkflowService() primary.WorkflowService {
	ledgerOnce.Do(initLedgerServices)
	return workflowService
}

// ResumeService returns the singleton ResumeService instance.
func ResumeService() primary.ResumeService {
	ledgerOnce.Do(initLedgerServices)
	return resumeService
}

// SessionService returns the singleton SessionService instance.
func SessionService() primary.SessionService {
	storeOnce.Do(initStoreServices)
	return sessionService
}

// FeatureService returns the singleton FeatureService instance.
func FeatureService() primary.FeatureService {
	storeOnce.Do(initStoreServices)
	return featureService
}

// CriterionService returns the singleton CriterionService instance.
func CriterionService() primary.CriterionService {
	storeOnce.Do(initStoreServices)
	return criterionService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	storeOnce.Do(initStoreServices)
	return logService
}

// initStoreServices initializes the database-backed services and their
// dependencies. Called once via sync.Once.
func initStoreServices() {
	database, err := db.Open(DatabasePath())
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) with the injected handle
	featureRepo := sqlite.NewFeatureRepository(database)
	sessionRepo := sqlite.NewSessionRepository(database)
	criterionRepo := sqlite.NewCriterionRepository(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(auditRepo)

	layout := Layout()

	// Services (primary ports implementation)
	sessionService = app.NewSessionService(sessionRepo, featureRepo, logWriter)
	featureService = app.NewFeatureService(featureRepo, layout, logWriter)
	criterionService = app.NewCriterionService(criterionRepo, featureRepo, layout, logWriter)
	logService = app.NewLogService(auditRepo)
}

// initLedgerServices initializes the git-ledger-backed services.
// Called once via sync.Once.
func initLedgerServices() {
	ledger, err := gitledger.New(ProjectRoot())
	if err != nil {
		log.Fatalf("phase ledger unavailable: %v\nWorkflow commands must run inside a git repository", err)
	}

	workflowService = app.NewWorkflowService(Layout(), ledger)
	resumeService = app.NewResumeService(ledger, workflowService)
}

// WorkflowAdapter returns a new WorkflowAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func WorkflowAdapter() *cliadapter.WorkflowAdapter {
	return WorkflowAdapterWithOutput(os.Stdout)
}

// WorkflowAdapterWithOutput returns a new WorkflowAdapter writing to the
// given output. This variant allows testing or alternate destinations.
func WorkflowAdapterWithOutput(out io.Writer) *cliadapter.WorkflowAdapter {
	ledgerOnce.Do(initLedgerServices)
	return cliadapter.NewWorkflowAdapter(workflowService, resumeService, out)
}

// FeatureAdapter returns a new FeatureAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func FeatureAdapter() *cliadapter.FeatureAdapter {
	return FeatureAdapterWithOutput(os.Stdout)
}

// FeatureAdapterWithOutput returns a new FeatureAdapter writing to the
// given output. This variant allows testing or alternate destinations.
func FeatureAdapterWithOutput(out io.Writer) *cliadapter.FeatureAdapter {
	storeOnce.Do(initStoreServices)
	return cliadapter.NewFeatureAdapter(featureService, out)
}
