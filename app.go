package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"promptforge/internal/adapters/cache/layered"
	"promptforge/internal/adapters/cache/memory"
	dbsqlite "promptforge/internal/adapters/db/sqlite"
	expcsv "promptforge/internal/adapters/exporter/csv"
	expjson "promptforge/internal/adapters/exporter/jsonfile"
	exportreg "promptforge/internal/adapters/exporter/registry"
	llmfactory "promptforge/internal/adapters/llm/factory"
	llmregistry "promptforge/internal/adapters/llm/registry"
	csvparser "promptforge/internal/adapters/parser/csv"
	jsonparser "promptforge/internal/adapters/parser/jsonfile"
	parreg "promptforge/internal/adapters/parser/registry"
	promptRenderer "promptforge/internal/adapters/prompt"
	apiapp "promptforge/internal/api/app"
	"promptforge/internal/config"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
	exporterusecase "promptforge/internal/usecase/exporter"
	"promptforge/internal/usecase/importer"
	improverusecase "promptforge/internal/usecase/improver"
	translatorusecase "promptforge/internal/usecase/translator"
)

// App wires the repositories, services, and API bindings together.
type App struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB

	Prompts   *apiapp.PromptAPI
	Endpoints *apiapp.EndpointAPI
	Compare   *apiapp.CompareAPI
	Translate *apiapp.TranslateAPI
	Improve   *apiapp.ImproveAPI
	Settings  *apiapp.SettingsAPI
	Library   *apiapp.LibraryAPI

	Runner *improverusecase.Runner

	endpoints ports.EndpointRepository
}

// NewApp opens the database and builds the full service graph.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := dbsqlite.Init(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	promptRepo := dbsqlite.NewPromptRepo(db)
	revisionRepo := dbsqlite.NewRevisionRepo(db)
	endpointRepo := dbsqlite.NewEndpointRepo(db)
	templateRepo := dbsqlite.NewTemplateRepo(db)
	cacheRepo := dbsqlite.NewCacheRepo(db)
	settingsRepo := dbsqlite.NewSettingsRepo(db)
	callLogRepo := dbsqlite.NewCallLogRepo(db)

	// Memory tier in front of the sqlite tier; hits never leave process.
	transformCache := layered.New(memory.New(cfg.Cache.MaxEntries), cacheRepo)

	pr := promptRenderer.New(templateRepo)

	transSvc := translatorusecase.New(translatorusecase.Deps{
		Endpoints: endpointRepo,
		Cache:     transformCache,
		Prompt:    pr,
		Calls:     callLogRepo,
		BuildProvider: func(e *domain.Endpoint) (ports.Provider, error) {
			prov, ok := llmfactory.FromEndpointWithTimeout(e, cfg.LLM.CallTimeout)
			if !ok {
				return nil, fmt.Errorf("unsupported endpoint: %s", e.Type)
			}
			return prov, nil
		},
		Logger: logger,
	})

	runner := improverusecase.NewRunner(improverusecase.Deps{
		Endpoints: endpointRepo,
		Cache:     transformCache,
		Prompt:    pr,
		Calls:     callLogRepo,
		BuildProvider: func(e *domain.Endpoint, timeout time.Duration) (ports.Provider, error) {
			prov, ok := llmfactory.FromEndpointWithTimeout(e, timeout)
			if !ok {
				return nil, fmt.Errorf("unsupported endpoint: %s", e.Type)
			}
			return prov, nil
		},
		Logger:       logger,
		StageTimeout: cfg.LLM.StageTimeout,
	})
	runner.SetEmitter(logEmitter{log: logger})

	parserRegistry := parreg.New()
	parserRegistry.Register(csvparser.New())
	parserRegistry.Register(jsonparser.New())
	importSvc := importer.New(promptRepo, revisionRepo, parserRegistry)

	expReg := exportreg.New()
	expReg.Register(expcsv.New())
	expReg.Register(expjson.New())
	expSvc := exporterusecase.New(promptRepo, revisionRepo, expReg)

	return &App{
		cfg:       cfg,
		log:       logger,
		db:        db,
		Prompts:   apiapp.NewPromptAPI(promptRepo, revisionRepo),
		Endpoints: apiapp.NewEndpointAPI(endpointRepo),
		Compare:   apiapp.NewCompareAPI(revisionRepo),
		Translate: apiapp.NewTranslateAPI(transSvc, settingsRepo),
		Improve:   apiapp.NewImproveAPI(runner, revisionRepo, settingsRepo),
		Settings:  apiapp.NewSettingsAPI(settingsRepo, callLogRepo),
		Library:   apiapp.NewLibraryAPI(expSvc, importSvc, expReg, parserRegistry),
		Runner:    runner,
		endpoints: endpointRepo,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// HealthCheck tests every stored endpoint's connectivity in one pass.
func (a *App) HealthCheck(ctx context.Context) (map[string]error, error) {
	eps, err := a.endpoints.List(ctx)
	if err != nil {
		return nil, err
	}
	reg := llmregistry.New()
	for _, e := range eps {
		if prov, ok := llmfactory.FromEndpointWithTimeout(e, a.cfg.LLM.CallTimeout); ok {
			reg.Register(e.Name, prov)
		}
	}
	return reg.HealthCheck(ctx), nil
}

// logEmitter forwards run events to the structured log. A UI layer would
// replace this with its own event bridge.
type logEmitter struct{ log *zap.Logger }

func (e logEmitter) Emit(name string, payload any) {
	e.log.Info("event", zap.String("name", name), zap.Any("payload", payload))
}
