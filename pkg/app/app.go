// Package app constructs the object graph shared by the API service and
// the queue worker. Everything is wired here once, from the loaded config;
// no package carries globals.
package app

import (
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	openai "github.com/sashabaranov/go-openai"
	"xorm.io/xorm"

	"mail_trans_engine/config"
	"mail_trans_engine/pkg/batch"
	"mail_trans_engine/pkg/cache"
	"mail_trans_engine/pkg/complexity"
	"mail_trans_engine/pkg/db/mysql"
	"mail_trans_engine/pkg/engines"
	"mail_trans_engine/pkg/executor"
	"mail_trans_engine/pkg/glossary"
	"mail_trans_engine/pkg/httpclient"
	"mail_trans_engine/pkg/logger"
	"mail_trans_engine/pkg/notify"
	"mail_trans_engine/pkg/rds"
	"mail_trans_engine/pkg/tasks"
	"mail_trans_engine/pkg/translator"
	"mail_trans_engine/pkg/units"
	"mail_trans_engine/pkg/usage"
)

type App struct {
	Cfg        *config.AppConfig
	Log        *slog.Logger
	DB         *xorm.Engine
	Redis      *redis.Client
	Cache      *cache.Store
	Units      *units.Repo
	Usage      *usage.Ledger
	Translator *translator.Service
	Batch      *batch.Manager
	Enqueuer   *tasks.Enqueuer
}

func New(cfg *config.AppConfig) (*App, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := mysql.New(cfg.Mysql)
	if err != nil {
		return nil, fmt.Errorf("init mysql: %w", err)
	}

	// The fast tier is an optimization; the engine runs without it when
	// redis is unreachable at startup.
	var fast cache.FastTier
	redisClient, err := rds.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, running without fast cache tier", "error", err.Error())
	} else {
		fast = cache.NewRedisTier(redisClient, cfg.Translate.FastTTL())
	}

	store := cache.NewStore(fast, cache.NewMysqlTier(db), log)
	client := httpclient.New()

	ledger := usage.NewLedger(db, cfg.Quotas, log)
	unitRepo := units.NewRepo(db, log)

	var estimator complexity.Estimator
	if cfg.OpenAI.ApiKey != "" {
		estimator = complexity.NewModelEstimator(
			openai.NewClient(cfg.OpenAI.ApiKey),
			cfg.OpenAI.ComplexityModel,
			cfg.Translate.ComplexityCallTimeout(),
		)
	}
	classifier := complexity.NewClassifier(estimator, log)

	chain := make([]engines.Engine, 0, 3)
	chain = append(chain, engines.WithBreaker(engines.NewOllama(cfg.Ollama, client)))
	chain = append(chain, engines.WithBreaker(engines.NewOpenAI(cfg.OpenAI)))
	alimtEngine, err := engines.NewAlimt(cfg.Aliyun)
	if err != nil {
		log.Warn("alimt engine unavailable", "error", err.Error())
	} else {
		chain = append(chain, engines.WithBreaker(alimtEngine))
	}

	router := engines.NewRouter(cfg.Translate, chain, ledger.Disabled, log)
	exec := executor.New(cfg.Translate, store, executor.NewMysqlDocStore(db), log)
	sink := notify.NewWebhookSink(cfg.Webhook, client, log)

	svc := translator.NewService(cfg.Translate, store, classifier, router, exec,
		glossary.NewStore(db), unitRepo, ledger, sink, log)

	batchMgr := batch.NewManager(db, batch.NewOpenAIProvider(cfg.OpenAI), store, log)

	return &App{
		Cfg:        cfg,
		Log:        log,
		DB:         db,
		Redis:      redisClient,
		Cache:      store,
		Units:      unitRepo,
		Usage:      ledger,
		Translator: svc,
		Batch:      batchMgr,
		Enqueuer:   tasks.NewEnqueuer(cfg.Redis),
	}, nil
}

func (a *App) Close() {
	if a.Enqueuer != nil {
		_ = a.Enqueuer.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
