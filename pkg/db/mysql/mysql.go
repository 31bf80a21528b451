package mysql

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"xorm.io/xorm"

	"mail_trans_engine/config"
	"mail_trans_engine/models/tables"
)

// New connects the xorm engine and syncs the engine-owned tables.
func New(cfg config.MysqlConfig) (*xorm.Engine, error) {
	engine, err := xorm.NewEngine("mysql", cfg.DataSourceName)
	if err != nil {
		return nil, fmt.Errorf("new mysql engine: %w", err)
	}

	engine.SetMaxIdleConns(cfg.MaxIdleCount)
	engine.SetMaxOpenConns(cfg.MaxOpenConns)
	engine.SetConnMaxLifetime(time.Second * time.Duration(cfg.ConnMaxLifetime))

	if err := engine.Sync(
		new(tables.TranslationUnit),
		new(tables.TranslationCache),
		new(tables.SharedDocTranslation),
		new(tables.UsageCounter),
		new(tables.BatchJob),
		new(tables.BatchItem),
		new(tables.GlossaryTerm),
	); err != nil {
		return nil, fmt.Errorf("sync tables: %w", err)
	}

	return engine, nil
}
