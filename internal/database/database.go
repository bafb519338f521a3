// Package database 提供数据库连接和管理
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/callplan/callplan/internal/config"
	"github.com/callplan/callplan/internal/metrics"
	"github.com/callplan/callplan/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

// defaultSlowQuery 配置未指定阈值时的慢查询判定耗时
const defaultSlowQuery = 100 * time.Millisecond

// DB 数据库连接封装。
// 所有语句统一经过耗时观测：超过阈值的记录慢查询日志，
// 失败的记录错误日志，全部计入数据库指标。
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New 创建新的数据库连接
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	// 配置连接池
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Dur("slow_query_threshold", cfg.SlowQueryThreshold).
		Msg("数据库连接成功")

	return &DB{DB: db, cfg: cfg}, nil
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	if db.DB != nil {
		logger.Info().Msg("关闭数据库连接")
		return db.DB.Close()
	}
	return nil
}

// Health 健康检查
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction 执行事务
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("事务回滚失败: %v (原始错误: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}

	return nil
}

// Stats 返回数据库统计信息
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext 执行SQL语句
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	db.observe("exec", query, start, err)
	return result, err
}

// QueryContext 执行查询
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	db.observe("query", query, start, err)
	return rows, err
}

// QueryRowContext 执行单行查询。
// 错误延迟到 Row.Scan 才暴露，此处只观测耗时。
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := db.DB.QueryRowContext(ctx, query, args...)
	db.observe("query_row", query, start, nil)
	return row
}

// observe 统一的语句观测：慢查询与错误日志、数据库指标
func (db *DB) observe(op, query string, start time.Time, err error) {
	duration := time.Since(start)
	metrics.RecordDBQuery(op, duration, err)

	if err != nil {
		logger.Error().
			Err(err).
			Str("database", db.name()).
			Str("op", op).
			Str("query", truncateQuery(query)).
			Dur("duration", duration).
			Msg("SQL执行失败")
		return
	}
	if duration > db.slowThreshold() {
		logger.Warn().
			Str("database", db.name()).
			Str("op", op).
			Str("query", truncateQuery(query)).
			Dur("duration", duration).
			Msg("慢SQL查询")
	}
}

// slowThreshold 返回慢查询判定阈值，配置缺失时回退默认值
func (db *DB) slowThreshold() time.Duration {
	if db.cfg != nil && db.cfg.SlowQueryThreshold > 0 {
		return db.cfg.SlowQueryThreshold
	}
	return defaultSlowQuery
}

func (db *DB) name() string {
	if db.cfg != nil {
		return db.cfg.Name
	}
	return ""
}

// truncateQuery 截断长查询
func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
