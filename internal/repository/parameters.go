// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/callplan/callplan/pkg/model"
)

// ParametersRepository 全局参数仓储。参数表只维护一行记录。
type ParametersRepository struct {
	db       DB
	defaults model.SystemParameters
}

// NewParametersRepository 创建全局参数仓储。
// defaults 为参数表尚无记录时的回退值（来自部署配置）。
func NewParametersRepository(db DB, defaults model.SystemParameters) *ParametersRepository {
	return &ParametersRepository{db: db, defaults: defaults.Normalize()}
}

// Get 读取全局参数，无记录时返回配置默认值
func (r *ParametersRepository) Get(ctx context.Context) (model.SystemParameters, error) {
	query := `
		SELECT attendance_duration, standard_break_time, average_response_rate
		FROM system_parameters
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var p model.SystemParameters
	err := r.db.QueryRowContext(ctx, query).Scan(
		&p.AttendanceDuration, &p.StandardBreakTime, &p.AverageResponseRate,
	)
	if err == sql.ErrNoRows {
		return r.defaults, nil
	}
	if err != nil {
		return model.SystemParameters{}, fmt.Errorf("读取全局参数失败: %w", err)
	}

	return p.Normalize(), nil
}

// Save 保存全局参数
func (r *ParametersRepository) Save(ctx context.Context, p model.SystemParameters) error {
	p = p.Normalize()

	query := `
		INSERT INTO system_parameters (id, attendance_duration, standard_break_time, average_response_rate, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			attendance_duration = EXCLUDED.attendance_duration,
			standard_break_time = EXCLUDED.standard_break_time,
			average_response_rate = EXCLUDED.average_response_rate,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query,
		p.AttendanceDuration, p.StandardBreakTime, p.AverageResponseRate, time.Now(),
	); err != nil {
		return fmt.Errorf("保存全局参数失败: %w", err)
	}

	return nil
}
