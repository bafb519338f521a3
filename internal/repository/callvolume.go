// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/callplan/callplan/pkg/model"
)

// CallVolumeRepository 话务量仓储
type CallVolumeRepository struct {
	db DB
}

// NewCallVolumeRepository 创建话务量仓储
func NewCallVolumeRepository(db DB) *CallVolumeRepository {
	return &CallVolumeRepository{db: db}
}

// Upsert 写入或更新某 (区域, 日期类型, 小时) 的话务量
func (r *CallVolumeRepository) Upsert(ctx context.Context, v *model.CallVolumePoint) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now()
	v.UpdatedAt = now

	query := `
		INSERT INTO call_volumes (id, zone_id, day_type, hour, calls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (zone_id, day_type, hour) WHERE deleted_at IS NULL
		DO UPDATE SET calls = EXCLUDED.calls, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.ZoneID, v.DayType, v.Hour, v.Calls, now, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("写入话务量失败: %w", err)
	}

	return nil
}

// UpsertSeries 批量写入一条话务量序列
func (r *CallVolumeRepository) UpsertSeries(ctx context.Context, points []*model.CallVolumePoint) error {
	for _, v := range points {
		if err := r.Upsert(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// ListByZone 查询某 (区域, 日期类型) 的话务量序列，按小时升序
func (r *CallVolumeRepository) ListByZone(ctx context.Context, zoneID uuid.UUID, dayType model.DayType) ([]*model.CallVolumePoint, error) {
	query := `
		SELECT id, zone_id, day_type, hour, calls, created_at, updated_at
		FROM call_volumes
		WHERE zone_id = $1 AND day_type = $2 AND deleted_at IS NULL
		ORDER BY hour ASC
	`

	rows, err := r.db.QueryContext(ctx, query, zoneID, dayType)
	if err != nil {
		return nil, fmt.Errorf("查询话务量失败: %w", err)
	}
	defer rows.Close()

	points := make([]*model.CallVolumePoint, 0, 24)
	for rows.Next() {
		v, err := r.scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, v)
	}

	return points, rows.Err()
}

// DeleteByZone 删除某 (区域, 日期类型) 的全部话务量
func (r *CallVolumeRepository) DeleteByZone(ctx context.Context, zoneID uuid.UUID, dayType model.DayType) error {
	query := `
		UPDATE call_volumes SET deleted_at = $3
		WHERE zone_id = $1 AND day_type = $2 AND deleted_at IS NULL
	`

	if _, err := r.db.ExecContext(ctx, query, zoneID, dayType, time.Now()); err != nil {
		return fmt.Errorf("删除话务量失败: %w", err)
	}

	return nil
}

// scanPoint 扫描话务量行
func (r *CallVolumeRepository) scanPoint(s Scanner) (*model.CallVolumePoint, error) {
	var v model.CallVolumePoint

	err := s.Scan(&v.ID, &v.ZoneID, &v.DayType, &v.Hour, &v.Calls, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("话务量数据不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("扫描话务量数据失败: %w", err)
	}

	return &v, nil
}
