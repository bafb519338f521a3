// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/callplan/callplan/pkg/model"
)

// ZoneRepository 区域仓储
type ZoneRepository struct {
	db DB
}

// NewZoneRepository 创建区域仓储
func NewZoneRepository(db DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

// Create 创建区域
func (r *ZoneRepository) Create(ctx context.Context, zone *model.Zone) error {
	if zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	now := time.Now()
	zone.CreatedAt = now
	zone.UpdatedAt = now

	settingsJSON, _ := json.Marshal(zone.Settings)

	query := `
		INSERT INTO zones (id, name, code, settings, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		zone.ID, zone.Name, zone.Code, settingsJSON, zone.IsActive, zone.CreatedAt, zone.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建区域失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取区域
func (r *ZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Zone, error) {
	query := `
		SELECT id, name, code, settings, is_active, created_at, updated_at
		FROM zones
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanZone(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新区域
func (r *ZoneRepository) Update(ctx context.Context, zone *model.Zone) error {
	zone.UpdatedAt = time.Now()

	settingsJSON, _ := json.Marshal(zone.Settings)

	query := `
		UPDATE zones SET name = $2, code = $3, settings = $4, is_active = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		zone.ID, zone.Name, zone.Code, settingsJSON, zone.IsActive, zone.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新区域失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("区域不存在")
	}

	return nil
}

// Delete 软删除区域
func (r *ZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE zones SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除区域失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("区域不存在")
	}

	return nil
}

// List 查询区域列表
func (r *ZoneRepository) List(ctx context.Context, filter ListFilter) ([]*model.Zone, int, error) {
	where := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argIdx := 1

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM zones " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计区域数量失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, code, settings, is_active, created_at, updated_at
		FROM zones %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询区域列表失败: %w", err)
	}
	defer rows.Close()

	zones := make([]*model.Zone, 0)
	for rows.Next() {
		zone, err := r.scanZone(rows)
		if err != nil {
			return nil, 0, err
		}
		zones = append(zones, zone)
	}

	return zones, total, rows.Err()
}

// scanZone 扫描区域行
func (r *ZoneRepository) scanZone(s Scanner) (*model.Zone, error) {
	var zone model.Zone
	var settingsJSON []byte

	err := s.Scan(
		&zone.ID, &zone.Name, &zone.Code, &settingsJSON, &zone.IsActive,
		&zone.CreatedAt, &zone.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("区域不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("扫描区域数据失败: %w", err)
	}

	if len(settingsJSON) > 0 {
		json.Unmarshal(settingsJSON, &zone.Settings)
	}

	return &zone, nil
}
