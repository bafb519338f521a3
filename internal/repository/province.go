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

// ProvinceRepository 省份仓储
type ProvinceRepository struct {
	db DB
}

// NewProvinceRepository 创建省份仓储
func NewProvinceRepository(db DB) *ProvinceRepository {
	return &ProvinceRepository{db: db}
}

// Create 创建省份
func (r *ProvinceRepository) Create(ctx context.Context, p *model.Province) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO provinces (
			id, zone_id, name, code, work_start_time, work_end_time, operators,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ZoneID, p.Name, p.Code, p.WorkStartTime, p.WorkEndTime, p.Operators,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建省份失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取省份
func (r *ProvinceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Province, error) {
	query := `
		SELECT id, zone_id, name, code, work_start_time, work_end_time, operators,
			created_at, updated_at
		FROM provinces
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanProvince(r.db.QueryRowContext(ctx, query, id))
}

// ListByZone 查询指定区域的全部省份，按创建顺序返回。
// 该顺序即分配算法的稳定输入顺序，不可随意变更。
func (r *ProvinceRepository) ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*model.Province, error) {
	query := `
		SELECT id, zone_id, name, code, work_start_time, work_end_time, operators,
			created_at, updated_at
		FROM provinces
		WHERE zone_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, zoneID)
	if err != nil {
		return nil, fmt.Errorf("查询省份列表失败: %w", err)
	}
	defer rows.Close()

	provinces := make([]*model.Province, 0)
	for rows.Next() {
		p, err := r.scanProvince(rows)
		if err != nil {
			return nil, err
		}
		provinces = append(provinces, p)
	}

	return provinces, rows.Err()
}

// Update 更新省份
func (r *ProvinceRepository) Update(ctx context.Context, p *model.Province) error {
	p.UpdatedAt = time.Now()

	query := `
		UPDATE provinces SET
			name = $2, code = $3, work_start_time = $4, work_end_time = $5,
			operators = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Code, p.WorkStartTime, p.WorkEndTime, p.Operators, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新省份失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("省份不存在")
	}

	return nil
}

// Delete 软删除省份
func (r *ProvinceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE provinces SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除省份失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("省份不存在")
	}

	return nil
}

// scanProvince 扫描省份行
func (r *ProvinceRepository) scanProvince(s Scanner) (*model.Province, error) {
	var p model.Province

	err := s.Scan(
		&p.ID, &p.ZoneID, &p.Name, &p.Code, &p.WorkStartTime, &p.WorkEndTime,
		&p.Operators, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("省份不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("扫描省份数据失败: %w", err)
	}

	return &p, nil
}
