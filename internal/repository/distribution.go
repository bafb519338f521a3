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

// DistributionRepository 已保存分配快照的仓储
type DistributionRepository struct {
	db DB
}

// NewDistributionRepository 创建分配快照仓储
func NewDistributionRepository(db DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// Save 保存一份计算结果快照。同一 (区域, 日期类型, 日期) 的旧快照被覆盖。
func (r *DistributionRepository) Save(ctx context.Context, zoneID uuid.UUID, planDate, savedBy string, plan *model.Plan) (*model.DistributionRecord, error) {
	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("序列化分配快照失败: %w", err)
	}

	rec := &model.DistributionRecord{
		BaseModel: model.NewBaseModel(),
		ZoneID:    zoneID,
		DayType:   plan.DayType,
		PlanDate:  planDate,
		Payload:   payload,
		SavedBy:   savedBy,
		SavedAt:   time.Now(),
	}

	query := `
		INSERT INTO distributions (id, zone_id, day_type, plan_date, payload, saved_by, saved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (zone_id, day_type, plan_date) WHERE deleted_at IS NULL
		DO UPDATE SET
			payload = EXCLUDED.payload,
			saved_by = EXCLUDED.saved_by,
			saved_at = EXCLUDED.saved_at,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ZoneID, rec.DayType, rec.PlanDate, rec.Payload, rec.SavedBy,
		rec.SavedAt, rec.CreatedAt, rec.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("保存分配快照失败: %w", err)
	}

	return rec, nil
}

// Get 读取某 (区域, 日期类型, 日期) 的快照及其 Plan
func (r *DistributionRepository) Get(ctx context.Context, zoneID uuid.UUID, dayType model.DayType, planDate string) (*model.DistributionRecord, *model.Plan, error) {
	query := `
		SELECT id, zone_id, day_type, plan_date, payload, saved_by, saved_at, created_at, updated_at
		FROM distributions
		WHERE zone_id = $1 AND day_type = $2 AND plan_date = $3 AND deleted_at IS NULL
	`

	rec, err := r.scanRecord(r.db.QueryRowContext(ctx, query, zoneID, dayType, planDate))
	if err != nil {
		return nil, nil, err
	}

	var plan model.Plan
	if err := json.Unmarshal(rec.Payload, &plan); err != nil {
		return nil, nil, fmt.Errorf("反序列化分配快照失败: %w", err)
	}

	return rec, &plan, nil
}

// ListByZone 查询某区域的快照列表（不含负载），按日期倒序。
// 过滤器中的日期类型与日期范围为可选条件。
func (r *DistributionRepository) ListByZone(ctx context.Context, zoneID uuid.UUID, filter ListFilter) ([]*model.DistributionRecord, error) {
	where := "WHERE zone_id = $1 AND deleted_at IS NULL"
	args := []interface{}{zoneID}
	argIdx := 2

	if filter.DayType != "" {
		where += fmt.Sprintf(" AND day_type = $%d", argIdx)
		args = append(args, filter.DayType)
		argIdx++
	}
	if filter.StartDate != "" {
		where += fmt.Sprintf(" AND plan_date >= $%d", argIdx)
		args = append(args, filter.StartDate)
		argIdx++
	}
	if filter.EndDate != "" {
		where += fmt.Sprintf(" AND plan_date <= $%d", argIdx)
		args = append(args, filter.EndDate)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT id, zone_id, day_type, plan_date, saved_by, saved_at, created_at, updated_at
		FROM distributions %s
		ORDER BY plan_date DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询分配快照列表失败: %w", err)
	}
	defer rows.Close()

	records := make([]*model.DistributionRecord, 0)
	for rows.Next() {
		var rec model.DistributionRecord
		if err := rows.Scan(
			&rec.ID, &rec.ZoneID, &rec.DayType, &rec.PlanDate, &rec.SavedBy,
			&rec.SavedAt, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描分配快照失败: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Delete 软删除快照
func (r *DistributionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE distributions SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除分配快照失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("分配快照不存在")
	}

	return nil
}

// scanRecord 扫描快照行（含负载）
func (r *DistributionRepository) scanRecord(s Scanner) (*model.DistributionRecord, error) {
	var rec model.DistributionRecord

	err := s.Scan(
		&rec.ID, &rec.ZoneID, &rec.DayType, &rec.PlanDate, &rec.Payload,
		&rec.SavedBy, &rec.SavedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("分配快照不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("扫描分配快照失败: %w", err)
	}

	return &rec, nil
}
