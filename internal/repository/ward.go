package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
)

// WardRepository 病区仓储
// 规则集以 JSONB 整体存储，读写均为整份替换
type WardRepository struct {
	db DB
}

// NewWardRepository 创建病区仓储
func NewWardRepository(db DB) *WardRepository {
	return &WardRepository{db: db}
}

// Create 创建病区
func (r *WardRepository) Create(ctx context.Context, ward *model.Ward) error {
	if ward.ID == uuid.Nil {
		ward.ID = uuid.New()
	}
	now := time.Now()
	ward.CreatedAt = now
	ward.UpdatedAt = now

	rulesJSON, err := json.Marshal(ward.Rules)
	if err != nil {
		return fmt.Errorf("序列化规则集失败: %w", err)
	}

	query := `
		INSERT INTO wards (id, hospital_id, name, code, rules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		ward.ID, ward.HospitalID, ward.Name, ward.Code, rulesJSON, ward.CreatedAt, ward.UpdatedAt,
	); err != nil {
		return fmt.Errorf("创建病区失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取病区
func (r *WardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Ward, error) {
	query := `
		SELECT id, hospital_id, name, code, rules, created_at, updated_at
		FROM wards
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanWard(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新病区
func (r *WardRepository) Update(ctx context.Context, ward *model.Ward) error {
	ward.UpdatedAt = time.Now()

	rulesJSON, err := json.Marshal(ward.Rules)
	if err != nil {
		return fmt.Errorf("序列化规则集失败: %w", err)
	}

	query := `
		UPDATE wards SET name = $2, code = $3, rules = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, ward.ID, ward.Name, ward.Code, rulesJSON, ward.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新病区失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.New(errors.CodeNotFound, "病区不存在")
	}
	return nil
}

// UpdateRules 仅更新病区规则集
// 保存前校验，非法规则不落库
func (r *WardRepository) UpdateRules(ctx context.Context, wardID uuid.UUID, rules model.RuleSet) error {
	if err := rules.Validate(); err != nil {
		return err
	}

	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("序列化规则集失败: %w", err)
	}

	query := `UPDATE wards SET rules = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, wardID, rulesJSON, time.Now())
	if err != nil {
		return fmt.Errorf("更新病区规则失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.New(errors.CodeNotFound, "病区不存在")
	}
	return nil
}

// Delete 软删除病区
func (r *WardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE wards SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除病区失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.New(errors.CodeNotFound, "病区不存在")
	}
	return nil
}

// List 列出病区
func (r *WardRepository) List(ctx context.Context, filter ListFilter) ([]*model.Ward, int, error) {
	where := "deleted_at IS NULL"
	args := []interface{}{}
	argIdx := 1

	if filter.HospitalID != nil {
		where += fmt.Sprintf(" AND hospital_id = $%d", argIdx)
		args = append(args, *filter.HospitalID)
		argIdx++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM wards WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计病区失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, hospital_id, name, code, rules, created_at, updated_at
		FROM wards WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询病区失败: %w", err)
	}
	defer rows.Close()

	var wards []*model.Ward
	for rows.Next() {
		ward, err := r.scanWardRow(rows)
		if err != nil {
			return nil, 0, err
		}
		wards = append(wards, ward)
	}
	return wards, total, rows.Err()
}

func (r *WardRepository) scanWard(row *sql.Row) (*model.Ward, error) {
	var ward model.Ward
	var rulesJSON []byte

	err := row.Scan(&ward.ID, &ward.HospitalID, &ward.Name, &ward.Code, &rulesJSON, &ward.CreatedAt, &ward.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.CodeNotFound, "病区不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("查询病区失败: %w", err)
	}
	if err := json.Unmarshal(rulesJSON, &ward.Rules); err != nil {
		return nil, fmt.Errorf("解析规则集失败: %w", err)
	}
	return &ward, nil
}

func (r *WardRepository) scanWardRow(rows *sql.Rows) (*model.Ward, error) {
	var ward model.Ward
	var rulesJSON []byte

	if err := rows.Scan(&ward.ID, &ward.HospitalID, &ward.Name, &ward.Code, &rulesJSON, &ward.CreatedAt, &ward.UpdatedAt); err != nil {
		return nil, fmt.Errorf("扫描病区行失败: %w", err)
	}
	if err := json.Unmarshal(rulesJSON, &ward.Rules); err != nil {
		return nil, fmt.Errorf("解析规则集失败: %w", err)
	}
	return &ward, nil
}
