package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

// NurseRepository 护士仓储
// 护士按 (ward_id, member_id) 唯一，member_id 来自医院HR系统，临时护士用负数ID
type NurseRepository struct {
	db DB
}

// NewNurseRepository 创建护士仓储
func NewNurseRepository(db DB) *NurseRepository {
	return &NurseRepository{db: db}
}

const nurseColumns = `member_id, ward_id, name, gender, role, grade, shift_mask,
	skill, intensity, is_temporary, is_synced, created_at, updated_at`

// Create 创建护士
func (r *NurseRepository) Create(ctx context.Context, nurse *model.Nurse) error {
	query := `
		INSERT INTO nurses (` + nurseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query,
		nurse.MemberID, nurse.WardID, nurse.Name, nurse.Gender, nurse.Role, nurse.Grade,
		int(nurse.ShiftMask), nurse.Skill, nurse.Intensity, nurse.IsTemporary, nurse.IsSynced,
		now, now,
	); err != nil {
		return fmt.Errorf("创建护士失败: %w", err)
	}
	return nil
}

// CreateTemporaries 批量创建临时护士
// 从当前病区最小的负数 member_id 继续往下分配
func (r *NurseRepository) CreateTemporaries(ctx context.Context, wardID uuid.UUID, count int) ([]model.Nurse, error) {
	if count <= 0 {
		return nil, errors.New(errors.CodeInvalidInput, "临时护士数量必须为正")
	}

	var minID int64
	query := `SELECT COALESCE(MIN(member_id), 0) FROM nurses WHERE ward_id = $1 AND member_id < 0`
	if err := r.db.QueryRowContext(ctx, query, wardID).Scan(&minID); err != nil {
		return nil, fmt.Errorf("查询临时护士ID失败: %w", err)
	}

	nurses := make([]model.Nurse, 0, count)
	for i := 0; i < count; i++ {
		nurse := model.NewTemporaryNurse(minID-int64(i)-1, wardID, "")
		if err := r.Create(ctx, &nurse); err != nil {
			return nil, err
		}
		nurses = append(nurses, nurse)
	}
	return nurses, nil
}

// ListByWard 列出病区全部护士
func (r *NurseRepository) ListByWard(ctx context.Context, wardID uuid.UUID) ([]model.Nurse, error) {
	query := `SELECT ` + nurseColumns + ` FROM nurses WHERE ward_id = $1 ORDER BY member_id`
	rows, err := r.db.QueryContext(ctx, query, wardID)
	if err != nil {
		return nil, fmt.Errorf("查询护士失败: %w", err)
	}
	defer rows.Close()

	var nurses []model.Nurse
	for rows.Next() {
		var nurse model.Nurse
		var mask int
		var createdAt, updatedAt time.Time
		if err := rows.Scan(
			&nurse.MemberID, &nurse.WardID, &nurse.Name, &nurse.Gender, &nurse.Role, &nurse.Grade,
			&mask, &nurse.Skill, &nurse.Intensity, &nurse.IsTemporary, &nurse.IsSynced,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描护士行失败: %w", err)
		}
		nurse.ShiftMask = shiftmask.Mask(mask)
		nurses = append(nurses, nurse)
	}
	return nurses, rows.Err()
}

// Update 更新护士
func (r *NurseRepository) Update(ctx context.Context, nurse *model.Nurse) error {
	query := `
		UPDATE nurses SET name = $3, gender = $4, role = $5, grade = $6, shift_mask = $7,
			skill = $8, intensity = $9, is_synced = $10, updated_at = $11
		WHERE ward_id = $1 AND member_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		nurse.WardID, nurse.MemberID, nurse.Name, nurse.Gender, nurse.Role, nurse.Grade,
		int(nurse.ShiftMask), nurse.Skill, nurse.Intensity, nurse.IsSynced, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("更新护士失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.New(errors.CodeNotFound, "护士不存在")
	}
	return nil
}

// DeleteByMemberIDs 批量删除护士
func (r *NurseRepository) DeleteByMemberIDs(ctx context.Context, wardID uuid.UUID, memberIDs []int64) error {
	if len(memberIDs) == 0 {
		return nil
	}
	query := `DELETE FROM nurses WHERE ward_id = $1 AND member_id = ANY($2)`
	result, err := r.db.ExecContext(ctx, query, wardID, pq.Array(memberIDs))
	if err != nil {
		return fmt.Errorf("删除护士失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); int(rows) != len(memberIDs) {
		return errors.New(errors.CodeNotFound, "部分护士不存在")
	}
	return nil
}

// HeadNurseCount 统计病区护士长人数
func (r *NurseRepository) HeadNurseCount(ctx context.Context, wardID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM nurses WHERE ward_id = $1 AND role = $2`
	if err := r.db.QueryRowContext(ctx, query, wardID, model.RoleHeadNurse).Scan(&count); err != nil {
		return 0, fmt.Errorf("统计护士长失败: %w", err)
	}
	return count, nil
}

// WardProvisioner 基于护士仓储的临时护士增援实现
// 创建临时护士后返回病区最新的完整花名册
type WardProvisioner struct {
	nurses *NurseRepository
	wardID uuid.UUID
}

// NewWardProvisioner 创建病区增援器
func NewWardProvisioner(nurses *NurseRepository, wardID uuid.UUID) *WardProvisioner {
	return &WardProvisioner{nurses: nurses, wardID: wardID}
}

// AddTemporaryNurses 增援临时护士并返回更新后的花名册
func (p *WardProvisioner) AddTemporaryNurses(ctx context.Context, count int) ([]model.Nurse, error) {
	if _, err := p.nurses.CreateTemporaries(ctx, p.wardID, count); err != nil {
		return nil, err
	}
	return p.nurses.ListByWard(ctx, p.wardID)
}
