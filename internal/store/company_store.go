package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"jobboard/internal/database"
	"jobboard/internal/errcode"
)

// CompanyStore 负责 company 表的读写。
type CompanyStore struct {
	db *gorm.DB
}

func NewCompanyStore(db *gorm.DB) *CompanyStore {
	return &CompanyStore{db: db}
}

// WithTx 返回绑定到事务 tx 的副本。
func (s *CompanyStore) WithTx(tx *gorm.DB) *CompanyStore {
	return &CompanyStore{db: tx}
}

// CompanyInput 是创建公司所需的字段。
type CompanyInput struct {
	Name  string `json:"company_name" validate:"required,max=255"`
	Email string `json:"company_email" validate:"required,max=255"`
	Phone string `json:"company_phone" validate:"required,max=64"`
}

// CompanyPatch 是部分更新；nil 字段保持不变。
type CompanyPatch struct {
	Name  *string `json:"company_name" validate:"omitempty,max=255"`
	Email *string `json:"company_email" validate:"omitempty,max=255"`
	Phone *string `json:"company_phone" validate:"omitempty,max=64"`
}

// CompanyQuery controls eager loading for reads.
type CompanyQuery struct {
	// WithPostingSummaries preloads postings restricted to id, title, description and salary.
	WithPostingSummaries bool
}

func (in *CompanyInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

// Create 校验并插入一条公司记录。
func (s *CompanyStore) Create(ctx context.Context, in CompanyInput) (*database.Company, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	company := database.Company{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, errcode.Storage("create company", err)
	}
	return &company, nil
}

// FindByID 返回指定公司；不存在时返回 errcode.ErrNotFound。
func (s *CompanyStore) FindByID(ctx context.Context, id uint, q CompanyQuery) (*database.Company, error) {
	var company database.Company
	err := s.scoped(ctx, q).First(&company, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("company %d: %w", id, errcode.ErrNotFound)
	case err != nil:
		return nil, errcode.Storage("find company", err)
	}
	return &company, nil
}

// FindAll 按 id 升序返回全部公司。
func (s *CompanyStore) FindAll(ctx context.Context, q CompanyQuery) ([]database.Company, error) {
	var companies []database.Company
	if err := s.scoped(ctx, q).Order("id ASC").Find(&companies).Error; err != nil {
		return nil, errcode.Storage("list companies", err)
	}
	return companies, nil
}

// Update 应用部分更新并返回受影响行数。
func (s *CompanyStore) Update(ctx context.Context, id uint, patch CompanyPatch) (int64, error) {
	updates, err := patch.updates()
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&database.Company{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return 0, errcode.Storage("update company", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete 删除公司本身，返回受影响行数。关联职位由调用方处理。
func (s *CompanyStore) Delete(ctx context.Context, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&database.Company{}, id)
	if res.Error != nil {
		return 0, errcode.Storage("delete company", res.Error)
	}
	return res.RowsAffected, nil
}

// Exists reports whether a company with id is present.
func (s *CompanyStore) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.Company{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errcode.Storage("count company", err)
	}
	return count > 0, nil
}

func (s *CompanyStore) scoped(ctx context.Context, q CompanyQuery) *gorm.DB {
	tx := s.db.WithContext(ctx)
	if q.WithPostingSummaries {
		tx = tx.Preload("Postings", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "company_id", "title", "description", "salary").Order("id ASC")
		})
	}
	return tx
}

func (p CompanyPatch) updates() (map[string]any, error) {
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	fields := []struct {
		column string
		json   string
		value  *string
	}{
		{"name", "company_name", p.Name},
		{"email", "company_email", p.Email},
		{"phone", "company_phone", p.Phone},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if err := notBlank(f.json, v); err != nil {
			return nil, err
		}
		updates[f.column] = v
	}
	return updates, nil
}
