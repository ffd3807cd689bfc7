package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"jobboard/internal/database"
	"jobboard/internal/errcode"
)

// PostingStore 负责 posting 表以及 posting_tag 关联的读写。
type PostingStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostingStore(db *gorm.DB) *PostingStore {
	return &PostingStore{db: db, now: time.Now}
}

// WithTx 返回绑定到事务 tx 的副本。
func (s *PostingStore) WithTx(tx *gorm.DB) *PostingStore {
	return &PostingStore{db: tx, now: s.now}
}

// PostingInput 是创建职位所需的字段。DatePosted 为空时取当前时间。
type PostingInput struct {
	Title       string     `json:"job_title" validate:"required,max=255"`
	Description string     `json:"job_description" validate:"required"`
	Salary      *int64     `json:"salary" validate:"required,min=0"`
	SkillTags   string     `json:"skill_tags" validate:"required,max=512"`
	CompanyID   *uint      `json:"company_id" validate:"omitempty,gt=0"`
	DatePosted  *time.Time `json:"date_posted"`
	TagIDs      []uint     `json:"tag_ids"`
}

// PostingPatch 是部分更新；nil 字段保持不变，TagIDs 非 nil 时整体替换标签。
type PostingPatch struct {
	Title       *string `json:"job_title" validate:"omitempty,max=255"`
	Description *string `json:"job_description"`
	Salary      *int64  `json:"salary" validate:"omitempty,min=0"`
	SkillTags   *string `json:"skill_tags" validate:"omitempty,max=512"`
	CompanyID   *uint   `json:"company_id" validate:"omitempty,gt=0"`
	TagIDs      []uint  `json:"tag_ids"`
}

// PostingQuery narrows and eagerly loads FindAll results.
type PostingQuery struct {
	// TitleContains filters case-insensitively on title, like SQL LIKE '%term%'.
	TitleContains string
	WithCompany   bool
	WithTags      bool
	CompanyID     *uint
}

func (in *PostingInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.SkillTags = strings.TrimSpace(in.SkillTags)
}

// Create 校验并插入职位，同时写入标签关联。
func (s *PostingStore) Create(ctx context.Context, in PostingInput) (*database.JobPosting, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	posting := database.JobPosting{
		Title:       in.Title,
		Description: in.Description,
		Salary:      *in.Salary,
		SkillTags:   in.SkillTags,
		CompanyID:   in.CompanyID,
		DatePosted:  s.now().UTC(),
	}
	if in.DatePosted != nil && !in.DatePosted.IsZero() {
		posting.DatePosted = in.DatePosted.UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCompany(tx, in.CompanyID); err != nil {
			return err
		}
		tags, err := loadTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit("Company").Create(&posting).Error; err != nil {
			return errcode.Storage("create posting", err)
		}
		if len(tags) > 0 {
			if err := tx.Model(&posting).Association("Tags").Append(tags); err != nil {
				return errcode.Storage("link posting tags", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &posting, nil
}

// FindByID 返回指定职位；不存在时返回 errcode.ErrNotFound。
func (s *PostingStore) FindByID(ctx context.Context, id uint, q PostingQuery) (*database.JobPosting, error) {
	var posting database.JobPosting
	err := s.scoped(ctx, q).First(&posting, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("posting %d: %w", id, errcode.ErrNotFound)
	case err != nil:
		return nil, errcode.Storage("find posting", err)
	}
	return &posting, nil
}

// FindAll 返回满足 q 的职位，按插入顺序（id 升序）。
func (s *PostingStore) FindAll(ctx context.Context, q PostingQuery) ([]database.JobPosting, error) {
	tx := s.scoped(ctx, q)
	if term := strings.TrimSpace(q.TitleContains); term != "" {
		tx = tx.Where(`LOWER(posting.title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
	}
	if q.CompanyID != nil {
		tx = tx.Where("posting.company_id = ?", *q.CompanyID)
	}

	var postings []database.JobPosting
	if err := tx.Order("posting.id ASC").Find(&postings).Error; err != nil {
		return nil, errcode.Storage("list postings", err)
	}
	return postings, nil
}

// Update 应用部分更新并返回匹配的行数（0 表示职位不存在）。
func (s *PostingStore) Update(ctx context.Context, id uint, patch PostingPatch) (int64, error) {
	if err := validateStruct(patch); err != nil {
		return 0, err
	}
	updates := map[string]any{}
	if patch.Title != nil {
		v := strings.TrimSpace(*patch.Title)
		if err := notBlank("job_title", v); err != nil {
			return 0, err
		}
		updates["title"] = v
	}
	if patch.Description != nil {
		v := strings.TrimSpace(*patch.Description)
		if err := notBlank("job_description", v); err != nil {
			return 0, err
		}
		updates["description"] = v
	}
	if patch.Salary != nil {
		updates["salary"] = *patch.Salary
	}
	if patch.SkillTags != nil {
		v := strings.TrimSpace(*patch.SkillTags)
		if err := notBlank("skill_tags", v); err != nil {
			return 0, err
		}
		updates["skill_tags"] = v
	}
	if patch.CompanyID != nil {
		updates["company_id"] = *patch.CompanyID
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.JobPosting{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return errcode.Storage("check posting", err)
		}
		if count == 0 {
			return nil
		}
		if err := checkCompany(tx, patch.CompanyID); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&database.JobPosting{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return errcode.Storage("update posting", err)
			}
		}
		if patch.TagIDs != nil {
			tags, err := loadTags(tx, patch.TagIDs)
			if err != nil {
				return err
			}
			posting := database.JobPosting{ID: id}
			if err := tx.Model(&posting).Association("Tags").Replace(tags); err != nil {
				return errcode.Storage("replace posting tags", err)
			}
		}
		affected = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Delete 删除职位及其标签关联，返回受影响行数。
func (s *PostingStore) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_posting_id = ?", id).Delete(&database.PostingTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&database.JobPosting{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, errcode.Storage("delete posting", err)
	}
	return affected, nil
}

// DeleteByCompany 删除公司名下全部职位及其标签关联。调用方应在事务中使用。
func (s *PostingStore) DeleteByCompany(ctx context.Context, companyID uint) (int64, error) {
	db := s.db.WithContext(ctx)
	owned := s.db.Model(&database.JobPosting{}).Select("id").Where("company_id = ?", companyID)
	if err := db.Where("job_posting_id IN (?)", owned).Delete(&database.PostingTag{}).Error; err != nil {
		return 0, errcode.Storage("delete company posting tags", err)
	}
	res := db.Where("company_id = ?", companyID).Delete(&database.JobPosting{})
	if res.Error != nil {
		return 0, errcode.Storage("delete company postings", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *PostingStore) scoped(ctx context.Context, q PostingQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&database.JobPosting{})
	if q.WithCompany {
		tx = tx.Preload("Company")
	}
	if q.WithTags {
		tx = tx.Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag.id ASC") })
	}
	return tx
}

func checkCompany(tx *gorm.DB, companyID *uint) error {
	if companyID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&database.Company{}).Where("id = ?", *companyID).Count(&count).Error; err != nil {
		return errcode.Storage("check company", err)
	}
	if count == 0 {
		return errcode.NewValidationError("company_id", "unknown company")
	}
	return nil
}

func loadTags(tx *gorm.DB, ids []uint) ([]database.Tag, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []database.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, errcode.Storage("load tags", err)
	}
	if len(tags) != len(ids) {
		return nil, errcode.NewValidationError("tag_ids", "contains unknown tag")
	}
	return tags, nil
}

// uniqueIDs drops zero and repeated ids while keeping first-seen order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
