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

// TagStore 负责 tag 表以及用户标签关联（skill_tag）的读写。
type TagStore struct {
	db *gorm.DB
}

func NewTagStore(db *gorm.DB) *TagStore {
	return &TagStore{db: db}
}

// WithTx 返回绑定到事务 tx 的副本。
func (s *TagStore) WithTx(tx *gorm.DB) *TagStore {
	return &TagStore{db: tx}
}

type TagInput struct {
	Label string `json:"tag_name" validate:"required,max=128"`
}

// Create 插入标签；同名标签已存在时返回 errcode.ErrConflict。
func (s *TagStore) Create(ctx context.Context, in TagInput) (*database.Tag, error) {
	in.Label = strings.TrimSpace(in.Label)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	tag := database.Tag{Label: in.Label}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("tag %q: %w", in.Label, errcode.ErrConflict)
		}
		return nil, errcode.Storage("create tag", err)
	}
	return &tag, nil
}

// FindByID 返回指定标签；不存在时返回 errcode.ErrNotFound。
func (s *TagStore) FindByID(ctx context.Context, id uint) (*database.Tag, error) {
	var tag database.Tag
	err := s.db.WithContext(ctx).First(&tag, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("tag %d: %w", id, errcode.ErrNotFound)
	case err != nil:
		return nil, errcode.Storage("find tag", err)
	}
	return &tag, nil
}

// FindAll 按 id 升序返回全部标签。
func (s *TagStore) FindAll(ctx context.Context) ([]database.Tag, error) {
	var tags []database.Tag
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, errcode.Storage("list tags", err)
	}
	return tags, nil
}

// FindByIDs 返回 ids 中存在的标签，顺序按 id 升序。
func (s *TagStore) FindByIDs(ctx context.Context, ids []uint) ([]database.Tag, error) {
	if len(ids) == 0 {
		return []database.Tag{}, nil
	}
	var tags []database.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, errcode.Storage("find tags", err)
	}
	return tags, nil
}

// Update 修改标签文本，返回受影响行数。
func (s *TagStore) Update(ctx context.Context, id uint, in TagInput) (int64, error) {
	in.Label = strings.TrimSpace(in.Label)
	if err := validateStruct(in); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Model(&database.Tag{}).Where("id = ?", id).Update("label", in.Label)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("tag %q: %w", in.Label, errcode.ErrConflict)
		}
		return 0, errcode.Storage("update tag", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete 删除标签及其全部关联。
func (s *TagStore) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&database.SkillTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", id).Delete(&database.PostingTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&database.Tag{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, errcode.Storage("delete tag", err)
	}
	return affected, nil
}

// UserTags 返回用户当前关联的标签。
func (s *TagStore) UserTags(ctx context.Context, userID uint) ([]database.Tag, error) {
	var tags []database.Tag
	err := s.db.WithContext(ctx).
		Joins("JOIN skill_tag ON skill_tag.tag_id = tag.id").
		Where("skill_tag.user_id = ?", userID).
		Order("tag.id ASC").
		Find(&tags).Error
	if err != nil {
		return nil, errcode.Storage("list user tags", err)
	}
	return tags, nil
}

// TagsNotHeldBy 返回用户尚未关联的标签（集合差，由数据库计算）。
func (s *TagStore) TagsNotHeldBy(ctx context.Context, userID uint) ([]database.Tag, error) {
	held := s.db.Model(&database.SkillTag{}).Select("tag_id").Where("user_id = ?", userID)
	var tags []database.Tag
	err := s.db.WithContext(ctx).
		Where("id NOT IN (?)", held).
		Order("id ASC").
		Find(&tags).Error
	if err != nil {
		return nil, errcode.Storage("list available tags", err)
	}
	return tags, nil
}

// SkillTagIDs 返回用户已关联的 tag id。
func (s *TagStore) SkillTagIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&database.SkillTag{}).
		Where("user_id = ?", userID).
		Order("tag_id ASC").
		Pluck("tag_id", &ids).Error
	if err != nil {
		return nil, errcode.Storage("list skill tags", err)
	}
	return ids, nil
}

// InsertSkillTags 逐行插入关联，已存在的行被忽略；只返回本次实际写入的行。
func (s *TagStore) InsertSkillTags(ctx context.Context, rows []database.SkillTag) ([]database.SkillTag, error) {
	inserted := make([]database.SkillTag, 0, len(rows))
	for _, row := range rows {
		res := s.db.WithContext(ctx).Clauses(onConflictDoNothing).Create(&row)
		if res.Error != nil {
			return nil, errcode.Storage("insert skill tag", res.Error)
		}
		if res.RowsAffected == 1 {
			inserted = append(inserted, row)
		}
	}
	return inserted, nil
}

// DeleteSkillTag 删除 (userID, tagID) 对应的关联，返回受影响行数。
func (s *TagStore) DeleteSkillTag(ctx context.Context, userID, tagID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND tag_id = ?", userID, tagID).
		Delete(&database.SkillTag{})
	if res.Error != nil {
		return 0, errcode.Storage("delete skill tag", res.Error)
	}
	return res.RowsAffected, nil
}
