package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"jobboard/internal/auth"
	"jobboard/internal/database"
	"jobboard/internal/errcode"
)

// UserStore 负责 user 表的读写。密码在写入前显式哈希，明文不会落库。
type UserStore struct {
	db   *gorm.DB
	hash func(string) (string, error)
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db, hash: auth.HashPassword}
}

// UserInput 是注册账号所需的字段。
type UserInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required,max=128"`
	LastName  string `json:"lastName" validate:"required,max=128"`
}

// UserPatch 是部分更新；Password 非 nil 时重新哈希。
type UserPatch struct {
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Password  *string `json:"password" validate:"omitempty,min=6,max=72"`
	FirstName *string `json:"firstName" validate:"omitempty,max=128"`
	LastName  *string `json:"lastName" validate:"omitempty,max=128"`
}

func (in *UserInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

func (p *UserPatch) normalize() {
	if p.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &v
	}
	if p.FirstName != nil {
		v := strings.TrimSpace(*p.FirstName)
		p.FirstName = &v
	}
	if p.LastName != nil {
		v := strings.TrimSpace(*p.LastName)
		p.LastName = &v
	}
}

// Create 校验、哈希密码并插入用户；邮箱重复时返回 errcode.ErrConflict。
func (s *UserStore) Create(ctx context.Context, in UserInput) (*database.User, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := database.User{
		Email:        in.Email,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.db.WithContext(ctx).Omit("Tags").Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email %q: %w", in.Email, errcode.ErrConflict)
		}
		return nil, errcode.Storage("create user", err)
	}
	return &user, nil
}

// FindByID 返回指定用户；withTags 为 true 时预加载标签。
func (s *UserStore) FindByID(ctx context.Context, id uint, withTags bool) (*database.User, error) {
	tx := s.db.WithContext(ctx)
	if withTags {
		tx = tx.Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag.id ASC") })
	}
	var user database.User
	err := tx.First(&user, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("user %d: %w", id, errcode.ErrNotFound)
	case err != nil:
		return nil, errcode.Storage("find user", err)
	}
	return &user, nil
}

// FindByEmail 按邮箱（不区分大小写）查找用户。
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*database.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user database.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("user %q: %w", email, errcode.ErrNotFound)
	case err != nil:
		return nil, errcode.Storage("find user by email", err)
	}
	return &user, nil
}

// FindAll 按 id 升序返回全部用户。
func (s *UserStore) FindAll(ctx context.Context) ([]database.User, error) {
	var users []database.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, errcode.Storage("list users", err)
	}
	return users, nil
}

// Update 应用部分更新并返回受影响行数；新密码先哈希再写入。
func (s *UserStore) Update(ctx context.Context, id uint, patch UserPatch) (int64, error) {
	patch.normalize()
	if err := validateStruct(patch); err != nil {
		return 0, err
	}
	updates := map[string]any{}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.FirstName != nil {
		if err := notBlank("firstName", *patch.FirstName); err != nil {
			return 0, err
		}
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		if err := notBlank("lastName", *patch.LastName); err != nil {
			return 0, err
		}
		updates["last_name"] = *patch.LastName
	}
	if patch.Password != nil {
		hashed, err := s.hash(*patch.Password)
		if err != nil {
			return 0, err
		}
		updates["password_hash"] = hashed
	}
	if len(updates) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Model(&database.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("email already registered: %w", errcode.ErrConflict)
		}
		return 0, errcode.Storage("update user", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete 删除用户及其标签关联。
func (s *UserStore) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&database.SkillTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&database.User{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, errcode.Storage("delete user", err)
	}
	return affected, nil
}
