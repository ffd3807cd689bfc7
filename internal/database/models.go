package database

import (
	"time"

	"gorm.io/datatypes"
)

// Company 表示发布职位的公司。
type Company struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"size:255;not null" json:"company_name"`
	Email    string       `gorm:"size:255;not null" json:"company_email"`
	Phone    string       `gorm:"size:64;not null" json:"company_phone"`
	Postings []JobPosting `gorm:"foreignKey:CompanyID" json:"postings,omitempty"`
}

func (Company) TableName() string { return "company" }

// JobPosting 表示一条职位。SkillTags 是自由文本，与结构化的 Tags 关系相互独立。
type JobPosting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null;index" json:"job_title"`
	Description string    `gorm:"type:text;not null" json:"job_description"`
	Salary      int64     `gorm:"not null;check:salary >= 0" json:"salary"`
	DatePosted  time.Time `gorm:"not null" json:"date_posted"`
	SkillTags   string    `gorm:"size:512;not null" json:"skill_tags"`
	CompanyID   *uint     `gorm:"index" json:"company_id"`
	Company     *Company  `gorm:"constraint:OnDelete:SET NULL" json:"company,omitempty"`
	Tags        []Tag     `gorm:"many2many:posting_tag" json:"tags,omitempty"`
}

func (JobPosting) TableName() string { return "posting" }

// User 表示求职者账号。PasswordHash 永远不会序列化到响应中。
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"user_email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	FirstName    string `gorm:"size:128;not null" json:"user_firstName"`
	LastName     string `gorm:"size:128;not null" json:"user_lastName"`
	Tags         []Tag  `gorm:"many2many:skill_tag" json:"tags,omitempty"`
}

func (User) TableName() string { return "user" }

// Tag 是用户之间共享的技能标签。
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Label string `gorm:"uniqueIndex;size:128;not null" json:"tag_name"`
}

func (Tag) TableName() string { return "tag" }

// SkillTag 是用户与标签的关联；复合主键保证同一关联只存在一行。
type SkillTag struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
}

func (SkillTag) TableName() string { return "skill_tag" }

// PostingTag 是职位与标签的关联表。
type PostingTag struct {
	JobPostingID uint `gorm:"primaryKey;autoIncrement:false" json:"posting_id"`
	TagID        uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
}

func (PostingTag) TableName() string { return "posting_tag" }

// ContactMessage 保存"联系我们"表单的提交内容，由 worker 异步落库。
type ContactMessage struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"size:255" json:"name"`
	Email     string            `gorm:"size:255" json:"email"`
	Message   string            `gorm:"type:text" json:"message"`
	Meta      datatypes.JSONMap `json:"meta,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (ContactMessage) TableName() string { return "contact_message" }

// Models 返回需要迁移的全部模型。
func Models() []any {
	return []any{
		&Company{},
		&Tag{},
		&User{},
		&JobPosting{},
		&SkillTag{},
		&PostingTag{},
		&ContactMessage{},
	}
}
