package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/errcode"
	"jobboard/internal/store"
)

// defaultTags 是 -seed-tags 写入的初始标签目录。
var defaultTags = []string{
	"Go", "JavaScript", "TypeScript", "Python", "Java", "SQL", "PostgreSQL",
	"Docker", "Kubernetes", "AWS", "React", "Node.js", "HTML", "CSS", "Git",
}

func main() {
	var (
		email     = flag.String("email", "", "要创建的用户邮箱")
		firstName = flag.String("first", "Admin", "名")
		lastName  = flag.String("last", "User", "姓")
		seedTags  = flag.Bool("seed-tags", false, "写入默认技能标签（已存在的跳过）")
		list      = flag.Bool("list-users", false, "列出全部用户")
		remove    = flag.String("delete-user", "", "按邮箱删除用户及其技能标签")
	)
	flag.Parse()

	if strings.TrimSpace(*email) == "" && strings.TrimSpace(*remove) == "" && !*seedTags && !*list {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}
	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	ctx := context.Background()
	users := store.NewUserStore(db)

	if *seedTags {
		n, err := seedTagCatalogue(ctx, db, defaultTags)
		if err != nil {
			log.Fatalf("seed tags: %v", err)
		}
		fmt.Printf("已写入 %d 个新标签（共 %d 个默认标签）\n", n, len(defaultTags))
	}

	if strings.TrimSpace(*remove) != "" {
		if err := deleteUser(ctx, users, *remove); err != nil {
			log.Fatalf("delete user: %v", err)
		}
		fmt.Printf("已删除用户 %s\n", *remove)
	}

	if *list {
		if err := listUsers(ctx, users, os.Stdout); err != nil {
			log.Fatalf("list users: %v", err)
		}
	}

	if strings.TrimSpace(*email) == "" {
		return
	}

	password, err := generateRandomPassword(18)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}
	user, err := users.Create(ctx, store.UserInput{
		Email:     *email,
		Password:  password,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	switch {
	case errors.Is(err, errcode.ErrConflict):
		log.Fatalf("user %q already exists", *email)
	case err != nil:
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("已创建账号：\n")
	fmt.Printf("邮箱: %s\n", user.Email)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：该密码仅显示一次，请登录后通过 PUT /users/me 修改。\n")
}

// seedTagCatalogue 插入缺失的标签，返回新增数量。
func seedTagCatalogue(ctx context.Context, db *gorm.DB, labels []string) (int64, error) {
	tags := make([]database.Tag, 0, len(labels))
	for _, label := range labels {
		tags = append(tags, database.Tag{Label: label})
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "label"}}, DoNothing: true}).
		Create(&tags)
	return res.RowsAffected, res.Error
}

func listUsers(ctx context.Context, users *store.UserStore, w io.Writer) error {
	all, err := users.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		fmt.Fprintf(w, "%d\t%s\t%s %s\n", u.ID, u.Email, u.FirstName, u.LastName)
	}
	return nil
}

// deleteUser 按邮箱删除用户；用户不存在时返回 errcode.ErrNotFound。
func deleteUser(ctx context.Context, users *store.UserStore, email string) error {
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	n, err := users.Delete(ctx, user.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %q: %w", email, errcode.ErrNotFound)
	}
	return nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 18
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
