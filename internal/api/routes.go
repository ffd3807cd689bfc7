package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"jobboard/internal/api/middleware"
	"jobboard/internal/auth"
	"jobboard/internal/config"
	"jobboard/internal/jobs"
	"jobboard/internal/skills"
	"jobboard/internal/store"
)

// Deps 汇总注册路由所需的外部依赖。
type Deps struct {
	DB                    *gorm.DB
	Redis                 redis.UniversalClient
	Tasks                 TaskEnqueuer
	Logger                *slog.Logger
	Session               config.SessionConfig
	LoginRateLimitPerHour int
}

// RegisterRoutes 注册全部页面与 JSON 路由。
func RegisterRoutes(router *gin.Engine, deps Deps) error {
	tokens, err := auth.NewSessionTokens(deps.Session.Secret, deps.Session.TTL)
	if err != nil {
		return err
	}
	sessionStore := auth.NewSessionStore(deps.Redis, deps.Session.TTL)
	users := store.NewUserStore(deps.DB)
	authService, err := auth.NewService(users, sessionStore, deps.Logger)
	if err != nil {
		return err
	}
	jobsService := jobs.NewService(deps.DB, deps.Logger)
	skillsService := skills.NewService(deps.DB, deps.Logger)

	sessions := &sessionManager{
		store:  sessionStore,
		tokens: tokens,
		name:   deps.Session.CookieName,
		domain: deps.Session.CookieDomain,
		secure: deps.Session.CookieSecure,
	}

	authHandler := NewAuthHandler(users, authService, sessions, deps.Redis, deps.LoginRateLimitPerHour)
	companyHandler := NewCompanyHandler(jobsService)
	skillsHandler := NewSkillsHandler(skillsService)
	pageHandler := NewPageHandler(jobsService, skillsService, users, sessions, deps.Tasks)

	requireSession := middleware.RequireSession()
	requireLoginPage := middleware.RequireSessionOrRedirect("/login")

	app := router.Group("")
	app.Use(middleware.SessionMiddleware(tokens, sessionStore, deps.Session.CookieName))
	{
		app.GET("/", pageHandler.Home)
		app.GET("/jobs", pageHandler.Jobs)
		app.GET("/findjobs", requireLoginPage, pageHandler.FindJobs)
		app.GET("/search", pageHandler.Search)
		app.GET("/postjob", pageHandler.PostJob)
		app.GET("/contactus", pageHandler.ContactPage)
		app.POST("/contactus", pageHandler.Contact)

		app.GET("/login", authHandler.LoginPage)
		app.POST("/login", authHandler.Login)
		app.POST("/logout", authHandler.Logout)

		app.POST("/users", authHandler.Register)
		app.GET("/users/me", requireSession, authHandler.Me)
		app.PUT("/users/me", requireSession, authHandler.UpdateMe)

		companies := app.Group("/companies")
		{
			companies.GET("", companyHandler.ListCompanies)
			companies.POST("", companyHandler.CreateCompany)
			companies.GET("/:id", companyHandler.GetCompany)
			companies.PUT("/:id", companyHandler.UpdateCompany)
			companies.DELETE("/:id", companyHandler.DeleteCompany)
		}

		postings := app.Group("/postings")
		{
			postings.POST("", companyHandler.CreatePosting)
			postings.GET("/:id", companyHandler.GetPosting)
			postings.PUT("/:id", companyHandler.UpdatePosting)
			postings.DELETE("/:id", companyHandler.DeletePosting)
		}

		app.GET("/tags", skillsHandler.ListTags)
		app.POST("/tags", requireSession, skillsHandler.CreateTag)
		app.GET("/tags/:id", skillsHandler.GetTag)
		app.PUT("/tags/:id", requireSession, skillsHandler.UpdateTag)
		app.DELETE("/tags/:id", requireSession, skillsHandler.DeleteTag)

		app.GET("/skills", requireLoginPage, pageHandler.Skills)
		app.PUT("/skills", requireSession, skillsHandler.UpdateSkills)
		app.DELETE("/skills", requireSession, skillsHandler.RemoveSkill)
	}

	return nil
}
