package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"jobboard/internal/api/middleware"
	"jobboard/internal/jobs"
	"jobboard/internal/skills"
	"jobboard/internal/store"
	"jobboard/internal/tasks"
	"jobboard/internal/views"
)

// TaskEnqueuer 是 *asynq.Client 的最小子集，便于测试替换。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PageHandler 渲染服务端页面。
type PageHandler struct {
	jobs     *jobs.Service
	skills   *skills.Service
	users    *store.UserStore
	sessions *sessionManager
	tasks    TaskEnqueuer
}

func NewPageHandler(jobsService *jobs.Service, skillsService *skills.Service, users *store.UserStore, sessions *sessionManager, enqueuer TaskEnqueuer) *PageHandler {
	return &PageHandler{
		jobs:     jobsService,
		skills:   skillsService,
		users:    users,
		sessions: sessions,
		tasks:    enqueuer,
	}
}

// page 生成所有页面共用的模板数据。
func page(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title":    title,
		"LoggedIn": middleware.CurrentSession(c).Authenticated(),
	}
}

func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, views.Register, page(c, "Sign up"))
}

func (h *PageHandler) PostJob(c *gin.Context) {
	c.HTML(http.StatusOK, views.PostJob, page(c, "Post a job"))
}

// Jobs 列出全部职位，未登录也可访问。
func (h *PageHandler) Jobs(c *gin.Context) {
	h.renderPostings(c, views.Jobs, "Jobs", "")
}

// FindJobs 与 Jobs 相同的数据，但仅对已登录用户开放并带搜索框。
func (h *PageHandler) FindJobs(c *gin.Context) {
	h.renderPostings(c, views.FindJobs, "Find jobs", "")
}

// Search 按标题（不区分大小写）过滤职位。
func (h *PageHandler) Search(c *gin.Context) {
	h.renderPostings(c, views.FindJobs, "Search", strings.TrimSpace(c.Query("term")))
}

func (h *PageHandler) renderPostings(c *gin.Context, view, title, term string) {
	postings, err := h.jobs.ListPostings(c.Request.Context(), term)
	if err != nil {
		respondError(c, err)
		return
	}
	data := page(c, title)
	data["Postings"] = postings
	data["Term"] = term
	c.HTML(http.StatusOK, view, data)
}

// Skills 渲染当前用户已有标签与可选标签。
func (h *PageHandler) Skills(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, userID, false)
	if err != nil {
		respondError(c, err)
		return
	}
	userTags, err := h.skills.UserTags(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	available, err := h.skills.ListAvailableTags(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	data := page(c, "My skills")
	data["User"] = user
	data["UserTags"] = userTags
	data["AvailableTags"] = available
	c.HTML(http.StatusOK, views.Skills, data)
}

func (h *PageHandler) ContactPage(c *gin.Context) {
	flashes, err := h.sessions.takeFlashes(c)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("read flash messages failed", slog.Any("error", err))
	}
	data := page(c, "Contact us")
	data["Flashes"] = flashes
	c.HTML(http.StatusOK, views.ContactUs, data)
}

type contactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Message string `form:"message"`
}

// Contact 将联系表单投递到任务队列，并以 303 跳回联系页展示提示。
func (h *PageHandler) Contact(c *gin.Context) {
	logger := middleware.LoggerFromContext(c)

	var form contactForm
	bindErr := c.ShouldBind(&form)

	kind, message := "success", "Thank you for your message!"
	if bindErr != nil {
		logger.Debug("contact form rejected", slog.Any("error", bindErr))
		kind, message = "error", "We could not read your message, please try again."
	} else if strings.TrimSpace(form.Message) == "" {
		kind, message = "error", "Please enter a message."
	} else if err := h.enqueueContact(c, form); err != nil {
		logger.Error("enqueue contact message failed", slog.Any("error", err))
		kind, message = "error", "We could not send your message, please try again later."
	}

	if err := h.sessions.flash(c, kind, message); err != nil {
		logger.Warn("store flash message failed", slog.Any("error", err))
	}
	c.Redirect(http.StatusSeeOther, "/contactus")
}

func (h *PageHandler) enqueueContact(c *gin.Context, form contactForm) error {
	task, err := tasks.NewContactMessageTask(tasks.ContactMessagePayload{
		Name:          form.Name,
		Email:         form.Email,
		Message:       form.Message,
		CorrelationID: middleware.GetCorrelationID(c),
		Meta: map[string]any{
			"remote_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		},
	})
	if err != nil {
		return err
	}
	info, err := h.tasks.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		return err
	}
	middleware.LoggerFromContext(c).Info("contact message enqueued", slog.String("task_id", info.ID))
	return nil
}
