package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/skills"
	"jobboard/internal/store"
)

// SkillsHandler 提供标签目录与用户技能标签接口。
type SkillsHandler struct {
	skills *skills.Service
}

func NewSkillsHandler(skillsService *skills.Service) *SkillsHandler {
	return &SkillsHandler{skills: skillsService}
}

func (h *SkillsHandler) ListTags(c *gin.Context) {
	tags, err := h.skills.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *SkillsHandler) CreateTag(c *gin.Context) {
	var req store.TagInput
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.skills.CreateTag(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *SkillsHandler) GetTag(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	tag, err := h.skills.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *SkillsHandler) UpdateTag(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req store.TagInput
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.skills.UpdateTag(c.Request.Context(), id, req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag 从目录中删除标签，连同用户与职位上的关联。
func (h *SkillsHandler) DeleteTag(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.skills.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Tag deleted"})
}

type updateSkillsRequest struct {
	TagIDs []uint `json:"tagIds" binding:"required"`
}

// UpdateSkills 把请求中尚未拥有的标签加入当前用户，返回本次新建的关联。
func (h *SkillsHandler) UpdateSkills(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateSkillsRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.skills.ReconcileTags(c.Request.Context(), userID, req.TagIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

type removeSkillRequest struct {
	ID uint `json:"id" binding:"required"`
}

// RemoveSkill 删除当前用户的一个标签；标签本就不存在时同样返回 200。
func (h *SkillsHandler) RemoveSkill(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req removeSkillRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.skills.RemoveTag(c.Request.Context(), userID, req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have deleted the tag"})
}
