package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/jobs"
	"jobboard/internal/store"
)

// CompanyHandler 提供公司与职位的 JSON 接口。
type CompanyHandler struct {
	jobs *jobs.Service
}

func NewCompanyHandler(jobsService *jobs.Service) *CompanyHandler {
	return &CompanyHandler{jobs: jobsService}
}

func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.jobs.ListCompanies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	company, err := h.jobs.GetCompany(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req store.CompanyInput
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.jobs.CreateCompany(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// UpdateCompany 部分更新公司；id 不存在时返回 404。
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch store.CompanyPatch
	if !bindJSON(c, &patch) {
		return
	}
	company, err := h.jobs.UpdateCompany(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// DeleteCompany 删除公司及其职位。
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	removed, err := h.jobs.DeleteCompany(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":               id,
		"message":          "Company deleted",
		"postings_removed": removed,
	})
}

func (h *CompanyHandler) CreatePosting(c *gin.Context) {
	var req store.PostingInput
	if !bindJSON(c, &req) {
		return
	}
	posting, err := h.jobs.CreatePosting(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

func (h *CompanyHandler) GetPosting(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	posting, err := h.jobs.GetPosting(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

func (h *CompanyHandler) UpdatePosting(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch store.PostingPatch
	if !bindJSON(c, &patch) {
		return
	}
	posting, err := h.jobs.UpdatePosting(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

func (h *CompanyHandler) DeletePosting(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.jobs.DeletePosting(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Posting deleted"})
}
