package org

import (
	"time"

	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetQRCodes pages through the organization's QR codes.
func (h *Handler) GetQRCodes(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	codes, total, err := h.QRService.ListCodes(repository.QRCodeListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: orgID,
		Search:         c.Query("search"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, codes, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetQRCode fetches one code.
func (h *Handler) GetQRCode(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	code, err := h.QRService.GetCode(orgID, qrID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, code)
}

type createQRCodeRequest struct {
	ProductID uint   `json:"product_id"`
	Slug      string `json:"slug"`
	Label     string `json:"label"`
	TargetURL string `json:"target_url" binding:"required"`
}

// CreateQRCode registers a code with its first destination.
func (h *Handler) CreateQRCode(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	var req createQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	code, err := h.QRService.CreateCode(service.CreateCodeInput{
		OrganizationID: orgID,
		ProductID:      req.ProductID,
		Slug:           req.Slug,
		Label:          req.Label,
		TargetURL:      req.TargetURL,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, code)
}

type updateQRCodeRequest struct {
	Label    *string `json:"label"`
	IsActive *bool   `json:"is_active"`
}

// UpdateQRCode edits a code's label or active flag.
func (h *Handler) UpdateQRCode(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	var req updateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	code, err := h.QRService.UpdateCode(orgID, qrID, req.Label, req.IsActive)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, code)
}

// DeleteQRCode retires a code.
func (h *Handler) DeleteQRCode(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	if err := h.QRService.DeleteCode(orgID, qrID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetQRVersions lists a code's URL history.
func (h *Handler) GetQRVersions(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	versions, err := h.QRService.ListVersions(orgID, qrID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, versions)
}

type addVersionRequest struct {
	TargetURL string `json:"target_url" binding:"required"`
	Comment   string `json:"comment"`
}

// AddQRVersion points the code at a new destination.
func (h *Handler) AddQRVersion(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	var req addVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	version, err := h.QRService.AddVersion(orgID, qrID, req.TargetURL, req.Comment)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, version)
}

// RollbackQRVersion makes an older destination current again.
func (h *Handler) RollbackQRVersion(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	versionID, ok := shared.ParamUint(c, "version_id")
	if !ok {
		return
	}
	version, err := h.QRService.RollbackVersion(orgID, qrID, versionID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, version)
}

// GetCampaigns lists a code's scheduled overrides.
func (h *Handler) GetCampaigns(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	campaigns, err := h.QRService.ListCampaigns(orgID, qrID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, campaigns)
}

type createCampaignRequest struct {
	Name      string    `json:"name" binding:"required"`
	TargetURL string    `json:"target_url" binding:"required"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
	EndsAt    time.Time `json:"ends_at" binding:"required"`
}

// CreateCampaign schedules a destination override window.
func (h *Handler) CreateCampaign(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	campaign, err := h.QRService.CreateCampaign(orgID, qrID, service.CreateCampaignInput{
		Name:      req.Name,
		TargetURL: req.TargetURL,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, campaign)
}

type campaignStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetCampaignStatus enables or disables a campaign.
func (h *Handler) SetCampaignStatus(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	campaignID, ok := shared.ParamUint(c, "campaign_id")
	if !ok {
		return
	}
	var req campaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	campaign, err := h.QRService.SetCampaignStatus(orgID, qrID, campaignID, req.Status)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, campaign)
}

// DeleteCampaign removes a campaign.
func (h *Handler) DeleteCampaign(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	campaignID, ok := shared.ParamUint(c, "campaign_id")
	if !ok {
		return
	}
	if err := h.QRService.DeleteCampaign(orgID, qrID, campaignID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetABTests lists a code's experiments.
func (h *Handler) GetABTests(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	tests, err := h.QRService.ListABTests(orgID, qrID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, tests)
}

type abVariantRequest struct {
	Name      string `json:"name" binding:"required"`
	TargetURL string `json:"target_url" binding:"required"`
	Weight    int    `json:"weight" binding:"required"`
}

type createABTestRequest struct {
	Name     string             `json:"name" binding:"required"`
	Variants []abVariantRequest `json:"variants" binding:"required"`
}

func variantInputsFromRequest(rows []abVariantRequest) []service.ABVariantInput {
	inputs := make([]service.ABVariantInput, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, service.ABVariantInput{
			Name:      row.Name,
			TargetURL: row.TargetURL,
			Weight:    row.Weight,
		})
	}
	return inputs
}

// CreateABTest creates a draft experiment.
func (h *Handler) CreateABTest(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	var req createABTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	test, err := h.QRService.CreateABTest(orgID, qrID, req.Name, variantInputsFromRequest(req.Variants))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, test)
}

type replaceVariantsRequest struct {
	Variants []abVariantRequest `json:"variants" binding:"required"`
}

// ReplaceABVariants swaps a draft test's variant set.
func (h *Handler) ReplaceABVariants(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	testID, ok := shared.ParamUint(c, "test_id")
	if !ok {
		return
	}
	var req replaceVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	test, err := h.QRService.ReplaceABVariants(orgID, qrID, testID, variantInputsFromRequest(req.Variants))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, test)
}

// StartABTest moves a draft experiment to running.
func (h *Handler) StartABTest(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	testID, ok := shared.ParamUint(c, "test_id")
	if !ok {
		return
	}
	test, err := h.QRService.StartABTest(orgID, qrID, testID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, test)
}

// ConcludeABTest stops a running experiment.
func (h *Handler) ConcludeABTest(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	testID, ok := shared.ParamUint(c, "test_id")
	if !ok {
		return
	}
	test, err := h.QRService.ConcludeABTest(orgID, qrID, testID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, test)
}

// DeleteABTest removes a draft or concluded experiment.
func (h *Handler) DeleteABTest(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	qrID, ok := shared.ParamUint(c, "qr_id")
	if !ok {
		return
	}
	testID, ok := shared.ParamUint(c, "test_id")
	if !ok {
		return
	}
	if err := h.QRService.DeleteABTest(orgID, qrID, testID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
