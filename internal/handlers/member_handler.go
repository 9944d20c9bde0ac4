package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/repositories"
	"github.com/Gopher0727/LineDesk/internal/services"
	"github.com/Gopher0727/LineDesk/internal/utils"
)

type MemberHandler struct {
	MemberService *services.MemberService
	SyncService   *services.SyncService
}

func NewMemberHandler(memberService *services.MemberService, syncService *services.SyncService) *MemberHandler {
	return &MemberHandler{
		MemberService: memberService,
		SyncService:   syncService,
	}
}

// List 会员列表
// ?userId= 单查；?sync=true 先同步对账再返回；普通列表触发一次后台对账
func (h *MemberHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if userID := c.Query("userId"); userID != "" {
		member, err := h.MemberService.FindByUserID(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		// 查无此人不是错误，data 为 null
		c.JSON(http.StatusOK, gin.H{"success": true, "data": member})
		return
	}

	if c.Query("sync") == "true" {
		syncResult, err := h.SyncService.Reconcile(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		members, err := h.MemberService.List(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": members, "sync": syncResult})
		return
	}

	members, err := h.MemberService.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	// 尽力而为的后台对账，不挡住本次响应
	h.SyncService.ReconcileAsync()

	c.JSON(http.StatusOK, gin.H{"success": true, "data": members})
}

// UpdateRequest 会员编辑请求；UserID 给了就做行号-用户校验
type UpdateRequest struct {
	Plan     *string `json:"plan"`
	Status   *string `json:"status"`
	LineName *string `json:"lineName"`
	StartAt  *string `json:"startAt"`
	ExpireAt *string `json:"expireAt"`
	UserID   string  `json:"userId"`
}

func (h *MemberHandler) Update(c *gin.Context) {
	rowNumber, ok := rowParam(c)
	if !ok {
		return
	}

	req := UpdateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求参数格式错误"})
		return
	}

	member, err := h.MemberService.Update(c.Request.Context(), rowNumber, services.MemberUpdate{
		Plan:           req.Plan,
		Status:         req.Status,
		LineName:       req.LineName,
		StartAt:        req.StartAt,
		ExpireAt:       req.ExpireAt,
		ExpectedUserID: req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": member})
}

// TopUpRequest 加值请求
type TopUpRequest struct {
	Option string `json:"option" binding:"required"`
	UserID string `json:"userId"`
}

func (h *MemberHandler) TopUp(c *gin.Context) {
	rowNumber, ok := rowParam(c)
	if !ok {
		return
	}

	req := TopUpRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求参数格式错误"})
		return
	}

	option, err := models.ParseDurationOption(req.Option)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的加值选项"})
		return
	}

	result, err := h.MemberService.TopUp(c.Request.Context(), rowNumber, option, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// EnsureRequest 建档请求
type EnsureRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *MemberHandler) Ensure(c *gin.Context) {
	req := EnsureRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求参数格式错误"})
		return
	}
	if !utils.ValidateUserID(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的 userId"})
		return
	}

	result, err := h.MemberService.Ensure(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "data": result})
}

// Sync 手动触发同步对账
func (h *MemberHandler) Sync(c *gin.Context) {
	result, err := h.SyncService.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Delete 删除会员行；?userId= 给了就校验行上的 userId
func (h *MemberHandler) Delete(c *gin.Context) {
	rowNumber, ok := rowParam(c)
	if !ok {
		return
	}

	if err := h.MemberService.Delete(c.Request.Context(), rowNumber, c.Query("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"rowNumber": rowNumber}})
}

// rowParam 解析 :row 路径参数，失败时直接写 400
func rowParam(c *gin.Context) (int, bool) {
	rowNumber, err := strconv.Atoi(c.Param("row"))
	if err != nil || rowNumber < repositories.MemberFirstDataRow {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的行号"})
		return 0, false
	}
	return rowNumber, true
}

// respondError 业务错误 → 状态码映射
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "记录不存在"})
	case errors.Is(err, services.ErrRowMismatch):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "行号已失效，请刷新后重试"})
	case errors.Is(err, services.ErrInvalidRowNumber), errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidDurationOption):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的请求参数"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "操作失败，请重试"})
	}
}
