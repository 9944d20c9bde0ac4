package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/LineDesk/internal/repositories"
	"github.com/Gopher0727/LineDesk/internal/services"
)

type RecordHandler struct {
	RecordService *services.RecordService
	SyncService   *services.SyncService
}

func NewRecordHandler(recordService *services.RecordService, syncService *services.SyncService) *RecordHandler {
	return &RecordHandler{
		RecordService: recordService,
		SyncService:   syncService,
	}
}

// PhoneRecords 电话查询日志
// ?phone= 号码模糊比对（两边只留数字）；?userId= 精确比对；全量拉取顺带触发后台对账
func (h *RecordHandler) PhoneRecords(c *gin.Context) {
	filter := services.PhoneRecordFilter{
		Phone:  c.Query("phone"),
		UserID: c.Query("userId"),
	}

	records, err := h.RecordService.PhoneRecords(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	if filter.Phone == "" && filter.UserID == "" {
		h.SyncService.ReconcileAsync()
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "total": len(records)})
}

// RiskList 风险名单；?type= / ?phoneNumber= 过滤
func (h *RecordHandler) RiskList(c *gin.Context) {
	records, err := h.RecordService.RiskList(c.Request.Context(), services.RiskFilter{
		Type:        c.Query("type"),
		PhoneNumber: c.Query("phoneNumber"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "total": len(records)})
}

// RiskUpdateRequest 风险记录编辑请求，只动给了的字段
type RiskUpdateRequest struct {
	PhoneNumber *string `json:"phoneNumber"`
	UserID      *string `json:"userId"`
	Type        *string `json:"type"`
	RiskLevel   *string `json:"riskLevel"`
	Status      *string `json:"status"`
}

func (h *RecordHandler) UpdateRisk(c *gin.Context) {
	rowNumber, ok := rowParam(c)
	if !ok {
		return
	}

	req := RiskUpdateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求参数格式错误"})
		return
	}

	err := h.RecordService.UpdateRisk(c.Request.Context(), rowNumber, repositories.RiskUpdate{
		PhoneNumber: req.PhoneNumber,
		UserID:      req.UserID,
		Type:        req.Type,
		RiskLevel:   req.RiskLevel,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"rowNumber": rowNumber}})
}

func (h *RecordHandler) DeleteRisk(c *gin.Context) {
	rowNumber, ok := rowParam(c)
	if !ok {
		return
	}

	if err := h.RecordService.DeleteRisk(c.Request.Context(), rowNumber); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"rowNumber": rowNumber}})
}

// LineOA LINE 官方账号消息列表
func (h *RecordHandler) LineOA(c *gin.Context) {
	msgs, err := h.RecordService.LineOAMessages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": msgs, "total": len(msgs)})
}

// Stats 仪表盘统计
func (h *RecordHandler) Stats(c *gin.Context) {
	stats, err := h.RecordService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// RecentData 最新数据；?type=records|members&limit=N
func (h *RecordHandler) RecentData(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var (
		page *services.RecentPage
		err  error
	)
	switch c.Query("type") {
	case "records":
		page, err = h.RecordService.RecentRecords(c.Request.Context(), limit)
	case "members":
		page, err = h.RecordService.RecentMembers(c.Request.Context(), limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的类型参数，请使用 records 或 members"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": page.Data, "total": page.Total})
}
