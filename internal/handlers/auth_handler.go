// Package handlers gin 处理器：统一 {success, data|error} 响应壳
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/LineDesk/internal/services"
)

type AuthHandler struct {
	AuthService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求参数格式错误"})
		return
	}

	resp, err := h.AuthService.Login(req.Account, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "账号或密码错误"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "登录失败，请重试"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// RefreshRequest 刷新 token 请求
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	req := RefreshRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求参数格式错误"})
		return
	}

	token, err := h.AuthService.Refresh(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token 无法刷新"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"token": token}})
}
