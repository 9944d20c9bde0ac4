package services

import (
	"github.com/Gopher0727/LineDesk/config"
	"github.com/Gopher0727/LineDesk/internal/utils"
	"github.com/Gopher0727/LineDesk/middleware/jwt"
)

// AuthService 管理端登录：配置里的单一管理员账号 + bcrypt 密码哈希
type AuthService struct {
	cfg          *config.AuthConfig
	tokenManager *jwt.TokenManager
}

func NewAuthService(cfg *config.AuthConfig, tm *jwt.TokenManager) *AuthService {
	return &AuthService{cfg: cfg, tokenManager: tm}
}

// LoginResponse 登录响应
type LoginResponse struct {
	Account string `json:"account"`
	Token   string `json:"token"`
}

// Login 校验账号密码并签发 JWT
func (s *AuthService) Login(account, password string) (*LoginResponse, error) {
	if account != s.cfg.Admin || !utils.CheckPassword(s.cfg.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateToken(account)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Account: account, Token: token}, nil
}

// Refresh 用仍在刷新窗口内的旧 token 换新 token
func (s *AuthService) Refresh(token string) (string, error) {
	return s.tokenManager.RefreshToken(token)
}
