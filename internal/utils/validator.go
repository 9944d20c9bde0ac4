package utils

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 使用 bcrypt 对密码进行哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword 验证密码
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// LINE userId 形如 U + 32 位十六进制；历史数据里也有其他来源的短 id，只做宽校验
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateUserID 验证 LINE userId 格式
func ValidateUserID(userID string) bool {
	return userIDPattern.MatchString(userID)
}

// ValidateRowNumber 数据行号必须越过表头（第 1 行）
func ValidateRowNumber(rowNumber int) bool {
	return rowNumber >= 2
}

// DigitsOnly 抽出字符串里的数字，电话号码模糊比对用
func DigitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
