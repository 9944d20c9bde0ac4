package models

import (
	"errors"
	"fmt"
)

// Plan 会员方案
// 表格 B 列；可能由公式计算（PlanIsComputed 为 true 时引擎不得覆写）
type Plan string

const (
	PlanPro   Plan = "pro"
	PlanNoPro Plan = "nopro"
)

// ParsePlan 校验外部输入的方案值
func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case PlanPro, PlanNoPro:
		return Plan(s), nil
	}
	return "", fmt.Errorf("invalid plan %q", s)
}

// Status 会员状态（C 列存储值）
// expired 也可在读取时由 expireAt 推导，推导值在展示上优先于存储值
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusExpired:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// DurationOption 加值时长选项
type DurationOption string

const (
	Duration30Days   DurationOption = "30days"
	Duration90Days   DurationOption = "90days"
	DurationHalfYear DurationOption = "halfyear"
	DurationOneYear  DurationOption = "oneyear"
	DurationTrial7   DurationOption = "trial7days"
)

var ErrInvalidDurationOption = errors.New("invalid duration option")

func ParseDurationOption(s string) (DurationOption, error) {
	switch DurationOption(s) {
	case Duration30Days, Duration90Days, DurationHalfYear, DurationOneYear, DurationTrial7:
		return DurationOption(s), nil
	}
	return "", ErrInvalidDurationOption
}

// MemberRecord 会员表一行
// RowNumber 是带表头偏移的 1-based 物理行号，删除任意一行后其后所有行号失效，
// 只能当作临时定位符使用，不是持久主键。
type MemberRecord struct {
	RowNumber      int    `json:"rowNumber"`
	UserID         string `json:"userId"`
	Plan           string `json:"plan"`
	PlanIsComputed bool   `json:"planIsComputed"`
	Status         string `json:"status"`
	StartAt        string `json:"startAt"`
	ExpireAt       string `json:"expireAt"`
	LineName       string `json:"lineName"`
	State          string `json:"state"`
	ContactPhone   string `json:"contactPhone"`
	PaymentMethod  string `json:"paymentMethod"`
	PaymentTime    string `json:"paymentTime"`
}
