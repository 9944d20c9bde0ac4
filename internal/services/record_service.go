package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Gopher0727/LineDesk/internal/dateutil"
	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/repositories"
	"github.com/Gopher0727/LineDesk/internal/utils"
)

// RecordService 事件日志 / 风险名单 / LineOA 消息的查询与轻编辑
type RecordService struct {
	records *repositories.RecordRepo
	members *repositories.MemberRepo
}

func NewRecordService(records *repositories.RecordRepo, members *repositories.MemberRepo) *RecordService {
	return &RecordService{records: records, members: members}
}

// PhoneRecordFilter 电话记录查询条件
type PhoneRecordFilter struct {
	Phone  string // 模糊比对：两边都只留数字后做包含
	UserID string // 精确比对
}

func (s *RecordService) PhoneRecords(ctx context.Context, f PhoneRecordFilter) ([]models.PhoneRecord, error) {
	records, err := s.records.PhoneRecords(ctx)
	if err != nil {
		return nil, err
	}

	if f.Phone == "" && f.UserID == "" {
		return records, nil
	}

	wantDigits := utils.DigitsOnly(f.Phone)
	out := make([]models.PhoneRecord, 0, len(records))
	for _, r := range records {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if wantDigits != "" && !strings.Contains(utils.DigitsOnly(r.PhoneNumber), wantDigits) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// RiskFilter 风险名单查询条件
type RiskFilter struct {
	Type        string
	PhoneNumber string
}

func (s *RecordService) RiskList(ctx context.Context, f RiskFilter) ([]models.RiskRecord, error) {
	records, err := s.records.RiskList(ctx)
	if err != nil {
		return nil, err
	}

	if f.Type == "" && f.PhoneNumber == "" {
		return records, nil
	}

	out := make([]models.RiskRecord, 0, len(records))
	for _, r := range records {
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.PhoneNumber != "" && r.PhoneNumber != f.PhoneNumber {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *RecordService) UpdateRisk(ctx context.Context, rowNumber int, u repositories.RiskUpdate) error {
	if !utils.ValidateRowNumber(rowNumber) {
		return fmt.Errorf("%w: %d", ErrInvalidRowNumber, rowNumber)
	}
	return s.records.UpdateRisk(ctx, rowNumber, u)
}

func (s *RecordService) DeleteRisk(ctx context.Context, rowNumber int) error {
	if !utils.ValidateRowNumber(rowNumber) {
		return fmt.Errorf("%w: %d", ErrInvalidRowNumber, rowNumber)
	}
	return s.records.DeleteRisk(ctx, rowNumber)
}

func (s *RecordService) LineOAMessages(ctx context.Context) ([]models.LineOAMessage, error) {
	return s.records.LineOAMessages(ctx)
}

// AppendLineOAMessage Webhook 收到的消息落表
func (s *RecordService) AppendLineOAMessage(ctx context.Context, m models.LineOAMessage) error {
	return s.records.AppendLineOA(ctx, m)
}

// Stats 仪表盘统计
type Stats struct {
	TotalRecords       int `json:"totalRecords"`
	TotalMembers       int `json:"totalMembers"`
	HighRiskRecords    int `json:"highRiskRecords"`
	MediumRiskRecords  int `json:"mediumRiskRecords"`
	LowRiskRecords     int `json:"lowRiskRecords"`
	ActiveMembers      int `json:"activeMembers"`
	ProMembers         int `json:"proMembers"`
	PigeonRecords      int `json:"pigeonRecords"`
	RecordsWithMembers int `json:"recordsWithMembers"`
}

func (s *RecordService) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.records.PhoneRecords(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.members.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalRecords: len(records),
		TotalMembers: len(members),
	}
	for _, r := range records {
		switch r.RiskLevel {
		case "high":
			stats.HighRiskRecords++
		case "medium":
			stats.MediumRiskRecords++
		case "low":
			stats.LowRiskRecords++
		}
		if r.IsPigeon {
			stats.PigeonRecords++
		}
		if r.IsMember {
			stats.RecordsWithMembers++
		}
	}
	for _, m := range members {
		if m.Status == string(models.StatusActive) {
			stats.ActiveMembers++
		}
		if m.Plan == string(models.PlanPro) {
			stats.ProMembers++
		}
	}
	return stats, nil
}

// RecentPage 最近数据的一页
type RecentPage struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}

// RecentRecords 按 timestamp 降序取最新的电话记录，没有时间戳的不参与
func (s *RecordService) RecentRecords(ctx context.Context, limit int) (*RecentPage, error) {
	records, err := s.records.PhoneRecords(ctx)
	if err != nil {
		return nil, err
	}

	withTime := make([]models.PhoneRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Timestamp) != "" {
			withTime = append(withTime, r)
		}
	}
	// 解析不了的时间戳排在最后
	sort.SliceStable(withTime, func(i, j int) bool {
		ti, oki := dateutil.ParseFlexible(withTime[i].Timestamp)
		tj, okj := dateutil.ParseFlexible(withTime[j].Timestamp)
		if !oki {
			return false
		}
		if !okj {
			return true
		}
		return ti.After(tj)
	})

	total := len(withTime)
	if limit > 0 && limit < total {
		withTime = withTime[:limit]
	}
	return &RecentPage{Data: withTime, Total: total}, nil
}

// RecentMembers 按 startAt 降序取最新加入的会员
func (s *RecordService) RecentMembers(ctx context.Context, limit int) (*RecentPage, error) {
	members, err := s.members.All(ctx)
	if err != nil {
		return nil, err
	}

	withStart := make([]models.MemberRecord, 0, len(members))
	for _, m := range members {
		if strings.TrimSpace(m.StartAt) != "" {
			withStart = append(withStart, m)
		}
	}
	sort.SliceStable(withStart, func(i, j int) bool {
		ti, oki := dateutil.ParseFlexible(withStart[i].StartAt)
		tj, okj := dateutil.ParseFlexible(withStart[j].StartAt)
		if !oki {
			return false
		}
		if !okj {
			return true
		}
		return ti.After(tj)
	})

	total := len(withStart)
	if limit > 0 && limit < total {
		withStart = withStart[:limit]
	}
	return &RecentPage{Data: withStart, Total: total}, nil
}
