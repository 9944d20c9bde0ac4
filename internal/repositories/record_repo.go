package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Gopher0727/LineDesk/config"
	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/sheetstore"
	"github.com/Gopher0727/LineDesk/pkg/cache"
)

// 电话事件日志（Sheet1）关键列
const (
	phoneColUserID    = 11 // L
	phoneColTimestamp = 12 // M
	phoneLastCol      = 47 // AV
)

// 风险名单（Sheet2）可编辑列
const (
	riskColPhone     = 0  // A
	riskColUserID    = 1  // B
	riskColRiskLevel = 11 // L
	riskColType      = 15 // P
	riskColStatus    = 25 // Z
	riskCols         = 26 // A..Z
)

const (
	phoneRecordsCacheKey = "phone-records"
	lineOACacheKey       = "line-oa"
)

// RecordRepo 事件日志、风险名单、LineOA 消息三个只追加/轻编辑数据集
type RecordRepo struct {
	store       sheetstore.RowStore
	cache       *cache.Cache
	phoneSheet  string
	riskSheet   string
	lineOASheet string
	phoneTTL    time.Duration
	lineOATTL   time.Duration
}

func NewRecordRepo(store sheetstore.RowStore, c *cache.Cache, cfg *config.Config) *RecordRepo {
	return &RecordRepo{
		store:       store,
		cache:       c,
		phoneSheet:  cfg.Sheets.PhoneSheet,
		riskSheet:   cfg.Sheets.RiskSheet,
		lineOASheet: cfg.Sheets.LineOASheet,
		phoneTTL:    time.Duration(cfg.Cache.PhoneRecordsTTL) * time.Second,
		lineOATTL:   time.Duration(cfg.Cache.LineOATTL) * time.Second,
	}
}

// PhoneRecords 读电话查询日志（带读缓存）
func (r *RecordRepo) PhoneRecords(ctx context.Context) ([]models.PhoneRecord, error) {
	var cached []models.PhoneRecord
	if hit, _ := r.cache.Get(ctx, phoneRecordsCacheKey, &cached); hit {
		return cached, nil
	}

	rows, err := r.store.ReadRange(ctx, r.phoneSheet, fmt.Sprintf("A2:%s", sheetstore.ColumnLabel(phoneLastCol)))
	if err != nil {
		return nil, fmt.Errorf("读取电话记录失败: %w", err)
	}

	records := make([]models.PhoneRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, parsePhoneRow(2+i, row))
	}

	_ = r.cache.Set(ctx, phoneRecordsCacheKey, records, r.phoneTTL)
	return records, nil
}

// EventUserIDs 只扫 L 列取事件日志里出现过的 userId（保持首次出现顺序，去重去空去两端空白）
func (r *RecordRepo) EventUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.store.ReadRange(ctx, r.phoneSheet, fmt.Sprintf("%s2:%s", sheetstore.ColumnLabel(phoneColUserID), sheetstore.ColumnLabel(phoneColUserID)))
	if err != nil {
		return nil, fmt.Errorf("读取事件 userId 失败: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(cell(row, 0))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// RiskList 读风险名单
func (r *RecordRepo) RiskList(ctx context.Context) ([]models.RiskRecord, error) {
	rows, err := r.store.ReadRange(ctx, r.riskSheet, "A2:Z")
	if err != nil {
		return nil, fmt.Errorf("读取风险名单失败: %w", err)
	}

	records := make([]models.RiskRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, parseRiskRow(2+i, row))
	}
	return records, nil
}

// RiskUpdate 风险记录的可编辑字段，nil 表示不改
type RiskUpdate struct {
	PhoneNumber *string
	UserID      *string
	Type        *string
	RiskLevel   *string
	Status      *string
}

// UpdateRisk 先读整行、覆盖指定字段、补齐到 Z 列再整行写回，避免丢掉未映射的列
func (r *RecordRepo) UpdateRisk(ctx context.Context, rowNumber int, u RiskUpdate) error {
	a1 := fmt.Sprintf("A%d:Z%d", rowNumber, rowNumber)
	rows, err := r.store.ReadRange(ctx, r.riskSheet, a1)
	if err != nil {
		return fmt.Errorf("读取风险行 %d 失败: %w", rowNumber, err)
	}

	row := make([]string, riskCols)
	if len(rows) > 0 {
		copy(row, rows[0])
	}

	if u.PhoneNumber != nil {
		row[riskColPhone] = *u.PhoneNumber
	}
	if u.UserID != nil {
		row[riskColUserID] = *u.UserID
	}
	if u.RiskLevel != nil {
		row[riskColRiskLevel] = *u.RiskLevel
	}
	if u.Type != nil {
		row[riskColType] = *u.Type
	}
	if u.Status != nil {
		row[riskColStatus] = *u.Status
	}

	if err := r.store.WriteRange(ctx, r.riskSheet, a1, [][]string{row}); err != nil {
		return fmt.Errorf("写回风险行 %d 失败: %w", rowNumber, err)
	}
	return nil
}

// DeleteRisk 物理删除风险行
func (r *RecordRepo) DeleteRisk(ctx context.Context, rowNumber int) error {
	if err := r.store.DeleteRow(ctx, r.riskSheet, rowNumber); err != nil {
		return fmt.Errorf("删除风险行 %d 失败: %w", rowNumber, err)
	}
	return nil
}

// LineOAMessages 读 LINE OA 消息（带读缓存）
func (r *RecordRepo) LineOAMessages(ctx context.Context) ([]models.LineOAMessage, error) {
	var cached []models.LineOAMessage
	if hit, _ := r.cache.Get(ctx, lineOACacheKey, &cached); hit {
		return cached, nil
	}

	rows, err := r.store.ReadRange(ctx, r.lineOASheet, "A2:F")
	if err != nil {
		return nil, fmt.Errorf("读取 LineOA 消息失败: %w", err)
	}

	msgs := make([]models.LineOAMessage, 0, len(rows))
	for i, row := range rows {
		msgs = append(msgs, models.LineOAMessage{
			RowNumber:   2 + i,
			Timestamp:   cell(row, 0),
			UserID:      cell(row, 1),
			DisplayName: cell(row, 2),
			ProfileURL:  cell(row, 3),
			MessageType: cell(row, 4),
			MessageText: cell(row, 5),
		})
	}

	_ = r.cache.Set(ctx, lineOACacheKey, msgs, r.lineOATTL)
	return msgs, nil
}

// AppendLineOA Webhook 进来的消息追加一行并失效缓存
func (r *RecordRepo) AppendLineOA(ctx context.Context, m models.LineOAMessage) error {
	row := []string{m.Timestamp, m.UserID, m.DisplayName, m.ProfileURL, m.MessageType, m.MessageText}
	if _, err := r.store.AppendRows(ctx, r.lineOASheet, [][]string{row}); err != nil {
		return fmt.Errorf("追加 LineOA 消息失败: %w", err)
	}
	_ = r.cache.Delete(ctx, lineOACacheKey)
	return nil
}

func parsePhoneRow(rowNumber int, row []string) models.PhoneRecord {
	return models.PhoneRecord{
		RowNumber:       rowNumber,
		PhoneNumber:     cell(row, 0),
		Prefix:          cell(row, 1),
		RiskLevel:       cell(row, 2),
		Headers:         cell(row, 3),
		ReplyToken:      cell(row, 4),
		Params:          cell(row, 5),
		Query:           cell(row, 6),
		Body:            cell(row, 7),
		WebhookURL:      cell(row, 8),
		ExecutionMode:   cell(row, 9),
		UserID:          cell(row, phoneColUserID),
		Timestamp:       cell(row, phoneColTimestamp),
		IsPigeon:        cell(row, 13) == "TRUE",
		PigeonPhone:     cell(row, 14),
		IsPigeonListed:  cell(row, 15) == "TRUE",
		Type:            cell(row, 16),
		Category:        cell(row, 17),
		Source:          cell(row, 18),
		OverrideBlocked: cell(row, 19) == "TRUE",
		TypeFromSheet:   cell(row, 20),
		ReplyBody:       cell(row, 21),
		DisplayName:     cell(row, 22),
		Action:          cell(row, 23),
		MemberProfile:   cell(row, 24),
		IsMember:        cell(row, 25) == "TRUE",
		Plan:            cell(row, 26),
		Status:          cell(row, 27),
		RootReplyToken:  cell(row, 28),
		RootUserID:      cell(row, 29),
		HasMemberRow:    cell(row, 30) == "TRUE",
		MemberState:     cell(row, 31),
		StartAt:         cell(row, 35),
		ExpireAt:        cell(row, 36),
		LineName:        cell(row, 37),
		ContactPhone:    cell(row, 38),
		PaymentMethod:   cell(row, 39),
		PaymentTime:     cell(row, 41),
		State:           cell(row, 45),
		ProfileURL:      cell(row, 46),
		NeedProfile:     cell(row, 47) == "TRUE",
	}
}

func parseRiskRow(rowNumber int, row []string) models.RiskRecord {
	return models.RiskRecord{
		RowNumber:       rowNumber,
		PhoneNumber:     cell(row, riskColPhone),
		UserID:          cell(row, riskColUserID),
		Timestamp:       cell(row, 2),
		Prefix:          cell(row, 10),
		RiskLevel:       cell(row, riskColRiskLevel),
		IsPigeon:        cell(row, 12) == "TRUE",
		PigeonPhone:     cell(row, 13),
		Category:        cell(row, 14),
		Type:            cell(row, riskColType),
		TypeFromSheet:   cell(row, 16),
		DisplayName:     cell(row, 17),
		MemberProfile:   cell(row, 18),
		HasMemberRow:    cell(row, 19) == "TRUE",
		Plan:            cell(row, 20),
		MemberState:     cell(row, 21),
		IsMember:        cell(row, 22) == "TRUE",
		OverrideBlocked: cell(row, 23) == "TRUE",
		HasUserID:       cell(row, 24) == "TRUE",
		Status:          cell(row, riskColStatus),
	}
}
