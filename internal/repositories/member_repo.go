// Package repositories 封装各工作表的列映射与读缓存。
//
// 行号是物理行号（表头占第 1 行，数据从第 2 行起），删行后会整体前移，
// 上层拿到的行号只在读到写的窗口内有效。
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Gopher0727/LineDesk/config"
	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/sheetstore"
	"github.com/Gopher0727/LineDesk/pkg/cache"
)

// Members 工作表列映射（0-based）
const (
	ColUserID        = 0 // A
	ColPlan          = 1 // B，可能是公式
	ColStatus        = 2 // C
	ColStartAt       = 3 // D
	ColExpireAt      = 4 // E
	ColLineName      = 5 // F
	ColState         = 6 // G
	ColContactPhone  = 7 // H
	ColPaymentMethod = 8 // I
	ColPaymentTime   = 9 // J

	MemberCols         = 10
	MemberFirstDataRow = 2
)

const membersCacheKey = "members"

type MemberRepo struct {
	store sheetstore.RowStore
	cache *cache.Cache
	sheet string
	ttl   time.Duration
}

func NewMemberRepo(store sheetstore.RowStore, c *cache.Cache, cfg *config.Config) *MemberRepo {
	return &MemberRepo{
		store: store,
		cache: c,
		sheet: cfg.Sheets.MembersSheet,
		ttl:   time.Duration(cfg.Cache.MembersTTL) * time.Second,
	}
}

// All 读全表，走读缓存（展示路径用，plan 列的公式属性不探测）
func (r *MemberRepo) All(ctx context.Context) ([]models.MemberRecord, error) {
	var cached []models.MemberRecord
	if hit, _ := r.cache.Get(ctx, membersCacheKey, &cached); hit {
		return cached, nil
	}

	members, err := r.AllFresh(ctx)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, membersCacheKey, members, r.ttl)
	return members, nil
}

// AllFresh 绕过缓存读全表，写路径定位行号必须用这个
func (r *MemberRepo) AllFresh(ctx context.Context) ([]models.MemberRecord, error) {
	rows, err := r.store.ReadRange(ctx, r.sheet, fmt.Sprintf("A%d:%s", MemberFirstDataRow, sheetstore.ColumnLabel(ColPaymentTime)))
	if err != nil {
		return nil, fmt.Errorf("读取会员表失败: %w", err)
	}

	members := make([]models.MemberRecord, 0, len(rows))
	for i, row := range rows {
		members = append(members, parseMemberRow(MemberFirstDataRow+i, row))
	}
	return members, nil
}

// Row 读单行并探测 plan 列是否为公式；行不存在（或已被删导致越界）返回 nil
func (r *MemberRepo) Row(ctx context.Context, rowNumber int) (*models.MemberRecord, error) {
	a1 := fmt.Sprintf("A%d:%s%d", rowNumber, sheetstore.ColumnLabel(ColPaymentTime), rowNumber)
	rows, err := r.store.ReadRange(ctx, r.sheet, a1)
	if err != nil {
		return nil, fmt.Errorf("读取会员行 %d 失败: %w", rowNumber, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil
	}

	m := parseMemberRow(rowNumber, rows[0])

	computed, err := r.store.IsCellComputed(ctx, r.sheet, rowNumber, ColPlan)
	if err != nil {
		return nil, fmt.Errorf("探测 plan 公式失败: %w", err)
	}
	m.PlanIsComputed = computed
	return &m, nil
}

// ReadDates 只读某行的 startAt / expireAt
func (r *MemberRepo) ReadDates(ctx context.Context, rowNumber int) (startAt, expireAt string, err error) {
	a1 := fmt.Sprintf("D%d:E%d", rowNumber, rowNumber)
	rows, readErr := r.store.ReadRange(ctx, r.sheet, a1)
	if readErr != nil {
		return "", "", fmt.Errorf("读取日期失败: %w", readErr)
	}
	if len(rows) > 0 {
		startAt = cell(rows[0], 0)
		expireAt = cell(rows[0], 1)
	}
	return startAt, expireAt, nil
}

// WriteDates 一次写回 startAt + expireAt（加值路径，两格一起落）
func (r *MemberRepo) WriteDates(ctx context.Context, rowNumber int, startAt, expireAt string) error {
	a1 := fmt.Sprintf("D%d:E%d", rowNumber, rowNumber)
	if err := r.store.WriteRange(ctx, r.sheet, a1, [][]string{{startAt, expireAt}}); err != nil {
		return fmt.Errorf("写回日期失败: %w", err)
	}
	r.invalidate(ctx)
	return nil
}

// WriteCell 写单格
func (r *MemberRepo) WriteCell(ctx context.Context, rowNumber, columnIndex int, value string) error {
	a1 := fmt.Sprintf("%s%d", sheetstore.ColumnLabel(columnIndex), rowNumber)
	if err := r.store.WriteRange(ctx, r.sheet, a1, [][]string{{value}}); err != nil {
		return fmt.Errorf("写单元格 %s 失败: %w", a1, err)
	}
	r.invalidate(ctx)
	return nil
}

// WriteSpan 从 startCol 起连续写一段（values 按列序排列）
func (r *MemberRepo) WriteSpan(ctx context.Context, rowNumber, startCol int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	a1 := fmt.Sprintf("%s%d:%s%d",
		sheetstore.ColumnLabel(startCol), rowNumber,
		sheetstore.ColumnLabel(startCol+len(values)-1), rowNumber)
	if err := r.store.WriteRange(ctx, r.sheet, a1, [][]string{values}); err != nil {
		return fmt.Errorf("写区间 %s 失败: %w", a1, err)
	}
	r.invalidate(ctx)
	return nil
}

// Append 批量追加会员行，返回首个新行号
func (r *MemberRepo) Append(ctx context.Context, rows [][]string) (int, error) {
	first, err := r.store.AppendRows(ctx, r.sheet, rows)
	if err != nil {
		return 0, fmt.Errorf("追加会员行失败: %w", err)
	}
	r.invalidate(ctx)
	return first, nil
}

// PlanFormula 指定行的 plan 推导公式
func PlanFormula(rowNumber int) string {
	return fmt.Sprintf(`=IF(D%d="","",IF(E%d<TODAY(),"nopro","pro"))`, rowNumber, rowNumber)
}

// InstallPlanFormula 在 plan 列装公式（建档后调用）
func (r *MemberRepo) InstallPlanFormula(ctx context.Context, rowNumber int) error {
	if err := r.store.SetCellFormula(ctx, r.sheet, rowNumber, ColPlan, PlanFormula(rowNumber)); err != nil {
		return fmt.Errorf("安装 plan 公式失败: %w", err)
	}
	r.invalidate(ctx)
	return nil
}

// Delete 物理删行，之后的行号全部前移
func (r *MemberRepo) Delete(ctx context.Context, rowNumber int) error {
	if err := r.store.DeleteRow(ctx, r.sheet, rowNumber); err != nil {
		return fmt.Errorf("删除会员行 %d 失败: %w", rowNumber, err)
	}
	r.invalidate(ctx)
	return nil
}

func (r *MemberRepo) invalidate(ctx context.Context) {
	_ = r.cache.Delete(ctx, membersCacheKey)
}

func parseMemberRow(rowNumber int, row []string) models.MemberRecord {
	return models.MemberRecord{
		RowNumber:     rowNumber,
		UserID:        cell(row, ColUserID),
		Plan:          cell(row, ColPlan),
		Status:        cell(row, ColStatus),
		StartAt:       cell(row, ColStartAt),
		ExpireAt:      cell(row, ColExpireAt),
		LineName:      cell(row, ColLineName),
		State:         cell(row, ColState),
		ContactPhone:  cell(row, ColContactPhone),
		PaymentMethod: cell(row, ColPaymentMethod),
		PaymentTime:   cell(row, ColPaymentTime),
	}
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return row[index]
}
