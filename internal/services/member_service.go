package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Gopher0727/LineDesk/internal/dateutil"
	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/repositories"
)

// MemberService 会员引擎：查找 / 建档 / 加值 / 编辑 / 删除
//
// 行号只是临时定位符。所有写操作先重读目标行，调用方给了预期 userId 而
// 行上对不上时返回 ErrRowMismatch，宁可报错也不改错行。
type MemberService struct {
	members *repositories.MemberRepo
	records *repositories.RecordRepo
	now     func() time.Time
}

func NewMemberService(members *repositories.MemberRepo, records *repositories.RecordRepo) *MemberService {
	return &MemberService{
		members: members,
		records: records,
		now:     time.Now,
	}
}

// MemberDTO 给管理端的会员视图
// daysLeft / isExpired 读取时按 expireAt 推导；status 以推导出的 expired 优先
type MemberDTO struct {
	models.MemberRecord
	DaysLeft    int    `json:"daysLeft"`
	IsExpired   bool   `json:"isExpired"`
	DisplayName string `json:"displayName"`
	ProfileURL  string `json:"profileUrl"`
}

// TopUpResult 加值确认
type TopUpResult struct {
	StartAt  string `json:"startAt"`
	ExpireAt string `json:"expireAt"`
}

// EnsureResult 建档结果
type EnsureResult struct {
	Created bool                `json:"created"`
	Member  models.MemberRecord `json:"member"`
}

// MemberUpdate 编辑请求，nil 字段不改
type MemberUpdate struct {
	Plan     *string
	Status   *string
	LineName *string
	StartAt  *string
	ExpireAt *string
	// ExpectedUserID 非空时先校验行上的 userId
	ExpectedUserID string
}

// List 全量会员列表，叠加展示字段并从电话记录回填头像和显示名
func (s *MemberService) List(ctx context.Context) ([]MemberDTO, error) {
	members, err := s.members.All(ctx)
	if err != nil {
		return nil, err
	}

	// 头像回填是尽力而为，电话记录读不到不影响列表
	profiles := map[string][2]string{}
	if records, recErr := s.records.PhoneRecords(ctx); recErr == nil {
		for _, r := range records {
			if r.UserID == "" {
				continue
			}
			if _, ok := profiles[r.UserID]; !ok {
				profiles[r.UserID] = [2]string{r.DisplayName, r.ProfileURL}
			}
		}
	}

	out := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dto := s.decorate(m)
		if p, ok := profiles[m.UserID]; ok {
			if p[0] != "" {
				dto.DisplayName = p[0]
			}
			dto.ProfileURL = p[1]
		}
		out = append(out, dto)
	}
	return out, nil
}

// FindByUserID 线性扫描找会员，不存在返回 nil（absence 是合法结果，不算错误）
func (s *MemberService) FindByUserID(ctx context.Context, userID string) (*MemberDTO, error) {
	members, err := s.members.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID == userID {
			dto := s.decorate(m)
			return &dto, nil
		}
	}
	return nil, nil
}

// Ensure 幂等建档：不存在则以 7 天试用建一行并装 plan 公式，存在则原样返回
func (s *MemberService) Ensure(ctx context.Context, userID string) (*EnsureResult, error) {
	members, err := s.members.AllFresh(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID == userID {
			return &EnsureResult{Created: false, Member: m}, nil
		}
	}

	today := s.now()
	startAt := dateutil.FormatForStore(today)
	expireAt := dateutil.FormatForStore(dateutil.AddDuration(today, models.DurationTrial7))

	row := newMemberRow(userID, startAt, expireAt)
	rowNumber, err := s.members.Append(ctx, [][]string{row})
	if err != nil {
		return nil, err
	}
	if err := s.members.InstallPlanFormula(ctx, rowNumber); err != nil {
		return nil, err
	}

	return &EnsureResult{
		Created: true,
		Member: models.MemberRecord{
			RowNumber:      rowNumber,
			UserID:         userID,
			PlanIsComputed: true,
			Status:         string(models.StatusActive),
			StartAt:        startAt,
			ExpireAt:       expireAt,
		},
	}, nil
}

// TopUp 加值
//
// 锚点规则：trial7days 永远从 startAt 起算（试用是重置不是延长）；
// 其他选项在 expireAt 尚未过期时从 expireAt 延长，否则从今天重新起算。
// 无论选了什么，写回的 expireAt 不会比写回前的有效值更早。
func (s *MemberService) TopUp(ctx context.Context, rowNumber int, option models.DurationOption, expectedUserID string) (*TopUpResult, error) {
	row, err := s.revalidate(ctx, rowNumber, expectedUserID)
	if err != nil {
		return nil, err
	}

	today := dateutil.Midnight(s.now())

	startAt := row.StartAt
	if startAt == "" {
		startAt = dateutil.FormatForStore(today)
	}

	var anchor time.Time
	switch {
	case option == models.DurationTrial7:
		if d, ok := dateutil.ParseFlexible(startAt); ok {
			anchor = d
		} else {
			anchor = today
		}
	default:
		if d, ok := dateutil.ParseFlexible(row.ExpireAt); ok && !dateutil.IsExpired(d, today) {
			anchor = d
		} else {
			// 过期、空白或坏数据都从今天重新起算
			anchor = today
		}
	}

	newExpire := dateutil.AddDuration(anchor, option)
	if cur, ok := dateutil.ParseFlexible(row.ExpireAt); ok && dateutil.Midnight(newExpire).Before(dateutil.Midnight(cur)) {
		// 加值只会往后推，不回退已有的到期日
		newExpire = cur
	}

	expireAt := dateutil.FormatForStore(newExpire)
	if err := s.members.WriteDates(ctx, rowNumber, startAt, expireAt); err != nil {
		return nil, err
	}
	return &TopUpResult{StartAt: startAt, ExpireAt: expireAt}, nil
}

// Update 编辑会员
//
// plan 是公式时绝不覆写 B 列：只落 status 和调用方给出的日期/名字单格。
// plan 是字面量时整段写 B:F，未给的字段用行上现值补齐，避免局部更新清空日期。
func (s *MemberService) Update(ctx context.Context, rowNumber int, u MemberUpdate) (*models.MemberRecord, error) {
	if u.Plan != nil {
		if _, err := models.ParsePlan(*u.Plan); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if u.Status != nil {
		if _, err := models.ParseStatus(*u.Status); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	row, err := s.revalidate(ctx, rowNumber, u.ExpectedUserID)
	if err != nil {
		return nil, err
	}

	if row.PlanIsComputed {
		if u.Status != nil {
			if err := s.members.WriteCell(ctx, rowNumber, repositories.ColStatus, *u.Status); err != nil {
				return nil, err
			}
		}
		if u.StartAt != nil {
			if err := s.members.WriteCell(ctx, rowNumber, repositories.ColStartAt, *u.StartAt); err != nil {
				return nil, err
			}
		}
		if u.ExpireAt != nil {
			if err := s.members.WriteCell(ctx, rowNumber, repositories.ColExpireAt, *u.ExpireAt); err != nil {
				return nil, err
			}
		}
		if u.LineName != nil {
			if err := s.members.WriteCell(ctx, rowNumber, repositories.ColLineName, *u.LineName); err != nil {
				return nil, err
			}
		}
	} else {
		span := []string{
			pick(u.Plan, row.Plan),
			pick(u.Status, row.Status),
			pick(u.StartAt, row.StartAt),
			pick(u.ExpireAt, row.ExpireAt),
			pick(u.LineName, row.LineName),
		}
		if err := s.members.WriteSpan(ctx, rowNumber, repositories.ColPlan, span); err != nil {
			return nil, err
		}
	}

	return s.members.Row(ctx, rowNumber)
}

// Delete 物理删行；之后同表更大的行号全部失效
func (s *MemberService) Delete(ctx context.Context, rowNumber int, expectedUserID string) error {
	if _, err := s.revalidate(ctx, rowNumber, expectedUserID); err != nil {
		return err
	}
	return s.members.Delete(ctx, rowNumber)
}

// revalidate 重读目标行：不存在 → ErrNotFound；userId 对不上 → ErrRowMismatch
func (s *MemberService) revalidate(ctx context.Context, rowNumber int, expectedUserID string) (*models.MemberRecord, error) {
	if rowNumber < repositories.MemberFirstDataRow {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRowNumber, rowNumber)
	}
	row, err := s.members.Row(ctx, rowNumber)
	if err != nil {
		return nil, err
	}
	if row == nil || row.UserID == "" {
		return nil, fmt.Errorf("%w: 行 %d", ErrNotFound, rowNumber)
	}
	if expectedUserID != "" && row.UserID != expectedUserID {
		return nil, fmt.Errorf("%w: 行 %d 上是 %s", ErrRowMismatch, rowNumber, row.UserID)
	}
	return row, nil
}

func (s *MemberService) decorate(m models.MemberRecord) MemberDTO {
	dto := MemberDTO{MemberRecord: m, DisplayName: m.LineName, DaysLeft: 0}
	if d, ok := dateutil.ParseFlexible(m.ExpireAt); ok {
		dto.DaysLeft = dateutil.DaysUntil(d, s.now())
		dto.IsExpired = dateutil.IsExpired(d, s.now())
		if dto.IsExpired {
			dto.Status = string(models.StatusExpired)
		}
	}
	return dto
}

// newMemberRow 新会员行（A..J，试用期建档）
func newMemberRow(userID, startAt, expireAt string) []string {
	row := make([]string, repositories.MemberCols)
	row[repositories.ColUserID] = userID
	row[repositories.ColStatus] = string(models.StatusActive)
	row[repositories.ColStartAt] = startAt
	row[repositories.ColExpireAt] = expireAt
	return row
}

func pick(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}
