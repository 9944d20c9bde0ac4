package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/LineDesk/config"
	"github.com/Gopher0727/LineDesk/internal/dateutil"
	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/repositories"
	"github.com/Gopher0727/LineDesk/internal/sheetstore"
	"github.com/Gopher0727/LineDesk/pkg/cache"
)

var testToday = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.Local)

func testConfig() *config.Config {
	return &config.Config{
		Sheets: config.SheetsConfig{
			MembersSheet: "Members",
			PhoneSheet:   "Sheet1",
			RiskSheet:    "Sheet2",
			LineOASheet:  "LineOA",
		},
		Cache: config.CacheConfig{MembersTTL: 60, PhoneRecordsTTL: 60, LineOATTL: 30},
	}
}

// newMemberEnv 内存存储 + 透传缓存的会员服务，时间固定在 testToday
func newMemberEnv(t *testing.T) (*MemberService, *sheetstore.MemStore) {
	t.Helper()

	store := sheetstore.NewMemStore()
	store.SetNow(func() time.Time { return testToday })
	store.Seed("Members", [][]string{
		{"userId", "plan", "status", "startAt", "expireAt", "lineName", "state", "contactPhone", "paymentMethod", "paymentTime"},
	})
	store.Seed("Sheet1", [][]string{
		{"phoneNumber", "prefix", "riskLevel", "headers", "replyToken", "params", "query", "body", "webhookUrl", "executionMode", "k", "userId", "timestamp"},
	})

	cfg := testConfig()
	c := cache.New(nil)
	members := repositories.NewMemberRepo(store, c, cfg)
	records := repositories.NewRecordRepo(store, c, cfg)

	svc := NewMemberService(members, records)
	svc.now = func() time.Time { return testToday }
	return svc, store
}

func seedMember(t *testing.T, store *sheetstore.MemStore, userID, plan, status, startAt, expireAt string) int {
	t.Helper()
	row, err := store.AppendRows(context.Background(), "Members",
		[][]string{{userID, plan, status, startAt, expireAt, "", "", "", "", ""}})
	require.NoError(t, err)
	return row
}

func days(n int) string {
	return dateutil.FormatForStore(testToday.AddDate(0, 0, n))
}

func TestTopUp_ExtendsFutureExpiry(t *testing.T) {
	svc, store := newMemberEnv(t)
	row := seedMember(t, store, "U001", "pro", "active", days(-60), days(5))

	result, err := svc.TopUp(context.Background(), row, models.Duration30Days, "")
	require.NoError(t, err)

	assert.Equal(t, days(-60), result.StartAt)
	assert.Equal(t, days(35), result.ExpireAt)
}

func TestTopUp_RestartsAfterLapse(t *testing.T) {
	svc, store := newMemberEnv(t)
	row := seedMember(t, store, "U001", "nopro", "active", days(-100), days(-10))

	result, err := svc.TopUp(context.Background(), row, models.Duration30Days, "")
	require.NoError(t, err)

	// 过期会员从今天重新起算，不从旧到期日续
	assert.Equal(t, days(30), result.ExpireAt)
}

func TestTopUp_TrialWithBlankDates(t *testing.T) {
	svc, store := newMemberEnv(t)
	row := seedMember(t, store, "U001", "", "active", "", "")

	result, err := svc.TopUp(context.Background(), row, models.DurationTrial7, "")
	require.NoError(t, err)

	assert.Equal(t, days(0), result.StartAt)
	assert.Equal(t, days(7), result.ExpireAt)
}

func TestTopUp_MalformedExpiryAnchorsToday(t *testing.T) {
	svc, store := newMemberEnv(t)
	row := seedMember(t, store, "U001", "pro", "active", days(-5), "不是日期")

	result, err := svc.TopUp(context.Background(), row, models.Duration90Days, "")
	require.NoError(t, err)
	assert.Equal(t, days(90), result.ExpireAt)
}

func TestTopUp_TrialNeverRollsBackExpiry(t *testing.T) {
	svc, store := newMemberEnv(t)
	// 到期日在远期，trial 从 startAt 起算会得到更早的日期，不允许回退
	row := seedMember(t, store, "U001", "pro", "active", days(-1), days(300))

	result, err := svc.TopUp(context.Background(), row, models.DurationTrial7, "")
	require.NoError(t, err)
	assert.Equal(t, days(300), result.ExpireAt)
}

func TestTopUp_CalendarAwareDurations(t *testing.T) {
	svc, store := newMemberEnv(t)
	row := seedMember(t, store, "U001", "pro", "active", days(-1), days(0))

	result, err := svc.TopUp(context.Background(), row, models.DurationHalfYear, "")
	require.NoError(t, err)
	assert.Equal(t, dateutil.FormatForStore(testToday.AddDate(0, 6, 0)), result.ExpireAt)
}

func TestTopUp_RowValidation(t *testing.T) {
	svc, store := newMemberEnv(t)
	row := seedMember(t, store, "U001", "pro", "active", days(0), days(10))

	_, err := svc.TopUp(context.Background(), 1, models.Duration30Days, "")
	assert.ErrorIs(t, err, ErrInvalidRowNumber)

	_, err = svc.TopUp(context.Background(), row+5, models.Duration30Days, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.TopUp(context.Background(), row, models.Duration30Days, "U999")
	assert.ErrorIs(t, err, ErrRowMismatch)
}

func TestEnsure_Idempotent(t *testing.T) {
	svc, _ := newMemberEnv(t)
	ctx := context.Background()

	first, err := svc.Ensure(ctx, "U100")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, days(0), first.Member.StartAt)
	assert.Equal(t, days(7), first.Member.ExpireAt)
	assert.True(t, first.Member.PlanIsComputed)

	second, err := svc.Ensure(ctx, "U100")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Member.RowNumber, second.Member.RowNumber)
	assert.Equal(t, "U100", second.Member.UserID)
}

func TestEnsure_InstallsPlanFormula(t *testing.T) {
	svc, store := newMemberEnv(t)
	ctx := context.Background()

	result, err := svc.Ensure(ctx, "U100")
	require.NoError(t, err)

	computed, err := store.IsCellComputed(ctx, "Members", result.Member.RowNumber, repositories.ColPlan)
	require.NoError(t, err)
	assert.True(t, computed)

	// 试用期内公式应算出 pro
	rows, err := store.ReadRange(ctx, "Members", "A2:E")
	require.NoError(t, err)
	assert.Equal(t, "pro", rows[result.Member.RowNumber-2][repositories.ColPlan])
}

func TestUpdate_ComputedPlanNeverOverwritten(t *testing.T) {
	svc, store := newMemberEnv(t)
	ctx := context.Background()

	result, err := svc.Ensure(ctx, "U100")
	require.NoError(t, err)
	row := result.Member.RowNumber

	plan := "nopro"
	status := "inactive"
	updated, err := svc.Update(ctx, row, MemberUpdate{Plan: &plan, Status: &status})
	require.NoError(t, err)

	// plan 列还是公式，状态落了下去
	computed, _ := store.IsCellComputed(ctx, "Members", row, repositories.ColPlan)
	assert.True(t, computed)
	assert.Equal(t, "inactive", updated.Status)
	assert.Equal(t, "pro", updated.Plan)
}

func TestUpdate_LiteralPlanWritesWholeSpan(t *testing.T) {
	svc, store := newMemberEnv(t)
	ctx := context.Background()
	row := seedMember(t, store, "U001", "pro", "active", days(-10), days(20))

	plan := "nopro"
	status := "inactive"
	name := "測試"
	updated, err := svc.Update(ctx, row, MemberUpdate{Plan: &plan, Status: &status, LineName: &name})
	require.NoError(t, err)

	assert.Equal(t, "nopro", updated.Plan)
	assert.Equal(t, "inactive", updated.Status)
	assert.Equal(t, "測試", updated.LineName)
	// 没提供的日期字段保持原值，不被整段写清空
	assert.Equal(t, days(-10), updated.StartAt)
	assert.Equal(t, days(20), updated.ExpireAt)
}

func TestUpdate_InvalidEnumRejected(t *testing.T) {
	svc, store := newMemberEnv(t)
	row := seedMember(t, store, "U001", "pro", "active", days(0), days(10))

	bad := "platinum"
	_, err := svc.Update(context.Background(), row, MemberUpdate{Plan: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_ShiftsRowsAndStaleNumberFails(t *testing.T) {
	svc, store := newMemberEnv(t)
	ctx := context.Background()

	rowA := seedMember(t, store, "U001", "pro", "active", days(0), days(10))
	rowB := seedMember(t, store, "U002", "pro", "active", days(0), days(10))

	require.NoError(t, svc.Delete(ctx, rowA, "U001"))

	// U002 上移占了 rowA；拿旧行号 rowB 且带预期 userId 的操作必须报错而不是改错行
	_, err := svc.TopUp(ctx, rowB, models.Duration30Days, "U002")
	assert.True(t, errors.Is(err, ErrNotFound) || errors.Is(err, ErrRowMismatch))

	// 用新行号则正常
	_, err = svc.TopUp(ctx, rowA, models.Duration30Days, "U002")
	require.NoError(t, err)
}

func TestFindByUserID_AbsenceIsNil(t *testing.T) {
	svc, store := newMemberEnv(t)
	seedMember(t, store, "U001", "pro", "active", days(0), days(10))

	found, err := svc.FindByUserID(context.Background(), "U001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "U001", found.UserID)

	missing, err := svc.FindByUserID(context.Background(), "U404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestList_DerivedDisplayFields(t *testing.T) {
	svc, store := newMemberEnv(t)
	seedMember(t, store, "U001", "pro", "active", days(-40), days(5))
	seedMember(t, store, "U002", "nopro", "active", days(-40), days(-3))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, 5, list[0].DaysLeft)
	assert.False(t, list[0].IsExpired)
	assert.Equal(t, "active", list[0].Status)

	assert.True(t, list[1].IsExpired)
	// 推导出的 expired 在展示上盖过存储的 active
	assert.Equal(t, "expired", list[1].Status)
	assert.Equal(t, -3, list[1].DaysLeft)
}
