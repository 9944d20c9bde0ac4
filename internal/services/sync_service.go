package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/LineDesk/internal/dateutil"
	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/repositories"
	"github.com/Gopher0727/LineDesk/internal/utils"
	logger "github.com/Gopher0727/LineDesk/middleware/log"
)

// SyncService 事件日志 → 会员表的对账
//
// 对账自身用互斥锁串行化：重复触发是常态（列表页每次都会触发一次后台对账），
// 两个对账并发跑会把同一批缺失 userId 各建一行。
type SyncService struct {
	members *repositories.MemberRepo
	records *repositories.RecordRepo
	pool    *utils.WorkerPool
	log     *logger.Logger
	now     func() time.Time

	mu sync.Mutex
}

// SyncResult 对账统计
type SyncResult struct {
	Created        int      `json:"created"`
	Existing       int      `json:"existing"`
	CreatedUserIDs []string `json:"createdUserIds"`
}

func NewSyncService(members *repositories.MemberRepo, records *repositories.RecordRepo, pool *utils.WorkerPool, log *logger.Logger) *SyncService {
	return &SyncService{
		members: members,
		records: records,
		pool:    pool,
		log:     log,
		now:     time.Now,
	}
}

// Reconcile 扫事件日志里的 userId，补建缺失的会员行
//
// 新行批量追加一次，然后逐行装 plan 公式（公式引用该行自己的日期单元格）。
// 幂等：再跑一遍没有新增。
func (s *SyncService) Reconcile(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.records.EventUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.members.AllFresh(ctx)
	if err != nil {
		return nil, err
	}
	// 表格里手填的 userId 可能带两端空白，比对前先修剪，避免给同一身份建第二行
	existing := make(map[string]struct{}, len(members))
	for _, m := range members {
		existing[strings.TrimSpace(m.UserID)] = struct{}{}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}

	result := &SyncResult{
		Created:        len(missing),
		Existing:       len(ids) - len(missing),
		CreatedUserIDs: missing,
	}
	if len(missing) == 0 {
		return result, nil
	}

	today := s.now()
	startAt := dateutil.FormatForStore(today)
	expireAt := dateutil.FormatForStore(dateutil.AddDuration(today, models.DurationTrial7))

	rows := make([][]string, 0, len(missing))
	for _, id := range missing {
		rows = append(rows, newMemberRow(id, startAt, expireAt))
	}

	first, err := s.members.Append(ctx, rows)
	if err != nil {
		return nil, err
	}
	for i := range missing {
		if err := s.members.InstallPlanFormula(ctx, first+i); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ReconcileAsync 后台尽力而为地对账：不阻塞调用方，错误只进日志
// 队列满时直接丢弃本次触发，下一次列表请求还会再触发。
func (s *SyncService) ReconcileAsync() {
	submitted := s.pool.TrySubmit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if result, err := s.Reconcile(ctx); err != nil {
			s.log.Error("后台对账失败", zap.Error(err))
		} else if result.Created > 0 {
			s.log.Info("后台对账完成",
				zap.Int("created", result.Created),
				zap.Int("existing", result.Existing))
		}
	})
	if !submitted {
		s.log.Warn("后台对账任务被丢弃：队列已满")
	}
}
