package sheetstore

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/Gopher0727/LineDesk/internal/dateutil"
)

// MemStore 内存实现，开发和测试用
// 语义对齐 GoogleStore：物理删行会让后续行号前移，公式单元格读取时按所在行求值。
type MemStore struct {
	mu     sync.RWMutex
	sheets map[string]*memSheet
	now    func() time.Time
}

type memSheet struct {
	rows [][]memCell
}

type memCell struct {
	value   string
	formula string
}

// planFormulaRe 能识别的唯一公式形态：plan 列按 startAt/expireAt 推导
// 行号不参与匹配，求值时始终取单元格当前所在行，模拟表格删行后相对引用的自动调整。
var planFormulaRe = regexp.MustCompile(`^=IF\(D\d+="","",IF\(E\d+<TODAY\(\),"nopro","pro"\)\)$`)

func NewMemStore() *MemStore {
	return &MemStore{
		sheets: make(map[string]*memSheet),
		now:    time.Now,
	}
}

// SetNow 固定当前时间，测试里控制 TODAY() 的取值
func (s *MemStore) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Seed 整表灌入初始数据，行 1 对应表头
func (s *MemStore) Seed(sheet string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := &memSheet{}
	for _, row := range rows {
		cells := make([]memCell, len(row))
		for i, v := range row {
			cells[i] = memCell{value: v}
		}
		ms.rows = append(ms.rows, cells)
	}
	s.sheets[sheet] = ms
}

func (s *MemStore) ReadRange(ctx context.Context, sheet, a1 string) ([][]string, error) {
	r, err := ParseA1(a1)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ms := s.sheets[sheet]
	if ms == nil {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	endRow := r.EndRow
	if endRow == 0 || endRow > len(ms.rows) {
		endRow = len(ms.rows)
	}

	var out [][]string
	for rowNum := r.StartRow; rowNum <= endRow; rowNum++ {
		row := make([]string, 0, r.Cols())
		for col := r.StartCol; col <= r.EndCol; col++ {
			row = append(row, s.cellValue(ms, rowNum, col))
		}
		// 对齐 Sheets 行为：行尾空格不返回
		for len(row) > 0 && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}
		out = append(out, row)
	}
	// 尾部全空行同样裁掉
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (s *MemStore) WriteRange(ctx context.Context, sheet, a1 string, values [][]string) error {
	r, err := ParseA1(a1)
	if err != nil {
		return err
	}
	if r.EndRow == 0 {
		r.EndRow = r.StartRow + len(values) - 1
	}
	if len(values) != r.Rows() {
		return fmt.Errorf("%w: %q expects %d rows, got %d", ErrInvalidRange, a1, r.Rows(), len(values))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.sheets[sheet]
	if ms == nil {
		ms = &memSheet{}
		s.sheets[sheet] = ms
	}

	for i, row := range values {
		if len(row) > r.Cols() {
			return fmt.Errorf("%w: %q expects %d cols, got %d", ErrInvalidRange, a1, r.Cols(), len(row))
		}
		rowNum := r.StartRow + i
		ms.grow(rowNum, r.StartCol+len(row))
		for j, v := range row {
			// 字面量覆写会清掉原有公式，与 RAW 更新一致
			ms.rows[rowNum-1][r.StartCol+j] = memCell{value: v}
		}
	}
	return nil
}

func (s *MemStore) AppendRows(ctx context.Context, sheet string, values [][]string) (int, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: append with no rows", ErrInvalidRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.sheets[sheet]
	if ms == nil {
		ms = &memSheet{}
		s.sheets[sheet] = ms
	}

	first := len(ms.rows) + 1
	for _, row := range values {
		cells := make([]memCell, len(row))
		for i, v := range row {
			cells[i] = memCell{value: v}
		}
		ms.rows = append(ms.rows, cells)
	}
	return first, nil
}

func (s *MemStore) DeleteRow(ctx context.Context, sheet string, rowNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.sheets[sheet]
	if ms == nil {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	if rowNumber < 1 || rowNumber > len(ms.rows) {
		return fmt.Errorf("%w: row %d out of %d", ErrInvalidRange, rowNumber, len(ms.rows))
	}

	ms.rows = append(ms.rows[:rowNumber-1], ms.rows[rowNumber:]...)
	return nil
}

func (s *MemStore) IsCellComputed(ctx context.Context, sheet string, rowNumber, columnIndex int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ms := s.sheets[sheet]
	if ms == nil {
		return false, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	if rowNumber < 1 || rowNumber > len(ms.rows) || columnIndex >= len(ms.rows[rowNumber-1]) {
		return false, nil
	}
	return ms.rows[rowNumber-1][columnIndex].formula != "", nil
}

func (s *MemStore) SetCellFormula(ctx context.Context, sheet string, rowNumber, columnIndex int, formula string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.sheets[sheet]
	if ms == nil {
		ms = &memSheet{}
		s.sheets[sheet] = ms
	}
	if rowNumber < 1 {
		return fmt.Errorf("%w: row %d", ErrInvalidRange, rowNumber)
	}
	ms.grow(rowNumber, columnIndex+1)
	ms.rows[rowNumber-1][columnIndex] = memCell{formula: formula}
	return nil
}

// cellValue 读单元格，公式单元格现场求值（调用方需持有读锁）
func (s *MemStore) cellValue(ms *memSheet, rowNumber, columnIndex int) string {
	row := ms.rows[rowNumber-1]
	if columnIndex >= len(row) {
		return ""
	}
	cell := row[columnIndex]
	if cell.formula == "" {
		return cell.value
	}
	if !planFormulaRe.MatchString(cell.formula) {
		return cell.formula
	}

	startAt := rawValue(row, 3)
	expireAt := rawValue(row, 4)
	if startAt == "" {
		return ""
	}
	d, ok := dateutil.ParseFlexible(expireAt)
	if !ok {
		return ""
	}
	if dateutil.IsExpired(d, s.now()) {
		return "nopro"
	}
	return "pro"
}

func rawValue(row []memCell, columnIndex int) string {
	if columnIndex >= len(row) {
		return ""
	}
	return row[columnIndex].value
}

func (ms *memSheet) grow(rows, cols int) {
	for len(ms.rows) < rows {
		ms.rows = append(ms.rows, nil)
	}
	for len(ms.rows[rows-1]) < cols {
		ms.rows[rows-1] = append(ms.rows[rows-1], memCell{})
	}
}

// RowCount 测试辅助：当前行数（含表头）
func (s *MemStore) RowCount(sheet string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms := s.sheets[sheet]
	if ms == nil {
		return 0
	}
	return len(ms.rows)
}
