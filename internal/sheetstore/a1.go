package sheetstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Range A1 区间的解析结果
// 列是 0-based 闭区间，行是 1-based 闭区间；EndRow 为 0 表示开区间（到数据末尾）。
type Range struct {
	StartCol int
	EndCol   int
	StartRow int
	EndRow   int
}

// Rows 区间覆盖的行数，开区间返回 -1
func (r Range) Rows() int {
	if r.EndRow == 0 {
		return -1
	}
	return r.EndRow - r.StartRow + 1
}

// Cols 区间覆盖的列数
func (r Range) Cols() int {
	return r.EndCol - r.StartCol + 1
}

// ColumnLabel 0-based 列号转字母（0→A，26→AA）
func ColumnLabel(index int) string {
	label := ""
	n := index
	for {
		label = string(rune('A'+n%26)) + label
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return label
}

// ParseA1 解析 "A2:AV"、"D5:E5"、"L2:L"、"C7" 这几种写法
func ParseA1(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty range", ErrInvalidRange)
	}

	parts := strings.SplitN(s, ":", 2)

	startCol, startRow, err := parseCell(parts[0])
	if err != nil {
		return Range{}, err
	}
	if startRow == 0 {
		return Range{}, fmt.Errorf("%w: %q missing start row", ErrInvalidRange, s)
	}

	r := Range{StartCol: startCol, EndCol: startCol, StartRow: startRow, EndRow: startRow}
	if len(parts) == 1 {
		return r, nil
	}

	endCol, endRow, err := parseCell(parts[1])
	if err != nil {
		return Range{}, err
	}
	r.EndCol = endCol
	r.EndRow = endRow // 0 = 开区间

	if r.EndCol < r.StartCol || (r.EndRow != 0 && r.EndRow < r.StartRow) {
		return Range{}, fmt.Errorf("%w: %q is reversed", ErrInvalidRange, s)
	}
	return r, nil
}

// parseCell "AV12" → (47, 12)；"L" → (11, 0)
func parseCell(s string) (col, row int, err error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		col = col*26 + int(s[i]-'A') + 1
		i++
	}
	if col == 0 {
		return 0, 0, fmt.Errorf("%w: bad cell %q", ErrInvalidRange, s)
	}
	col--

	if i == len(s) {
		return col, 0, nil
	}
	row, convErr := strconv.Atoi(s[i:])
	if convErr != nil || row < 1 {
		return 0, 0, fmt.Errorf("%w: bad cell %q", ErrInvalidRange, s)
	}
	return col, row, nil
}
