// Package sheetstore 定义行式表格存储的访问契约。
//
// 所有数据集都存在同一张表格里，每个工作表第 1 行是表头，数据行号从 2 开始。
// 行号是物理位置：删除一行后，其后所有行号整体前移一位，调用方缓存的行号随之失效。
package sheetstore

import (
	"context"
	"errors"
)

var (
	// ErrStoreUnavailable 网络或鉴权问题，调用方直接上抛，不在存储层重试
	ErrStoreUnavailable = errors.New("sheet store unavailable")
	// ErrInvalidRange 行列越界或区间写法非法
	ErrInvalidRange = errors.New("invalid sheet range")
	// ErrSheetNotFound 工作表不存在
	ErrSheetNotFound = errors.New("sheet not found")
)

// RowStore 行式存储适配器
// 会员引擎只依赖这组语义：区间读写、追加后返回首个新行号、物理删行、公式探测与安装。
type RowStore interface {
	// ReadRange 读取 a1 区间，返回的行和列只覆盖实际有数据的部分
	ReadRange(ctx context.Context, sheet, a1 string) ([][]string, error)

	// WriteRange 覆写 a1 区间，values 的形状必须与区间完全一致
	WriteRange(ctx context.Context, sheet, a1 string, values [][]string) error

	// AppendRows 追加若干行，返回第一条新行的 1-based 行号。
	// 并发追加时最终落点不可预知，必须以返回值为准。
	AppendRows(ctx context.Context, sheet string, values [][]string) (int, error)

	// DeleteRow 物理删除一行，其后所有行号前移
	DeleteRow(ctx context.Context, sheet string, rowNumber int) error

	// IsCellComputed 单元格的值是否由公式计算而非字面量
	IsCellComputed(ctx context.Context, sheet string, rowNumber, columnIndex int) (bool, error)

	// SetCellFormula 在单元格上安装公式（目前只在建档时给 plan 列用）
	SetCellFormula(ctx context.Context, sheet string, rowNumber, columnIndex int, formula string) error
}
