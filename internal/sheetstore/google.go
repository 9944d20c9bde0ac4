package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/Gopher0727/LineDesk/config"
)

// GoogleStore Google Sheets 实现
// 通过 service account 走 Sheets API v4，所有调用都带超时。
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string
	timeout       time.Duration

	mu       sync.Mutex
	sheetIDs map[string]int64 // 工作表名 → sheetId，按需拉取后缓存
}

func NewGoogleStore(ctx context.Context, cfg *config.SheetsConfig) (*GoogleStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet_id is not set")
	}
	if cfg.ServiceAccountEmail == "" {
		return nil, errors.New("sheets: service_account_email is not set")
	}

	key := cfg.NormalizedPrivateKey()
	if !strings.Contains(key, "BEGIN PRIVATE KEY") || !strings.Contains(key, "END PRIVATE KEY") {
		return nil, errors.New("sheets: invalid private key format: missing BEGIN or END PRIVATE KEY")
	}

	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(key),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GoogleStore{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		timeout:       timeout,
		sheetIDs:      make(map[string]int64),
	}, nil
}

func (s *GoogleStore) ReadRange(ctx context.Context, sheet, a1 string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, rangeRef(sheet, a1)).
		Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *GoogleStore) WriteRange(ctx context.Context, sheet, a1 string, values [][]string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, rangeRef(sheet, a1), &sheets.ValueRange{Values: toInterface(values)}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return classify(err)
	}
	return nil
}

// updatedRangeRe 从 append 响应的 UpdatedRange（如 'Members / Subscriptions'!A194:J194）里取首行行号
var updatedRangeRe = regexp.MustCompile(`![A-Z]+(\d+)`)

func (s *GoogleStore) AppendRows(ctx context.Context, sheet string, values [][]string) (int, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: append with no rows", ErrInvalidRange)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	a1 := fmt.Sprintf("A:%s", ColumnLabel(len(values[0])-1))
	resp, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, rangeRef(sheet, a1), &sheets.ValueRange{Values: toInterface(values)}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, classify(err)
	}

	if resp.Updates == nil {
		return 0, fmt.Errorf("%w: append response missing updates", ErrStoreUnavailable)
	}
	m := updatedRangeRe.FindStringSubmatch(resp.Updates.UpdatedRange)
	if m == nil {
		return 0, fmt.Errorf("%w: cannot locate appended rows in %q", ErrStoreUnavailable, resp.Updates.UpdatedRange)
	}
	first, _ := strconv.Atoi(m[1])
	return first, nil
}

func (s *GoogleStore) DeleteRow(ctx context.Context, sheet string, rowNumber int) error {
	if rowNumber < 1 {
		return fmt.Errorf("%w: row %d", ErrInvalidRange, rowNumber)
	}

	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNumber - 1), // 行号转 0-based 索引
					EndIndex:   int64(rowNumber),
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err)
	}
	return nil
}

func (s *GoogleStore) IsCellComputed(ctx context.Context, sheet string, rowNumber, columnIndex int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cell := fmt.Sprintf("%s%d", ColumnLabel(columnIndex), rowNumber)
	resp, err := s.svc.Spreadsheets.
		Get(s.spreadsheetID).
		Ranges(rangeRef(sheet, cell)).
		IncludeGridData(true).
		Context(ctx).Do()
	if err != nil {
		return false, classify(err)
	}

	// 返回的网格数据相对于请求区间，单格请求固定取 [0][0]
	if len(resp.Sheets) == 0 || len(resp.Sheets[0].Data) == 0 {
		return false, nil
	}
	grid := resp.Sheets[0].Data[0]
	if len(grid.RowData) == 0 || len(grid.RowData[0].Values) == 0 {
		return false, nil
	}
	v := grid.RowData[0].Values[0].UserEnteredValue
	return v != nil && v.FormulaValue != nil && *v.FormulaValue != "", nil
}

func (s *GoogleStore) SetCellFormula(ctx context.Context, sheet string, rowNumber, columnIndex int, formula string) error {
	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			UpdateCells: &sheets.UpdateCellsRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(rowNumber - 1),
					EndRowIndex:      int64(rowNumber),
					StartColumnIndex: int64(columnIndex),
					EndColumnIndex:   int64(columnIndex + 1),
				},
				Rows: []*sheets.RowData{{
					Values: []*sheets.CellData{{
						UserEnteredValue: &sheets.ExtendedValue{FormulaValue: &formula},
					}},
				}},
				Fields: "userEnteredValue.formulaValue",
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err)
	}
	return nil
}

// sheetID 按工作表名查 sheetId，结果缓存
func (s *GoogleStore) sheetID(ctx context.Context, sheet string) (int64, error) {
	s.mu.Lock()
	if id, ok := s.sheetIDs[sheet]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.
		Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, classify(err)
	}

	for _, sh := range resp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			s.mu.Lock()
			s.sheetIDs[sheet] = sh.Properties.SheetId
			s.mu.Unlock()
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
}

// rangeRef 拼 "工作表!区间"，名字含特殊字符时加引号
func rangeRef(sheet, a1 string) string {
	if strings.ContainsAny(sheet, " /!'") {
		return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + a1
	}
	return sheet + "!" + a1
}

func toInterface(values [][]string) [][]interface{} {
	out := make([][]interface{}, len(values))
	for i, row := range values {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}

// classify 把 API 错误归入存储层错误分类：400 当作区间问题，其余一律算存储不可用
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 400 {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
