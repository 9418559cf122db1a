package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/repositories"
)

const (
	MatchesSheet = "Matches"
	PlayersSheet = "Players"
)

var matchColumns = []string{"week", "match_id", "group", "p1", "score1", "p2", "score2", "team1", "team2"}

// XLSXSnapshotStore mirrors the spreadsheet layout the tournament was first run
// on: a Matches worksheet with one fixture per row and a Players worksheet
// with a single name column. Empty cells mean "not set".
type XLSXSnapshotStore struct {
	path string
}

func NewXLSXSnapshotStore(path string) *XLSXSnapshotStore {
	return &XLSXSnapshotStore{path: path}
}

func (s *XLSXSnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repositories.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	defer f.Close()
	return readSnapshotWorkbook(f)
}

func (s *XLSXSnapshotStore) Save(ctx context.Context, snapshot *models.Snapshot) error {
	if err := repositories.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	f, err := SnapshotWorkbook(snapshot)
	if err != nil {
		return err
	}
	defer f.Close()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// ReadSnapshotWorkbook parses a workbook in the Matches/Players layout.
func ReadSnapshotWorkbook(r io.Reader) (*models.Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrSnapshotMalformed, err)
	}
	defer f.Close()
	return readSnapshotWorkbook(f)
}

func readSnapshotWorkbook(f *excelize.File) (*models.Snapshot, error) {
	if idx, _ := f.GetSheetIndex(MatchesSheet); idx < 0 {
		return nil, repositories.ErrSnapshotNotFound
	}
	if idx, _ := f.GetSheetIndex(PlayersSheet); idx < 0 {
		return nil, repositories.ErrSnapshotNotFound
	}

	playerRows, err := f.GetRows(PlayersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", PlayersSheet, err)
	}
	matchRows, err := f.GetRows(MatchesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", MatchesSheet, err)
	}

	snapshot := &models.Snapshot{Players: []string{}, Matches: []models.Match{}}
	for i, row := range playerRows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		if name := strings.TrimSpace(row[0]); name != "" {
			snapshot.Players = append(snapshot.Players, name)
		}
	}

	if len(matchRows) > 0 {
		cols := headerIndex(matchRows[0])
		for i, row := range matchRows[1:] {
			m, ok, err := parseMatchRow(cols, row)
			if err != nil {
				return nil, fmt.Errorf("%w: %s row %d: %v", repositories.ErrSnapshotMalformed, MatchesSheet, i+2, err)
			}
			if ok {
				snapshot.Matches = append(snapshot.Matches, m)
			}
		}
	}

	if snapshot.IsEmpty() {
		return nil, repositories.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func parseMatchRow(cols map[string]int, row []string) (models.Match, bool, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var m models.Match
	if cell("match_id") == "" && cell("p1") == "" && cell("p2") == "" {
		return m, false, nil // blank line
	}

	var err error
	if m.MatchID, err = parseCellInt(cell("match_id")); err != nil {
		return m, false, fmt.Errorf("match_id: %w", err)
	}
	if m.Week, err = parseCellInt(cell("week")); err != nil {
		return m, false, fmt.Errorf("week: %w", err)
	}
	m.Group = cell("group")
	m.P1 = cell("p1")
	m.P2 = cell("p2")
	if m.Score1, err = parseOptionalInt(cell("score1")); err != nil {
		return m, false, fmt.Errorf("score1: %w", err)
	}
	if m.Score2, err = parseOptionalInt(cell("score2")); err != nil {
		return m, false, fmt.Errorf("score2: %w", err)
	}
	if t := cell("team1"); t != "" {
		m.Team1 = &t
	}
	if t := cell("team2"); t != "" {
		m.Team2 = &t
	}
	return m, true, nil
}

// parseCellInt accepts "3" as well as "3.0", which is how spreadsheets that
// went through a float column store whole numbers.
func parseCellInt(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(f), nil
}

func parseOptionalInt(s string) (*int, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := parseCellInt(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SnapshotWorkbook renders the snapshot into a new workbook. The caller closes it.
func SnapshotWorkbook(snapshot *models.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", MatchesSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(PlayersSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(matchColumns))
	for i, c := range matchColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(MatchesSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, m := range snapshot.Matches {
		row := []interface{}{m.Week, m.MatchID, m.Group, m.P1, optionalCell(m.Score1), m.P2, optionalCell(m.Score2), optionalString(m.Team1), optionalString(m.Team2)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(MatchesSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetCellStr(PlayersSheet, "A1", "name"); err != nil {
		f.Close()
		return nil, err
	}
	for i, p := range snapshot.Players {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellStr(PlayersSheet, cell, p); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func optionalCell(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func optionalString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
