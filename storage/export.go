package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/fifa-tournament/models"
)

const (
	LeaderboardSheet = "Leaderboard"
	TrackerSheet     = "Team Tracker"

	StandingsContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// NoTeamsPlaceholder is shown for players who have not picked a team yet.
const NoTeamsPlaceholder = "—"

// PublishStandings renders the standings workbook and uploads it under key.
func PublishStandings(ctx context.Context, objects ObjectStore, key string, standings []models.PlayerStats, usage []models.TeamUsage) (*UploadResult, error) {
	f, err := StandingsWorkbook(standings, usage)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render standings workbook: %w", err)
	}
	return objects.Upload(ctx, key, StandingsContentType, buf)
}

// StandingsWorkbook renders the leaderboard and the team tracker as two
// worksheets. The caller closes the returned file.
func StandingsWorkbook(standings []models.PlayerStats, usage []models.TeamUsage) (*excelize.File, error) {
	f := excelize.NewFile()
	fail := func(err error) (*excelize.File, error) {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", LeaderboardSheet); err != nil {
		return fail(err)
	}
	if _, err := f.NewSheet(TrackerSheet); err != nil {
		return fail(err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fail(err)
	}

	header := []interface{}{"#", "Player", "GP", "W", "D", "L", "GF", "GA", "GD", "Pts"}
	if err := f.SetSheetRow(LeaderboardSheet, "A1", &header); err != nil {
		return fail(err)
	}
	for i, s := range standings {
		row := []interface{}{s.Rank, s.Player, s.GP, s.W, s.D, s.L, s.GF, s.GA, s.GD, s.Pts}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(LeaderboardSheet, cell, &row); err != nil {
			return fail(err)
		}
	}

	trackerHeader := []interface{}{"Player", "Used Count", "Teams Played"}
	if err := f.SetSheetRow(TrackerSheet, "A1", &trackerHeader); err != nil {
		return fail(err)
	}
	for i, u := range usage {
		row := []interface{}{u.Player, u.UsedCount, JoinTeams(u.Teams)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(TrackerSheet, cell, &row); err != nil {
			return fail(err)
		}
	}

	for _, sheet := range []string{LeaderboardSheet, TrackerSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fail(err)
		}
	}
	if err := f.SetColWidth(LeaderboardSheet, "B", "B", 24); err != nil {
		return fail(err)
	}
	if err := f.SetColWidth(TrackerSheet, "A", "A", 24); err != nil {
		return fail(err)
	}
	if err := f.SetColWidth(TrackerSheet, "C", "C", 60); err != nil {
		return fail(err)
	}
	return f, nil
}

// JoinTeams renders a used-team list the way the tracker table shows it.
func JoinTeams(teams []string) string {
	if len(teams) == 0 {
		return NoTeamsPlaceholder
	}
	return strings.Join(teams, ", ")
}
