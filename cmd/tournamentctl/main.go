package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/Dosada05/fifa-tournament/brackets"
	"github.com/Dosada05/fifa-tournament/config"
	"github.com/Dosada05/fifa-tournament/league"
	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/services"
	"github.com/Dosada05/fifa-tournament/storage"
)

// opener builds the service the commands operate on.
type opener func(ctx context.Context) (services.TournamentService, func() error, error)

// objectOpener connects to the bucket exports are published to.
type objectOpener func(ctx context.Context) (storage.ObjectStore, error)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	app := newApp(os.Stdout, func(ctx context.Context) (services.TournamentService, func() error, error) {
		cfg, err := config.LoadStorage()
		if err != nil {
			return nil, nil, err
		}
		roster, err := config.LoadRoster(cfg.RosterFile)
		if err != nil {
			return nil, nil, err
		}
		store, closeStore, err := storage.Open(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		svc := services.NewTournamentService(store, brackets.NewRoundRobinGenerator(), nil, nil, roster, logger)
		return svc, closeStore, nil
	}, func(ctx context.Context) (storage.ObjectStore, error) {
		cfg, err := config.LoadStorage()
		if err != nil {
			return nil, err
		}
		return storage.OpenObjectStore(ctx, cfg)
	})

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer, open opener, openObjects objectOpener) *cli.App {
	// with runs fn against a freshly opened service and closes it afterwards.
	with := func(fn func(c *cli.Context, svc services.TournamentService) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			svc, closeFn, err := open(c.Context)
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(c, svc)
		}
	}

	return &cli.App{
		Name:      "tournamentctl",
		Usage:     "inspect and edit the FIFA tournament from the command line",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "standings",
				Usage: "print the standings table",
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					standings, err := svc.Standings(c.Context)
					if err != nil {
						return err
					}
					return printStandings(out, standings)
				}),
			},
			{
				Name:  "teams",
				Usage: "print the teams every player has used",
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					usage, err := svc.TeamUsage(c.Context)
					if err != nil {
						return err
					}
					return printTeamUsage(out, usage)
				}),
			},
			{
				Name:  "options",
				Usage: "list the teams a side may still pick for a match",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "match", Aliases: []string{"m"}, Required: true},
					&cli.StringFlag{Name: "side", Value: string(models.SideHome), Usage: "home or away"},
				},
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					teams, err := svc.SelectableTeams(c.Context, c.Int("match"), models.Side(c.String("side")))
					if err != nil {
						return err
					}
					for _, t := range teams {
						fmt.Fprintln(out, t)
					}
					return nil
				}),
			},
			{
				Name:  "schedule",
				Usage: "print fixtures grouped by week",
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					weeks, err := svc.Schedule(c.Context)
					if err != nil {
						return err
					}
					return printSchedule(out, weeks)
				}),
			},
			{
				Name:  "init",
				Usage: "load a tournament_data.json document into the store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
					&cli.BoolFlag{Name: "force", Usage: "replace existing data"},
				},
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					f, err := os.Open(c.String("file"))
					if err != nil {
						return err
					}
					defer f.Close()
					snapshot, err := storage.DecodeSnapshot(f)
					if err != nil {
						return err
					}
					stored, err := svc.Initialize(c.Context, snapshot, c.Bool("force"))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "initialized %d players, %d matches\n", len(stored.Players), len(stored.Matches))
					return nil
				}),
			},
			{
				Name:  "fixtures",
				Usage: "generate a round-robin schedule for the given players",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "player", Aliases: []string{"p"}, Required: true},
					&cli.IntFlag{Name: "legs", Value: 1, Usage: "1 or 2 (home and away)"},
					&cli.BoolFlag{Name: "force", Usage: "replace existing data"},
				},
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					stored, err := svc.GenerateFixtures(c.Context, services.GenerateFixturesInput{
						Players: c.StringSlice("player"),
						Legs:    c.Int("legs"),
						Force:   c.Bool("force"),
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "generated %d matches over %d weeks\n", len(stored.Matches), len(league.Weeks(stored.Matches)))
					return nil
				}),
			},
			{
				Name:  "result",
				Usage: "record, change or clear a match result; omitted fields keep their current values",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "match", Aliases: []string{"m"}, Required: true},
					&cli.IntFlag{Name: "score1"},
					&cli.IntFlag{Name: "score2"},
					&cli.StringFlag{Name: "team1", Usage: "empty string unassigns the team"},
					&cli.StringFlag{Name: "team2", Usage: "empty string unassigns the team"},
					&cli.BoolFlag{Name: "clear", Usage: "remove scores and teams"},
				},
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					current, err := findMatch(c.Context, svc, c.Int("match"))
					if err != nil {
						return err
					}
					input, err := resultInput(c, current)
					if err != nil {
						return err
					}
					match, err := svc.RecordResult(c.Context, input)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "match %d: %s\n", match.MatchID, formatMatch(*match))
					return nil
				}),
			},
			{
				Name:  "export",
				Usage: "write standings and team tracker to an xlsx workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "standings.xlsx", Usage: "file path, or object key with --publish"},
					&cli.BoolFlag{Name: "publish", Usage: "upload to the S3 bucket instead of writing a local file"},
				},
				Action: with(func(c *cli.Context, svc services.TournamentService) error {
					standings, err := svc.Standings(c.Context)
					if err != nil {
						return err
					}
					usage, err := svc.TeamUsage(c.Context)
					if err != nil {
						return err
					}
					if c.Bool("publish") {
						objects, err := openObjects(c.Context)
						if err != nil {
							return err
						}
						res, err := storage.PublishStandings(c.Context, objects, c.String("out"), standings, usage)
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "uploaded %s\n", res.Key)
						if res.Location != "" {
							fmt.Fprintln(out, res.Location)
						}
						return nil
					}

					f, err := storage.StandingsWorkbook(standings, usage)
					if err != nil {
						return err
					}
					defer f.Close()
					if err := f.SaveAs(c.String("out")); err != nil {
						return err
					}
					fmt.Fprintf(out, "wrote %s\n", c.String("out"))
					return nil
				}),
			},
		},
	}
}

func findMatch(ctx context.Context, svc services.TournamentService, matchID int) (models.Match, error) {
	snapshot, err := svc.Snapshot(ctx)
	if err != nil {
		return models.Match{}, err
	}
	for _, m := range snapshot.Matches {
		if m.MatchID == matchID {
			return m, nil
		}
	}
	return models.Match{}, fmt.Errorf("%w: %d", services.ErrMatchNotFound, matchID)
}

// resultInput starts from the match as stored, so flags left out keep their values.
func resultInput(c *cli.Context, current models.Match) (models.ResultInput, error) {
	input := models.ResultInput{MatchID: current.MatchID}
	if c.Bool("clear") {
		return input, nil
	}
	if c.IsSet("score1") != c.IsSet("score2") {
		return input, errors.New("--score1 and --score2 go together")
	}
	input.Score1, input.Score2 = current.Score1, current.Score2
	input.Team1, input.Team2 = current.Team1, current.Team2
	if c.IsSet("score1") {
		input.Score1 = models.IntPtr(c.Int("score1"))
		input.Score2 = models.IntPtr(c.Int("score2"))
	}
	if c.IsSet("team1") {
		input.Team1 = models.StringPtr(c.String("team1"))
	}
	if c.IsSet("team2") {
		input.Team2 = models.StringPtr(c.String("team2"))
	}
	return input, nil
}

func printStandings(out io.Writer, standings []models.PlayerStats) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPlayer\tGP\tW\tD\tL\tGF\tGA\tGD\tPts")
	for _, s := range standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\n",
			s.Rank, s.Player, s.GP, s.W, s.D, s.L, s.GF, s.GA, s.GD, s.Pts)
	}
	return tw.Flush()
}

func printTeamUsage(out io.Writer, usage []models.TeamUsage) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Player\tUsed\tTeams")
	for _, u := range usage {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", u.Player, u.UsedCount, storage.JoinTeams(u.Teams))
	}
	return tw.Flush()
}

func printSchedule(out io.Writer, weeks []models.WeekSchedule) error {
	for _, w := range weeks {
		status := ""
		if w.Completed {
			status = " (completed)"
		}
		fmt.Fprintf(out, "Week %d%s\n", w.Week, status)
		for _, m := range w.Matches {
			fmt.Fprintf(out, "  #%d  %s\n", m.MatchID, formatMatch(m))
		}
	}
	return nil
}

func formatMatch(m models.Match) string {
	var b strings.Builder
	b.WriteString(m.P1)
	if t := m.Team(models.SideHome); t != "" {
		fmt.Fprintf(&b, " (%s)", t)
	}
	if m.Played() {
		fmt.Fprintf(&b, " %d - %d ", *m.Score1, *m.Score2)
	} else {
		b.WriteString(" vs ")
	}
	b.WriteString(m.P2)
	if t := m.Team(models.SideAway); t != "" {
		fmt.Fprintf(&b, " (%s)", t)
	}
	return b.String()
}
