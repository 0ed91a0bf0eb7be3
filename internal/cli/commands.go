package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMigrateCmd(env Env, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables the game service needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Migrate(cmd.Context(), opts.postgresURL); err != nil {
				return err
			}
			newOutput(cmd, opts.output).message("schema is up to date")
			return nil
		},
	}
}

func newScoresCmd(env Env, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scores <group>",
		Short: "Show the scoreboard of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, closeFn, err := queries(cmd.Context(), env, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			standings, err := q.Scoreboard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			newOutput(cmd, opts.output).standings(standings)
			return nil
		},
	}
}

func newGamesCmd(env Env, opts *options) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "games <group>",
		Short: "List the finished games of a group, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, closeFn, err := queries(cmd.Context(), env, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := q.GamesPage(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			newOutput(cmd, opts.output).gamesPage(p)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	return cmd
}

func newGameCmd(env Env, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "game <id>",
		Short: "Show one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid game id %q", args[0])
			}

			q, closeFn, err := queries(cmd.Context(), env, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			game, err := q.Game(cmd.Context(), id)
			if err != nil {
				return err
			}
			newOutput(cmd, opts.output).game(game)
			return nil
		},
	}
}
