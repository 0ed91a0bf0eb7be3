package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// output formats results for a terminal or for scripts.
type output struct {
	w      io.Writer
	format string
}

func newOutput(cmd *cobra.Command, format string) *output {
	return &output{w: cmd.OutOrStdout(), format: format}
}

func (o *output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *output) message(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *output) standings(standings []models.Standing) {
	if o.format == "json" {
		o.printJSON(standings)
		return
	}
	if len(standings) == 0 {
		fmt.Fprintln(o.w, "No scores yet.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tSCORE")
	for _, s := range standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", s.Rank, s.UserID, s.Score)
	}
	_ = tw.Flush()
}

func (o *output) gamesPage(p *models.GamesPage) {
	if o.format == "json" {
		o.printJSON(p)
		return
	}
	if p.Total == 0 {
		fmt.Fprintln(o.w, "No finished games.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tWORD\tIMPOSTER\tCREATED")
	for _, g := range p.Games {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", g.ID, g.Status, g.Word, g.ImposterID, g.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
	fmt.Fprintf(o.w, "Page %d/%d (%d games)\n", p.Page, p.Pages, p.Total)
}

func (o *output) game(g *models.Game) {
	if o.format == "json" {
		o.printJSON(g)
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", g.ID)
	fmt.Fprintf(tw, "Group:\t%s\n", g.GuildID)
	fmt.Fprintf(tw, "Status:\t%s\n", g.Status)
	fmt.Fprintf(tw, "Host:\t%s\n", g.HostID)
	fmt.Fprintf(tw, "Imposter:\t%s\n", g.ImposterID)
	fmt.Fprintf(tw, "Word:\t%s\n", g.Word)
	if g.Placed() {
		fmt.Fprintf(tw, "Placed at:\t%s\n", g.Link)
	} else {
		fmt.Fprintf(tw, "Placed at:\t-\n")
	}
	fmt.Fprintf(tw, "Malus:\t%t\n", g.Malus)
	_ = tw.Flush()
}
