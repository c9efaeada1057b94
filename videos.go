package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/videoteca/cloud-import/services/channel"
	tb "github.com/videoteca/cloud-import/services/token_broker"
	"github.com/videoteca/cloud-import/services/youtube"
)

const (
	teamFlag      = "team"
	pageSizeFlag  = "page-size"
	pageTokenFlag = "page-token"
)

func makeVideosCMD() cli.Command {
	videosCMD := cli.Command{
		Name:    "videos",
		Aliases: []string{"v"},
		Usage:   "Lists uploaded videos of the channel linked to a team",
		Action:  videos,
	}
	configureVideos(&videosCMD)
	return videosCMD
}

func makeTokenCMD() cli.Command {
	tokenCMD := cli.Command{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "Prints a valid access token of the channel linked to a team",
		Action:  token,
	}
	configureToken(&tokenCMD)
	return tokenCMD
}

func teamFlags(f []cli.Flag) []cli.Flag {
	f = append(f,
		cli.StringFlag{
			Name:  teamFlag,
			Usage: "team id",
		},
	)
	f = cs.RegisterPGFlags(f)
	return tb.RegisterFlags(f)
}

func configureVideos(c *cli.Command) {
	c.Flags = teamFlags(c.Flags)
	c.Flags = youtube.RegisterFlags(c.Flags)
	c.Flags = append(c.Flags,
		cli.Int64Flag{
			Name:  pageSizeFlag,
			Usage: "page size",
			Value: youtube.DefaultPageSize,
		},
		cli.StringFlag{
			Name:  pageTokenFlag,
			Usage: "page token",
		},
	)
}

func configureToken(c *cli.Command) {
	c.Flags = teamFlags(c.Flags)
}

func requireTeam(c *cli.Context) (string, error) {
	teamID := c.String(teamFlag)
	if teamID == "" {
		return "", errors.Errorf("--%v is required", teamFlag)
	}
	return teamID, nil
}

func videos(c *cli.Context) error {
	teamID, err := requireTeam(c)
	if err != nil {
		return err
	}
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	chs := channel.NewStore(pg)
	lister := youtube.New(c, cl, tb.New(c, cl, chs), channel.NewResolver(chs))

	page, err := lister.ListVideos(context.Background(), teamID, c.Int64(pageSizeFlag), c.String(pageTokenFlag))
	if err != nil {
		return err
	}
	for _, v := range page.Videos {
		fmt.Printf("%v\t%v\t%v\t%v\n", v.ExternalID, humanize.Time(v.PublishedAt), v.PrivacyStatus, v.Title)
	}
	fmt.Printf("%v videos", humanize.Comma(int64(len(page.Videos))))
	if page.NextPageToken != "" {
		fmt.Printf(", next page: %v", page.NextPageToken)
	}
	if page.PrevPageToken != "" {
		fmt.Printf(", previous page: %v", page.PrevPageToken)
	}
	fmt.Println()
	return nil
}

func token(c *cli.Context) error {
	teamID, err := requireTeam(c)
	if err != nil {
		return err
	}

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	broker := tb.New(c, http.DefaultClient, channel.NewStore(pg))
	t, err := broker.GetAccessToken(context.Background(), teamID)
	if err != nil {
		return err
	}
	fmt.Println(t.AccessToken)
	fmt.Printf("expires %v\n", humanize.Time(time.Now().Add(time.Duration(t.ExpiresIn)*time.Second)))
	return nil
}
