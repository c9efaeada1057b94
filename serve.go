package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	hi "github.com/videoteca/cloud-import/handlers/importer"
	"github.com/videoteca/cloud-import/handlers/team"
	ht "github.com/videoteca/cloud-import/handlers/token"
	"github.com/videoteca/cloud-import/services/assignment"
	"github.com/videoteca/cloud-import/services/auth"
	"github.com/videoteca/cloud-import/services/channel"
	"github.com/videoteca/cloud-import/services/session"
	tb "github.com/videoteca/cloud-import/services/token_broker"
	"github.com/videoteca/cloud-import/services/youtube"
	w "github.com/videoteca/cloud-import/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterRedisClientFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = auth.RegisterFlags(c.Flags)
	c.Flags = tb.RegisterFlags(c.Flags)
	c.Flags = youtube.RegisterFlags(c.Flags)
	c.Flags = session.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := pgMigrate(c)
	if err != nil {
		return err
	}

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting Auth
	a := auth.New(c)
	a.RegisterHandler(r)

	// Setting Redis
	redis := cs.NewRedisClient(c)
	defer redis.Close()

	// Setting ChannelStore
	chs := channel.NewStore(pg)

	// Setting ChannelResolver
	chr := channel.NewResolver(chs)

	// Setting TokenBroker
	broker := tb.New(c, cl, chs)

	// Setting VideoLister
	lister := youtube.New(c, cl, broker, chr)

	// Setting AssignmentStore
	as := assignment.New(pg)

	// Setting SessionManager
	sm := session.New(session.NewStore(c, redis.Get()), chr, lister, as)

	// Setting TokenHandler
	ht.RegisterHandler(r, broker)

	// Setting TeamHandler
	team.RegisterHandler(r, chr, lister, as)

	// Setting ImportHandler
	hi.RegisterHandler(r, sm)

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
