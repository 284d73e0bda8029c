package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mastercactapus/turret/config"
	"github.com/mastercactapus/turret/turret"
)

func main() {
	log.SetFlags(log.Lshortfile)

	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatalf("ERROR: %+v", err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "turretd"
	app.Usage = "run the turret aiming and launch controller"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML config file",
		},
		cli.StringFlag{
			Name:  "serial",
			Usage: "serial port of the controller board",
		},
		cli.IntFlag{
			Name:  "baud",
			Usage: "baud rate of the controller board",
		},
		cli.BoolFlag{
			Name:  "sim",
			Usage: "use simulated hardware",
		},
		cli.StringFlag{
			Name:  "addr",
			Usage: "address to bind the HTTP server to",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this file (rotated)",
		},
	}
	app.Action = run
	return app
}

// loadConfig layers the command line over the config file and environment.
// Validation waits until the flags are applied.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("serial") {
		cfg.Board.Port = c.String("serial")
	}
	if c.IsSet("baud") {
		cfg.Board.Baud = c.Int("baud")
	}
	if c.IsSet("sim") {
		cfg.Sim = c.Bool("sim")
	}
	if c.IsSet("addr") {
		cfg.HTTP.Addr = c.String("addr")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	err = cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if closer := setupLogging(cfg.Log); closer != nil {
		defer closer.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hw, closeHW, err := openHardware(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHW()

	t, err := turret.New(hw, cfg.TurretConfig())
	if err != nil {
		return err
	}
	err = t.Start(ctx)
	if err != nil {
		return err
	}
	defer t.Stop()

	api := newAPI(t, cfg.HTTP.StatusInterval)
	defer api.Close()

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "*")
			log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
			api.ServeHTTP(w, req)
		}),
	}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Println("Listening on", cfg.HTTP.Addr)
	err = srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
