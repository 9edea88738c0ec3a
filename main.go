package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"prizepool/application"
	"prizepool/cmd"
	"prizepool/config"
	"prizepool/database"

	log "github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "path to a config file; environment variables override it",
		EnvVar: "PRIZEPOOL_CONFIG",
	}
	stepsFlag = cli.IntFlag{
		Name:  "steps",
		Value: 1,
		Usage: "number of migrations to roll back",
	}
	fileFlag = cli.StringFlag{
		Name:  "file",
		Usage: "JSON execute request to submit; reads stdin when empty",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "prizepool"
	app.Usage = "no-loss prize pool over a staking contract"
	app.Flags = []cli.Flag{configFlag}
	app.Action = runAction
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "serve the HTTP API and run the draw trigger worker",
			Flags:  []cli.Flag{configFlag},
			Action: runAction,
		},
		{
			Name:   "draw",
			Usage:  "trigger the draw once if the current window has ended",
			Flags:  []cli.Flag{configFlag},
			Action: drawAction,
		},
		{
			Name:   "execute",
			Usage:  "submit one execute request, e.g. init",
			Flags:  []cli.Flag{configFlag, fileFlag},
			Action: executeAction,
		},
		{
			Name:  "migrate",
			Usage: "manage the database schema",
			Subcommands: []cli.Command{
				{Name: "up", Usage: "apply all pending migrations", Flags: []cli.Flag{configFlag}, Action: migrateUpAction},
				{Name: "down", Usage: "roll back migrations", Flags: []cli.Flag{configFlag, stepsFlag}, Action: migrateDownAction},
				{Name: "status", Usage: "print the schema version", Flags: []cli.Flag{configFlag}, Action: migrateStatusAction},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		path = ctx.GlobalString(configFlag.Name)
	}
	cfg, err := config.LoadGlobal(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ConfigureLogging()
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()
	return ctx, cancel
}

func runAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	runCtx, cancel := signalContext()
	defer cancel()
	return cmd.Run(runCtx, cfg)
}

func drawAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	runCtx, cancel := signalContext()
	defer cancel()
	return cmd.Draw(runCtx, cfg)
}

func executeAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	in := os.Stdin
	if path := ctx.String(fileFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open request file: %w", err)
		}
		defer f.Close()
		in = f
	}
	var req application.ExecuteRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	runCtx, cancel := signalContext()
	defer cancel()
	answer, err := cmd.Execute(runCtx, cfg, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(answer)
}

func migrateUpAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return database.MigrateUp(cfg.GetDatabaseURL())
}

func migrateDownAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return database.MigrateDown(cfg.GetDatabaseURL(), ctx.Int(stepsFlag.Name))
}

func migrateStatusAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	status, err := database.GetMigrationStatus(cfg.GetDatabaseURL())
	if err != nil {
		return err
	}
	if !status.Applied {
		fmt.Println("No migrations applied")
		return nil
	}
	fmt.Printf("Version: %d, dirty: %t\n", status.Version, status.Dirty)
	return nil
}
