package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron"

	"trafficstops/src/config"
	"trafficstops/src/datasource/email"
	"trafficstops/src/datasource/fetch"
	"trafficstops/src/datasource/file"
	"trafficstops/src/processor"
	"trafficstops/src/report"
	"trafficstops/src/storage"
)

func main() {
	var (
		configDir  = flag.String("config", "./config", "configuration directory")
		configFile = flag.String("config-file", "config.json", "configuration file name")
		mode       = flag.String("mode", "report", "run mode: report, watch, schedule or ingest")
		refresh    = flag.Bool("refresh", false, "re-download the snapshot even when cached")
		sendMail   = flag.Bool("email", false, "mail the workbook after a successful build")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir, *configFile)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	app := &App{cfg: cfg, logger: logger, sendMail: *sendMail}

	switch *mode {
	case "report":
		err = app.runOnce(*refresh)
	case "watch":
		err = app.runWatch()
	case "schedule":
		err = app.runSchedule()
	case "ingest":
		err = app.runIngest()
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}

	if err != nil {
		logger.Fatal(err.Error())
		log.Fatal(err)
	}
}

// App holds everything one report run needs.
type App struct {
	cfg      *config.Config
	logger   *storage.Logger
	sendMail bool
}

// runOnce is the default batch mode: ensure the snapshot, build, done.
func (a *App) runOnce(refresh bool) error {
	if err := fetch.EnsureSnapshot(a.cfg.Dataset.URL, a.cfg.SnapshotPath(), refresh, a.logger); err != nil {
		return err
	}
	return a.build(a.cfg.SnapshotPath())
}

// runWatch builds once and then rebuilds whenever the snapshot file is
// rewritten in place.
func (a *App) runWatch() error {
	if err := a.runOnce(false); err != nil {
		return err
	}

	monitor, err := file.NewSnapshotMonitor(a.cfg.SnapshotPath())
	if err != nil {
		return fmt.Errorf("cannot watch data dir: %w", err)
	}
	defer monitor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	file.SetupSignalHandler(cancel)

	a.logger.Info(fmt.Sprintf("watching %s for snapshot updates", a.cfg.SnapshotPath()))
	return monitor.Watch(ctx, func(path string) {
		a.logger.Info(fmt.Sprintf("snapshot updated: %s, rebuilding report", path))
		if err := a.build(path); err != nil {
			a.logger.Error(fmt.Sprintf("rebuild failed: %v", err))
		}
	})
}

// runSchedule re-downloads the snapshot and rebuilds on a fixed interval.
func (a *App) runSchedule() error {
	if err := a.runOnce(false); err != nil {
		return err
	}

	interval := time.Duration(a.cfg.Schedule)
	cronSpec := fmt.Sprintf("@every %s", interval)

	c := cron.New()
	err := c.AddFunc(cronSpec, func() {
		a.logger.Info(fmt.Sprintf("scheduled rebuild (%s)", cronSpec))
		if err := a.runOnce(true); err != nil {
			a.logger.Error(fmt.Sprintf("scheduled rebuild failed: %v", err))
		}
	})
	if err != nil {
		return fmt.Errorf("cannot schedule rebuild: %w", err)
	}

	c.Start()
	defer c.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	file.SetupSignalHandler(cancel)
	<-ctx.Done()
	return nil
}

// runIngest pulls the newest dataset extract from the mailbox and builds
// from it, falling back to the cached snapshot when there is no new mail.
func (a *App) runIngest() error {
	client := email.NewEmailClient(
		a.cfg.Email.Server,
		a.cfg.Email.Username,
		a.cfg.Email.Password)

	extract, err := email.FetchLatestExtract(client, a.cfg.Email.TargetSubject, a.logger)
	if err != nil {
		return err
	}

	if extract != nil {
		handler := email.NewExtractAttachmentHandler(a.cfg.Email.TargetSubject, a.cfg.Dataset.DataDir)
		path, err := handler.Handle(extract)
		if err != nil {
			return err
		}
		if path != "" {
			a.logger.Info(fmt.Sprintf("extract attachment saved to %s", path))
			return a.build(path)
		}
	}

	a.logger.Info("no new extract, building from cached snapshot")
	return a.runOnce(false)
}

// build runs the whole pipeline against one snapshot file: read,
// normalize, filter, restrict, aggregate, render.
func (a *App) build(snapshotPath string) error {
	start := time.Now()

	df, err := file.ReadSnapshot(snapshotPath, a.cfg.Dataset.SheetName)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("snapshot loaded: %d rows, %d columns", df.Nrow(), df.Ncol()))

	records, err := processor.Normalize(df)
	if err != nil {
		return fmt.Errorf("normalize snapshot: %w", err)
	}

	lower := a.cfg.Analysis.RangeLower.Time()
	upper := a.cfg.Analysis.RangeUpper.Time()
	inRange := processor.FilterDateRange(records, lower, upper)
	a.logger.Info(fmt.Sprintf("%d of %d records inside %s..%s",
		len(inRange), len(records),
		lower.Format("2006-01-02"), upper.Format("2006-01-02")))

	view := processor.RestrictGender(inRange, a.cfg.Analysis.Genders)
	a.logger.Info(fmt.Sprintf("%d records after gender restriction, display order %v",
		len(view.Records), view.Order))

	rep := report.Assemble(view, lower, upper, a.cfg.Analysis.SmoothingDays)

	if err := report.WriteWorkbook(rep, a.cfg.WorkbookPath()); err != nil {
		return err
	}
	if err := report.WriteCSVTables(rep, a.cfg.Report.OutputDir); err != nil {
		return err
	}

	summary := report.Summary(rep)
	fmt.Fprint(os.Stdout, summary)
	a.logger.Info("report built in " + time.Since(start).Round(time.Millisecond).String())

	if a.sendMail {
		if err := email.SendReport(a.cfg, a.cfg.WorkbookPath()); err != nil {
			return err
		}
		a.logger.Info("report mailed to " + a.cfg.SendEmail.To)
	}

	return nil
}
