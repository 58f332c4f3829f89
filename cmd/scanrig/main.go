// Command scanrig captures a scan from the rig over a serial port, writes the
// capture file, and optionally archives and renders the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/scanrig/internal/config"
	"github.com/banshee-data/scanrig/internal/db"
	"github.com/banshee-data/scanrig/internal/render"
	"github.com/banshee-data/scanrig/internal/scan"
	"github.com/banshee-data/scanrig/internal/scanfile"
	"github.com/banshee-data/scanrig/internal/serialmux"
	"github.com/banshee-data/scanrig/internal/version"
)

var (
	devMode      = flag.Bool("dev", false, "Replay a canned scan instead of opening a serial port")
	portPath     = flag.String("port", "/dev/ttyUSB0", "Serial port to use (ignored in dev mode)")
	baudRate     = flag.Int("baud", 0, "Baud rate override (0 uses the profile's rate)")
	profileName  = flag.String("profile", "any", "Rig profile to use")
	profilesFile = flag.String("profiles", "", "Optional profiles YAML file")
	outFile      = flag.String("out", "scanner_data.txt", "Capture output file")
	csvFile      = flag.String("csv", "", "Also write recovered polar samples as CSV to this file")
	dbFile       = flag.String("db", "", "Archive the session to this SQLite database")
	htmlFile     = flag.String("html", "", "Write an interactive 3D scatter to this HTML file")
	plotDir      = flag.String("plot", "", "Write projection plots (SVG) into this directory")
	pollEvery    = flag.Duration("poll", 10*time.Millisecond, "Line poll interval")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

// devScan is the canned line stream used by -dev: a short cylindrical scan
// with the usual boot chatter mixed in.
var devScan = []string{
	"clk_drv:0x00,q_drv:0x00,d_drv:0x00,cs0_drv:0x00",
	"Scanner initialized",
	"Starting full 3D scan",
	"Scanning at vertical angle 0",
	"80,0,0,0,80",
	"0,80,50,0,80",
	"Scanning at vertical angle 45",
	"-80,0,100,45,80",
	"0,-80,150,45,80",
	"Scan complete!",
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("scanrig %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	profiles := config.DefaultProfiles()
	if *profilesFile != "" {
		var err error
		profiles, err = config.LoadProfiles(*profilesFile)
		if err != nil {
			return err
		}
	}
	profile, err := config.FindProfile(profiles, *profileName)
	if err != nil {
		return err
	}

	classifier, err := profile.Classifier()
	if err != nil {
		return err
	}

	opts := profile.Port
	if *baudRate > 0 {
		opts.BaudRate = *baudRate
	}

	connect := func(ctx context.Context) (scan.LineSource, error) {
		if *devMode {
			log.Printf("dev mode: replaying canned scan")
			return serialmux.NewLineSource(serialmux.NewReplayPort(devScan, 50*time.Millisecond)), nil
		}
		log.Printf("opening %s", *portPath)
		return serialmux.OpenLineSource(*portPath, opts)
	}

	sess := scan.NewSession(scan.SessionConfig{
		Classifier:   classifier,
		StartCommand: []byte(profile.StartCommand),
		Observer: func(ev scan.StatusEvent) {
			log.Printf("rig: %s", ev.Message)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	if err := sess.Connect(ctx, connect); err != nil {
		return err
	}
	log.Printf("reading scan data (Ctrl+C to stop)")

	runErr := sess.Run(ctx, *pollEvery)
	finishedAt := time.Now()

	col := sess.Snapshot()
	log.Printf("session %s: %d points, %d lines skipped",
		sess.State(), col.Len(), sess.LinesSkipped())
	if runErr != nil {
		// Partial results are still written below.
		log.Printf("session error: %v", runErr)
	}

	if col.Len() == 0 {
		return fmt.Errorf("no valid data points were collected")
	}

	if err := writeOutputs(sess, col, startedAt, finishedAt); err != nil {
		return err
	}
	return nil
}

func writeOutputs(sess *scan.Session, col *scan.Collection, startedAt, finishedAt time.Time) error {
	if err := scanfile.SaveCollection(*outFile, col); err != nil {
		return err
	}
	log.Printf("capture saved to %s", *outFile)

	if *csvFile != "" {
		samples := make([]scan.PolarSample, col.Len())
		for i := 0; i < col.Len(); i++ {
			angle, _ := col.VerticalAngleAt(i)
			samples[i] = scan.RecoverPolar(col.PointAt(i), angle)
		}
		if err := scanfile.SavePolarCSV(*csvFile, samples); err != nil {
			return err
		}
		log.Printf("polar csv saved to %s", *csvFile)
	}

	if *dbFile != "" {
		archive, err := db.NewDB(*dbFile)
		if err != nil {
			return err
		}
		defer archive.Close()
		sessionID, err := archive.RecordSession(
			*profileName, sess.State().String(), sess.LinesSkipped(),
			startedAt, finishedAt, col)
		if err != nil {
			return err
		}
		log.Printf("archived session %s", sessionID)
	}

	if *plotDir != "" {
		if err := render.SaveProjections(col, *plotDir, ".svg"); err != nil {
			return err
		}
		log.Printf("projection plots saved to %s", *plotDir)
	}

	if *htmlFile != "" {
		if err := render.SaveScatter3DHTML(col, "Scanner Measurements", *htmlFile); err != nil {
			return err
		}
		log.Printf("3d scatter saved to %s", *htmlFile)
	}

	return nil
}
