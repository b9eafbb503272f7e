// Package launch wires the whole application together behind a system
// tray icon: database, classifier, tracker loops and the dashboard web
// server.
package launch

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/getlantern/systray"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/generalpy101/fix-life/classify"
	"github.com/generalpy101/fix-life/config"
	"github.com/generalpy101/fix-life/dataset"
	"github.com/generalpy101/fix-life/notify"
	"github.com/generalpy101/fix-life/query"
	"github.com/generalpy101/fix-life/snapshot"
	"github.com/generalpy101/fix-life/tracker"
	"github.com/generalpy101/fix-life/web"
)

type app struct {
	cfg     *config.Config
	tracker *tracker.Tracker
	server  *web.Server
	addr    string
}

// Run blocks in the systray main loop until the user quits.
func Run(cfg *config.Config) {
	a := &app{cfg: cfg}
	systray.Run(a.onReady, a.onExit)
}

func (a *app) onReady() {
	systray.SetTitle("Game Tracker")
	systray.SetTooltip("Watching your play time")
	if icon, err := os.ReadFile("./icon.ico"); err == nil {
		systray.SetIcon(icon)
	}

	if err := a.startServices(); err != nil {
		log.Error().Err(err).Msg("startup failed")
		systray.Quit()
		return
	}

	mOpen := systray.AddMenuItem("Open dashboard", "Open the web dashboard in the browser")
	mAbout := systray.AddMenuItem("About", "About this application")
	mQuit := systray.AddMenuItem("Quit", "Stop tracking and exit")

	go func() {
		for {
			select {
			case <-mOpen.ClickedCh:
				openBrowser("http://" + a.addr)
			case <-mAbout.ClickedCh:
				systray.SetTitle("Game Tracker v1.0")
				go func() {
					time.Sleep(2 * time.Second)
					systray.SetTitle("Game Tracker")
				}()
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (a *app) startServices() error {
	db, err := query.InitDatabase(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("startServices: %w", err)
	}

	titles := dataset.Load(a.cfg.Classifier.DatasetPath)
	provider := snapshot.NewSystemProvider()
	sampler := classify.NewSystemSampler(clockwork.NewRealClock())
	classifier := classify.NewClassifier(db, titles, sampler, a.cfg.Classifier.Excluded)

	a.tracker = tracker.NewTracker(db, classifier, provider, notify.NewOSNotifier(), tracker.Options{
		Tick:             time.Duration(a.cfg.Tracker.TickSeconds) * time.Second,
		ClassifyInterval: time.Duration(a.cfg.Tracker.ClassifyIntervalSeconds) * time.Second,
		EnforceInterval:  time.Duration(a.cfg.Tracker.EnforceIntervalSeconds) * time.Second,
	})
	if err := a.tracker.Start(); err != nil {
		return fmt.Errorf("startServices: %w", err)
	}

	a.server = web.NewServer(db, provider)
	addr, err := a.server.Start(a.cfg.WebPort)
	if err != nil {
		a.tracker.Stop()
		return fmt.Errorf("startServices: %w", err)
	}
	a.addr = addr
	return nil
}

func (a *app) onExit() {
	if a.tracker != nil {
		a.tracker.Stop()
	}
	if a.server != nil {
		_ = a.server.Close()
	}
	log.Info().Msg("shutting down cleanly")
	os.Exit(0)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Error().Err(err).Str("url", url).Msg("cannot open browser")
	}
}
