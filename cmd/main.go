// rawkvm - agent side of a KVM-style input sharing tool.
// Receives forwarded input and injects it below SendInput when possible.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/kataras/golog"

	"rawkvm/internal/config"
	"rawkvm/internal/input"
	"rawkvm/internal/logging"
	"rawkvm/internal/network"
	"rawkvm/internal/osutils"
	"rawkvm/internal/prereq"
	"rawkvm/internal/rawinput"
	"rawkvm/internal/tray"
)

var (
	version     = "0.1.0"
	showVer     = flag.Bool("version", false, "Show version")
	probe       = flag.Bool("probe", false, "Report which raw injection entry points resolve")
	testMove    = flag.Bool("test-move", false, "Move the cursor in a small square through the injector")
	checkRedist = flag.Bool("check-redist", false, "Check the runtime redistributable and print the installer property")
	hostAddr    = flag.String("host", "", "Override the host address (ip:port)")
	noTray      = flag.Bool("no-tray", false, "Run without the system tray icon")
	configPath  = flag.String("config", "", "Path to the configuration file")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("rawkvm version %s\n", version)
		return
	}

	cfgMgr, err := newConfigManager()
	if err != nil {
		golog.Fatalf("Failed to initialize config: %v", err)
	}
	if err := cfgMgr.Load(); err != nil {
		golog.Warnf("Failed to load config, using defaults: %v", err)
	}
	cfg := cfgMgr.Get()
	logging.SetLevel(cfg.General.LogLevel)

	switch {
	case *checkRedist:
		runRedistCheck(cfg)
	case *probe:
		runProbe()
	case *testMove:
		runMoveTest(cfg)
	default:
		if *hostAddr != "" {
			cfg.Agent.HostAddr = *hostAddr
		}
		if *noTray {
			cfg.General.ShowTray = false
		}
		runService(cfg)
	}
}

func newConfigManager() (*config.Manager, error) {
	if *configPath != "" {
		return config.NewManagerAt(*configPath), nil
	}
	return config.NewManager()
}

func injectorOptions(cfg config.Config) input.Options {
	return input.Options{
		RawEnabled:      cfg.Injection.RawEnabled,
		FallbackEnabled: cfg.Injection.FallbackEnabled,
	}
}

// runRedistCheck prints the installer property and always exits 0 so the
// installer's conditions decide what to do with a failed check.
func runRedistCheck(cfg config.Config) {
	req := prereq.Requirement{Major: cfg.Prereq.RequiredMajor, Minor: cfg.Prereq.RequiredMinor}
	res := prereq.Check(prereq.NewRegistrySource(), req)
	golog.Infof("Redistributable check: %s", res.Reason)
	fmt.Printf("%s=%s\n", prereq.PropertyName, res.PropertyValue())
}

func runProbe() {
	caps := rawinput.Default().Capabilities()
	fmt.Printf("raw mouse injection:    %s\n", availability(caps.Mouse))
	fmt.Printf("raw keyboard injection: %s\n", availability(caps.Keyboard))
	if runtime.GOOS == "windows" {
		fmt.Printf("elevated:               %v\n", osutils.IsElevated())
	}
}

func runMoveTest(cfg config.Config) {
	injector := input.NewInjector(injectorOptions(cfg))
	steps := [][2]int{{50, 0}, {0, 50}, {-50, 0}, {0, -50}}
	for _, s := range steps {
		if err := injector.InjectMouseMove(s[0], s[1]); err != nil {
			golog.Errorf("Move (%d, %d) failed: %v", s[0], s[1], err)
		}
		time.Sleep(250 * time.Millisecond)
	}
	st := injector.Stats()
	fmt.Printf("raw=%d fallback=%d dropped=%d\n", st.Raw, st.Fallback, st.Dropped)
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

func runService(cfg config.Config) {
	golog.Infof("rawkvm %s starting...", version)

	if runtime.GOOS == "windows" && !osutils.IsElevated() {
		golog.Warn("Not elevated: injected input will not reach elevated windows")
	}

	injector := input.NewInjector(injectorOptions(cfg))
	caps := rawinput.Default().Capabilities()
	golog.Infof("Raw injection: mouse=%s keyboard=%s", availability(caps.Mouse), availability(caps.Keyboard))

	var receiver *network.UDPReceiver
	if cfg.Agent.UDPEnabled && cfg.Agent.HostAddr != "" {
		receiver = network.NewUDPReceiver(cfg.Agent.HostAddr)
		receiver.OnInput = func(event input.InputEvent) {
			if err := injector.InjectEvent(event); err != nil {
				golog.Debugf("Inject %s failed: %v", event.Type, err)
			}
		}
		if !receiver.Probe() {
			golog.Warnf("Host %s did not answer yet, registering anyway", cfg.Agent.HostAddr)
		}
		if err := receiver.Start(); err != nil {
			golog.Fatalf("Failed to start UDP receiver: %v", err)
		}
		defer receiver.Stop()
	} else {
		golog.Warn("No host configured, nothing will be received")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if !cfg.General.ShowTray {
		golog.Info("rawkvm running. Press Ctrl+C to stop.")
		<-sigCh
		golog.Info("Shutting down...")
		return
	}

	t := tray.New("rawkvm", "rawkvm - input agent")
	t.AddStatusItem("Raw mouse: " + availability(caps.Mouse))
	t.AddStatusItem("Raw keyboard: " + availability(caps.Keyboard))
	statsID := t.AddStatusItem(formatStats(injector.Stats()))
	t.AddSeparator()
	t.AddMenuItem("Quit", t.Stop)

	done := make(chan struct{})
	t.OnExit(func() { close(done) })

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.SetItemTitle(statsID, formatStats(injector.Stats()))
			case <-sigCh:
				golog.Info("Shutting down...")
				t.Stop()
				return
			case <-done:
				return
			}
		}
	}()

	golog.Info("rawkvm running. Press Ctrl+C to stop.")
	t.Run()
}

func formatStats(st input.Stats) string {
	return fmt.Sprintf("Delivered: %d raw, %d fallback, %d dropped", st.Raw, st.Fallback, st.Dropped)
}
