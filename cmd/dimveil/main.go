package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dimveil/dimveil/internal/config"
	"github.com/dimveil/dimveil/internal/daemon"
	"github.com/dimveil/dimveil/internal/dimmer"
	"github.com/dimveil/dimveil/internal/hotkeys"
	"github.com/dimveil/dimveil/internal/ipc"
	"github.com/dimveil/dimveil/internal/overlay"
	"github.com/dimveil/dimveil/internal/platform"
	"github.com/dimveil/dimveil/internal/tracker"
	"github.com/dimveil/dimveil/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: dimveil daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: dimveil daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "set":
		os.Exit(runSet(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dimveil <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the dimveil daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  toggle              Toggle dimming on or off")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  set style           Set the dimming style (off|dim|blur|dim+blur)")
	fmt.Fprintln(w, "  set intensity       Set the dim strength (0..1)")
	fmt.Fprintln(w, "  set color           Set the dim color (hex)")
	fmt.Fprintln(w, "  set blur            Set the blur amount (0..1)")
	fmt.Fprintln(w, "  set mode            Set the highlight mode (window|app)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  displays            List displays known to the daemon")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive settings panel")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'dimveil <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dimveil status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("style:          %s\n", status.Style)
	fmt.Printf("visible:        %v\n", status.Visible)
	fmt.Printf("intensity:      %.2f\n", status.Intensity)
	fmt.Printf("color:          %s\n", status.Color)
	fmt.Printf("blur_amount:    %.2f\n", status.BlurAmount)
	fmt.Printf("highlight_mode: %s\n", status.HighlightMode)
	fmt.Printf("overridden:     %v\n", status.Overridden)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dimveil toggle")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle dimming; off restores the last non-off style.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "toggle takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	style, err := client.Toggle()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("style: %s\n", style)
	return 0
}

func printSetUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  dimveil set style <off|dim|blur|dim+blur>")
	fmt.Fprintln(w, "  dimveil set intensity <0..1>")
	fmt.Fprintln(w, "  dimveil set color <#rrggbb>")
	fmt.Fprintln(w, "  dimveil set blur <0..1>")
	fmt.Fprintln(w, "  dimveil set mode <window|app>")
}

func runSet(args []string) int {
	if len(args) == 0 {
		printSetUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printSetUsage(os.Stdout)
		return 0
	}
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "set %s requires a value\n\n", args[0])
		printSetUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()

	var err error
	switch args[0] {
	case "style":
		err = client.SetStyle(args[1])
	case "intensity":
		var v float64
		v, err = strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid intensity %q\n", args[1])
			return 2
		}
		err = client.SetIntensity(v)
	case "color":
		err = client.SetColor(args[1])
	case "blur":
		var v float64
		v, err = strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid blur amount %q\n", args[1])
			return 2
		}
		err = client.SetBlur(v)
	case "mode":
		err = client.SetHighlightMode(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown set key: %s\n\n", args[0])
		printSetUsage(os.Stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dimveil displays")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List displays known to the daemon.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "displays takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, d := range data.Displays {
		marker := " "
		if d.Primary {
			marker = "*"
		}
		fmt.Printf("%s %-10s %dx%d at (%d, %d)\n", marker, d.Name, d.Width, d.Height, d.X, d.Y)
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dimveil reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reload the daemon configuration from disk.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  dimveil config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  dimveil config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/dimveil/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/dimveil/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else {
			var err error
			if *path == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFromPath(*path)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/dimveil/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: dimveil tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive settings panel. Changes apply live when the daemon")
		fmt.Fprintln(os.Stderr, "is running; otherwise values are edited in the config file only.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Navigate settings")
		fmt.Fprintln(os.Stderr, "  h/l, ←/→  Adjust selected value")
		fmt.Fprintln(os.Stderr, "  t         Toggle dimming")
		fmt.Fprintln(os.Stderr, "  s         Save values to config")
		fmt.Fprintln(os.Stderr, "  r         Reload config (and daemon when running)")
		fmt.Fprintln(os.Stderr, "  q, Esc    Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	t := tui.New(*path)
	if err := t.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (style: %s, intensity: %.2f)", cfg.Style, cfg.Intensity)

	// Connect to display server
	backend, err := platform.NewX11BackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Close()

	if !backend.Connection().ShapeSupported() {
		log.Println("Warning: Shape extension unavailable; overlays will cover active windows and intercept clicks")
	}
	if !backend.Connection().CompositorActive() {
		log.Println("Warning: no compositor detected; opacity and fades will not render")
	}

	log.Println("dimveil daemon started successfully")

	// Build the engine: overlay surfaces, window tracker, coordinator
	settings := cfg.OverlaySettings()
	overlays := overlay.NewManager(backend, settings)
	windows := tracker.New(backend, cfg.ParsedMode(), cfg.ExcludedApps)
	coord := dimmer.New(overlays, windows, cfg.ParsedStyle(), settings, cfg.ParsedMode())

	// Desktop focus suspends dimming until a window takes focus again
	desktopWatch := dimmer.NewDesktopWatch(backend, coord)
	if err := desktopWatch.Start(); err != nil {
		log.Printf("Warning: Failed to watch desktop focus: %v", err)
	}

	// Setup hotkey handler
	hotkeyHandler, err := hotkeys.NewHandler(backend, coord)
	if err != nil {
		log.Fatalf("Failed to create hotkey handler: %v", err)
	}
	if cfg.ToggleHotkey != "" {
		if err := hotkeyHandler.RegisterToggle(cfg.ToggleHotkey); err != nil {
			log.Printf("Warning: Failed to register toggle hotkey: %v", err)
		} else {
			log.Printf("Toggle hotkey registered: %s", cfg.ToggleHotkey)
		}
	}
	if cfg.RevealHotkey != "" {
		if err := hotkeyHandler.RegisterReveal(cfg.RevealHotkey); err != nil {
			log.Printf("Warning: Failed to register reveal hotkey: %v", err)
		} else {
			log.Printf("Reveal hotkey registered: %s", cfg.RevealHotkey)
		}
	}

	// Create config reload channel
	reloadChan := make(chan struct{}, 1)

	// Start IPC server
	ipcServer, err := ipc.NewServer(cfg, coord, backend, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// Setup state synchronizer and reconciler
	syncLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))
	stateSynchronizer := daemon.NewStateSynchronizer(backend, overlays, windows, syncLogger)

	// Rebuild surfaces on display layout changes
	if err := backend.WatchDisplays(stateSynchronizer.HandleDisplayChange); err != nil {
		log.Printf("Warning: Failed to watch display changes: %v", err)
	}

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   syncLogger,
	}, stateSynchronizer)

	// Start reconciler in background
	reconcilerCtx, reconcilerCancel := context.WithCancel(context.Background())
	defer reconcilerCancel()
	go reconciler.Run(reconcilerCtx)

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	applyConfig := func(newCfg *config.Config) {
		coord.ApplyAppearance(newCfg.OverlaySettings())
		coord.SetExcludedApps(newCfg.ExcludedApps)
		coord.SetHighlightMode(newCfg.ParsedMode())
	}

	// Handle signals and config reloads
	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}

					// Update config in IPC server
					ipcServer.UpdateConfig(newCfg)
					applyConfig(newCfg)

					log.Println("Config reloaded successfully")

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down dimveil daemon...")
					reconcilerCancel()
					ipcServer.Stop()
					overlays.Close()
					os.Exit(0)
				}

			case <-reloadChan:
				// Config was reloaded via IPC, update components
				applyConfig(ipcServer.GetConfig())
			}
		}
	}()

	// Start event loop (blocking)
	log.Println("Entering event loop...")
	backend.Run()
}
