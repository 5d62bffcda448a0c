package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbletea"

	"github.com/dimveil/dimveil/internal/config"
	"github.com/dimveil/dimveil/internal/ipc"
)

type field int

const (
	fieldStyle field = iota
	fieldIntensity
	fieldColor
	fieldBlur
	fieldMode
	fieldAnimation
	fieldCornerRadius
	fieldCount
)

// styleCycle is the h/l rotation order for the style field.
var styleCycle = []string{"off", "dim", "blur", "dim+blur"}

// colorCycle is the preset palette for the color field.
var colorCycle = []string{"#000000", "#1a1a2e", "#101418", "#002b36", "#282828"}

// model is the root bubbletea model for the settings panel.
type model struct {
	configPath string
	cfg        *config.Config
	ipcClient  *ipc.Client

	daemonConnected bool
	daemonStyle     string
	daemonVisible   bool
	daemonOverride  bool

	selected  field
	statusMsg string
	lastError string

	intensityBar progress.Model
	blurBar      progress.Model

	width  int
	height int
}

func newGauge() progress.Model {
	return progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(16),
		progress.WithoutPercentage(),
	)
}

func newModel(configPath string) model {
	m := model{
		configPath:   configPath,
		ipcClient:    ipc.NewClient(),
		intensityBar: newGauge(),
		blurBar:      newGauge(),
	}

	m.loadConfig()
	m.refreshDaemonStatus()

	return m
}

func (m *model) loadConfig() {
	var cfg *config.Config
	var err error

	if m.configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(m.configPath)
	}

	if err != nil {
		m.lastError = err.Error()
		if m.cfg == nil {
			m.cfg = config.DefaultConfig()
		}
		return
	}
	m.cfg = cfg
	m.lastError = ""
}

func (m *model) saveConfig() error {
	if m.configPath != "" {
		return m.cfg.SaveTo(m.configPath)
	}
	return m.cfg.Save()
}

func (m *model) refreshDaemonStatus() {
	status, err := m.ipcClient.GetStatus()
	if err != nil {
		m.daemonConnected = false
		return
	}
	m.daemonConnected = true
	m.daemonStyle = status.Style
	m.daemonVisible = status.Visible
	m.daemonOverride = status.Overridden
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "j", "down":
			m.selected = (m.selected + 1) % fieldCount
		case "k", "up":
			m.selected = (m.selected - 1 + fieldCount) % fieldCount

		case "h", "left":
			m.adjust(-1)
		case "l", "right":
			m.adjust(1)

		case "t":
			if m.daemonConnected {
				style, err := m.ipcClient.Toggle()
				if err != nil {
					m.lastError = err.Error()
				} else {
					m.cfg.Style = style
					m.statusMsg = fmt.Sprintf("style: %s", style)
				}
			}
			m.refreshDaemonStatus()

		case "s":
			if err := m.saveConfig(); err != nil {
				m.lastError = err.Error()
			} else {
				m.statusMsg = "config saved"
				m.lastError = ""
			}

		case "r":
			m.loadConfig()
			if m.daemonConnected {
				if err := m.ipcClient.Reload(); err != nil {
					m.lastError = err.Error()
				} else {
					m.statusMsg = "config reloaded"
				}
			}
			m.refreshDaemonStatus()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// adjust shifts the selected field by delta steps, applying the change
// live when the daemon is connected.
func (m *model) adjust(delta int) {
	switch m.selected {
	case fieldStyle:
		m.cfg.Style = cycleString(styleCycle, m.cfg.Style, delta)
		m.applyLive(func() error { return m.ipcClient.SetStyle(m.cfg.Style) })

	case fieldIntensity:
		m.cfg.Intensity = clampFloat(m.cfg.Intensity+float64(delta)*0.05, 0, 1)
		m.applyLive(func() error { return m.ipcClient.SetIntensity(m.cfg.Intensity) })

	case fieldColor:
		m.cfg.Color = cycleString(colorCycle, m.cfg.Color, delta)
		m.applyLive(func() error { return m.ipcClient.SetColor(m.cfg.Color) })

	case fieldBlur:
		m.cfg.BlurAmount = clampFloat(m.cfg.BlurAmount+float64(delta)*0.05, 0, 1)
		m.applyLive(func() error { return m.ipcClient.SetBlur(m.cfg.BlurAmount) })

	case fieldMode:
		if m.cfg.HighlightMode == "app" {
			m.cfg.HighlightMode = "window"
		} else {
			m.cfg.HighlightMode = "app"
		}
		m.applyLive(func() error { return m.ipcClient.SetHighlightMode(m.cfg.HighlightMode) })

	case fieldAnimation:
		m.cfg.AnimationDuration = clampFloat(m.cfg.AnimationDuration+float64(delta)*0.05, 0, 2)
		m.statusMsg = "animation change takes effect on save + reload"

	case fieldCornerRadius:
		m.cfg.CornerRadius += delta * 2
		if m.cfg.CornerRadius < 0 {
			m.cfg.CornerRadius = 0
		}
		if m.cfg.CornerRadius > 64 {
			m.cfg.CornerRadius = 64
		}
		m.statusMsg = "corner radius change takes effect on save + reload"
	}

	m.refreshDaemonStatus()
}

// applyLive pushes a setting to the daemon when connected.
func (m *model) applyLive(apply func() error) {
	if !m.daemonConnected {
		m.statusMsg = "daemon not running; changes apply on save"
		return
	}
	if err := apply(); err != nil {
		m.lastError = err.Error()
		return
	}
	m.lastError = ""
	m.statusMsg = ""
}

func cycleString(values []string, current string, delta int) string {
	idx := 0
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(values)) % len(values)
	return values[idx]
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
