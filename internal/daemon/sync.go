package daemon

import (
	"fmt"
	"log/slog"

	"github.com/dimveil/dimveil/internal/overlay"
	"github.com/dimveil/dimveil/internal/platform"
	"github.com/dimveil/dimveil/internal/tracker"
)

// StateSynchronizer corrects drift between what the overlays and tracker
// believe and what the window system reports.
type StateSynchronizer struct {
	backend  platform.Backend
	overlays *overlay.Manager
	windows  *tracker.Tracker
	logger   *slog.Logger
}

// NewStateSynchronizer creates a new state synchronizer.
func NewStateSynchronizer(backend platform.Backend, overlays *overlay.Manager, windows *tracker.Tracker, logger *slog.Logger) *StateSynchronizer {
	return &StateSynchronizer{
		backend:  backend,
		overlays: overlays,
		windows:  windows,
		logger:   logger,
	}
}

// HandleDisplayChange is called when the display layout changes. It
// rebuilds overlay surfaces to match the new layout and recomputes the
// cutout set, since window frames may have moved between displays.
func (s *StateSynchronizer) HandleDisplayChange() {
	s.logger.Info("display layout changed, rebuilding surfaces")

	if err := s.overlays.ReconcileDisplays(); err != nil {
		s.logger.Warn("failed to rebuild surfaces", "error", err)
	}
	s.windows.Refresh()
}

// SyncSurfaces checks the overlay surface count against the current
// display count and rebuilds when they disagree. Surfaces are created
// lazily, so the check only applies while the overlays are visible.
func (s *StateSynchronizer) SyncSurfaces() error {
	if !s.overlays.Visible() {
		return nil
	}

	displays, err := s.backend.Displays()
	if err != nil {
		return fmt.Errorf("get displays: %w", err)
	}

	if s.overlays.SurfaceCount() != len(displays) {
		s.logger.Info("surface count drift detected",
			"surfaces", s.overlays.SurfaceCount(),
			"displays", len(displays))
		if err := s.overlays.ReconcileDisplays(); err != nil {
			return fmt.Errorf("rebuild surfaces: %w", err)
		}
	}

	return nil
}

// SyncTracking recomputes the highlighted window set. Focus events can be
// missed while the X connection is saturated; a refresh is idempotent.
func (s *StateSynchronizer) SyncTracking() {
	s.windows.Refresh()
}
