package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/pkiviz/pkg/domain"
)

// watchFields maps a watch filter name to the diff fields it covers.
var watchFields = map[string]func(*domain.ViewDiff) bool{
	"selection": func(d *domain.ViewDiff) bool { return d.Selected != nil || d.SelectionCleared },
	"mode":      func(d *domain.ViewDiff) bool { return d.BeginnerMode != nil },
	"flow":      func(d *domain.ViewDiff) bool { return d.FlowID != nil },
	"theme":     func(d *domain.ViewDiff) bool { return d.DarkMode != nil },
	"playback":  func(d *domain.ViewDiff) bool { return d.Playing != nil || d.CurrentStep != nil },
	"size":      func(d *domain.ViewDiff) bool { return d.Width != nil || d.Height != nil },
}

func matchesWatch(diff *domain.ViewDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, field := range watch {
		if match, ok := watchFields[strings.TrimSpace(field)]; ok && match(diff) {
			return true
		}
	}
	return false
}

// SubscribeEvents handles the GET /events request (SSE). The first data
// event carries the whole current view; later events carry diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		watch = strings.Split(q, ",")
	}

	ch, cancel := s.Viewer.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to view updates", "session_id", s.Viewer.ID())
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	s.send(w, domain.Diff(nil, s.Viewer.Snapshot()))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !matchesWatch(diff, watch) {
				continue
			}
			s.send(w, diff)
			flusher.Flush()
		}
	}
}

func (s *Server) send(w http.ResponseWriter, diff *domain.ViewDiff) {
	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("SSE: diff encode failed", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
