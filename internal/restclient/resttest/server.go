// Package resttest provides an in-process httptest.Server fixture standing
// in for the engine's HTTP server, which is out of scope for this module.
// It implements the seven GET/POST/DELETE routes from spec §6 against an
// in-memory session/track/GPS state, enough for restclient-based workflow
// tests to drive a full session-download/track/lap scenario without a real
// engine.
package resttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"

	"github.com/mFlorianW/rapid/internal/types"
)

var (
	sessionDataPath     = regexp.MustCompile(`^/sessions/(\d+)/data$`)
	sessionMetadataPath = regexp.MustCompile(`^/sessions/(\d+)/metadata$`)
	sessionDeletePath   = regexp.MustCompile(`^/sessions/(\d+)$`)
)

// Server is the fixture double. Zero value is not usable; construct with New.
type Server struct {
	httpServer *httptest.Server

	mu          sync.Mutex
	sessions    []types.SessionData
	activeTrack types.TrackData
	activeLap   activeLapState
	gpsUploads  []gpsUpload
}

type activeLapState struct {
	LapCount      uint64          `json:"lapCount"`
	CurrentLap    types.Timestamp `json:"currentLap"`
	CurrentSector types.Timestamp `json:"currentSector"`
	LastLap       types.Timestamp `json:"lastLap"`
	LastSector    types.Timestamp `json:"lastSector"`
}

type gpsUpload struct {
	Latitude  string          `json:"latitude"`
	Longitude string          `json:"longitude"`
	Date      types.Date      `json:"date"`
	Time      types.Timestamp `json:"time"`
}

// New starts a fixture server with no sessions and no active track.
func New() *Server {
	s := &Server{}
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionsSubpath)
	mux.HandleFunc("/gps", s.handleGps)
	mux.HandleFunc("/activeSession/track", s.handleActiveTrack)
	mux.HandleFunc("/activeSession/lap", s.handleActiveLap)
	s.httpServer = httptest.NewServer(mux)
	return s
}

// Addr returns "host:port" suitable for restclient.SetServerAddress/SetServerPort.
func (s *Server) Addr() string {
	return s.httpServer.Listener.Addr().String()
}

// Close shuts down the underlying httptest.Server.
func (s *Server) Close() {
	s.httpServer.Close()
}

// SeedSessions replaces the server's stored sessions.
func (s *Server) SeedSessions(sessions []types.SessionData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
}

// SetActiveTrack sets the track returned by GET /activeSession/track.
func (s *Server) SetActiveTrack(track types.TrackData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTrack = track
}

// SetActiveLap sets the state returned by GET /activeSession/lap.
func (s *Server) SetActiveLap(lapCount uint64, currentLap, currentSector, lastLap, lastSector types.Timestamp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeLap = activeLapState{
		LapCount:      lapCount,
		CurrentLap:    currentLap,
		CurrentSector: currentSector,
		LastLap:       lastLap,
		LastSector:    lastSector,
	}
}

// GpsUploadCount returns the number of POST /gps requests received so far.
func (s *Server) GpsUploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gpsUploads)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/sessions" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	count := len(s.sessions)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]uint64{"count": uint64(count)})
}

func (s *Server) handleSessionsSubpath(w http.ResponseWriter, r *http.Request) {
	if m := sessionDataPath.FindStringSubmatch(r.URL.Path); m != nil && r.Method == http.MethodGet {
		s.serveSessionData(w, m[1])
		return
	}
	if m := sessionMetadataPath.FindStringSubmatch(r.URL.Path); m != nil && r.Method == http.MethodGet {
		s.serveSessionMetadata(w, m[1])
		return
	}
	if m := sessionDeletePath.FindStringSubmatch(r.URL.Path); m != nil && r.Method == http.MethodDelete {
		s.serveSessionDelete(w, m[1])
		return
	}
	http.NotFound(w, r)
}

func (s *Server) serveSessionData(w http.ResponseWriter, indexStr string) {
	index, ok := parseIndex(indexStr)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok || index >= len(s.sessions) {
		http.Error(w, "not found", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.sessions[index])
}

func (s *Server) serveSessionMetadata(w http.ResponseWriter, indexStr string) {
	index, ok := parseIndex(indexStr)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok || index >= len(s.sessions) {
		http.Error(w, "not found", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.sessions[index].SessionMeta)
}

func (s *Server) serveSessionDelete(w http.ResponseWriter, indexStr string) {
	index, ok := parseIndex(indexStr)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok || index >= len(s.sessions) {
		http.Error(w, "not found", http.StatusInternalServerError)
		return
	}
	s.sessions = append(s.sessions[:index], s.sessions[index+1:]...)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var upload gpsUpload
	if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
		http.Error(w, "bad request", http.StatusInternalServerError)
		return
	}
	s.mu.Lock()
	s.gpsUploads = append(s.gpsUploads, upload)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleActiveTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	track := s.activeTrack
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleActiveLap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	lap := s.activeLap
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, lap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIndex(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
