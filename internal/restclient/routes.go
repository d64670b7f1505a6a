package restclient

import (
	"encoding/json"
	"fmt"

	"github.com/mFlorianW/rapid/internal/rerrors"
	"github.com/mFlorianW/rapid/internal/types"
)

// SessionCount is the response body of GET /sessions.
type SessionCount struct {
	Count uint64 `json:"count"`
}

// ActiveLap is the response body of GET /activeSession/lap.
type ActiveLap struct {
	LapCount      uint64          `json:"lapCount"`
	CurrentLap    types.Timestamp `json:"currentLap"`
	CurrentSector types.Timestamp `json:"currentSector"`
	LastLap       types.Timestamp `json:"lastLap"`
	LastSector    types.Timestamp `json:"lastSector"`
}

// gpsUpload is the POST /gps request body: lat/lon as strings like Position,
// plus a separate date/time the original doesn't fold into a GpsFix.
type gpsUpload struct {
	Latitude  string          `json:"latitude"`
	Longitude string          `json:"longitude"`
	Date      types.Date      `json:"date"`
	Time      types.Timestamp `json:"time"`
}

// GetSessionCountRequest builds the GET /sessions request.
func GetSessionCountRequest() RestRequest {
	return NewRestRequest(Get, "/sessions")
}

// GetSessionDataRequest builds the GET /sessions/{index}/data request.
func GetSessionDataRequest(index uint64) RestRequest {
	return NewRestRequest(Get, fmt.Sprintf("/sessions/%d/data", index))
}

// GetSessionMetadataRequest builds the GET /sessions/{index}/metadata request.
func GetSessionMetadataRequest(index uint64) RestRequest {
	return NewRestRequest(Get, fmt.Sprintf("/sessions/%d/metadata", index))
}

// DeleteSessionRequest builds the DELETE /sessions/{index} request.
func DeleteSessionRequest(index uint64) RestRequest {
	return NewRestRequest(Delete, fmt.Sprintf("/sessions/%d", index))
}

// PostGpsPositionRequest builds the POST /gps request carrying one fix.
func PostGpsPositionRequest(fix types.GpsFix) (RestRequest, error) {
	body, err := json.Marshal(gpsUpload{
		Latitude:  fmt.Sprintf("%g", fix.Position.Latitude),
		Longitude: fmt.Sprintf("%g", fix.Position.Longitude),
		Date:      fix.Date,
		Time:      fix.Time,
	})
	if err != nil {
		return RestRequest{}, rerrors.NewParseError("gps-upload", fmt.Sprintf("%+v", fix), err)
	}
	return NewRestRequest(Post, "/gps", string(body)), nil
}

// GetActiveTrackRequest builds the GET /activeSession/track request.
func GetActiveTrackRequest() RestRequest {
	return NewRestRequest(Get, "/activeSession/track")
}

// GetActiveLapRequest builds the GET /activeSession/lap request.
func GetActiveLapRequest() RestRequest {
	return NewRestRequest(Get, "/activeSession/lap")
}

// ParseSessionCount decodes the {"count": N} body of GET /sessions.
func ParseSessionCount(data string) (uint64, error) {
	var sc SessionCount
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return 0, rerrors.NewParseError("session-count", data, err)
	}
	return sc.Count, nil
}

// ParseSessionData decodes the body of GET /sessions/{index}/data.
func ParseSessionData(data string) (types.SessionData, error) {
	var s types.SessionData
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return types.SessionData{}, rerrors.NewParseError("session-data", data, err)
	}
	return s, nil
}

// ParseSessionMetadata decodes the body of GET /sessions/{index}/metadata.
func ParseSessionMetadata(data string) (types.SessionMeta, error) {
	var m types.SessionMeta
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return types.SessionMeta{}, rerrors.NewParseError("session-metadata", data, err)
	}
	return m, nil
}

// ParseActiveTrack decodes the body of GET /activeSession/track.
func ParseActiveTrack(data string) (types.TrackData, error) {
	var track types.TrackData
	if err := json.Unmarshal([]byte(data), &track); err != nil {
		return types.TrackData{}, rerrors.NewParseError("active-track", data, err)
	}
	return track, nil
}

// ParseActiveLap decodes the body of GET /activeSession/lap.
func ParseActiveLap(data string) (ActiveLap, error) {
	var lap ActiveLap
	if err := json.Unmarshal([]byte(data), &lap); err != nil {
		return ActiveLap{}, rerrors.NewParseError("active-lap", data, err)
	}
	return lap, nil
}
