// sessiondb.go — SQLite-backed ISessionDatabase equivalent: index-based
// access to stored sessions, with synchronous and async (worker-pool +
// AsyncResult) reads, grounded on SqliteSessionDatabase.cpp.
package storage

import (
	"database/sql"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/mFlorianW/rapid/internal/async"
	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/rlog"
	"github.com/mFlorianW/rapid/internal/types"
)

var sessionLog = rlog.For("storage.session")

// SessionDatabase gives index-based access to persisted sessions. Indices
// are dense, 0...Count()-1, with
// index 0 the oldest stored session. Deleting a session re-numbers every
// index above it, mirroring the original's index mapper.
type SessionDatabase struct {
	conn *Connection
	loop *eventloop.Loop
	pool *workerPool

	mu          sync.Mutex       // guards indexMapper
	writeMu     sync.Mutex       // serializes check-then-write sequences so handleUpdate never re-enters mu
	indexMapper map[uint64]int64 // dense index -> Session.SessionId

	// writeSessionID is the Session row currently being written by
	// saveSession/updateSession. handleUpdate reads it (synchronously, on
	// the same goroutine, under writeMu) to resolve which session a Lap
	// insert belongs to, instead of querying the database — a query from
	// inside the update hook would try to check out a second connection
	// from a pool pinned to one, while the enclosing transaction is still
	// holding it.
	writeSessionID int64

	SessionAdded   *eventloop.DeferredSignal[uint64]
	SessionUpdated *eventloop.DeferredSignal[uint64]
	SessionDeleted *eventloop.DeferredSignal[uint64]
}

// NewSessionDatabase opens (or reuses) the shared connection for path and
// returns a SessionDatabase bound to it. Signals are delivered on loop.
func NewSessionDatabase(loop *eventloop.Loop, path string) (*SessionDatabase, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}

	db := &SessionDatabase{
		conn:           conn,
		loop:           loop,
		pool:           newWorkerPool(),
		indexMapper:    map[uint64]int64{},
		SessionAdded:   eventloop.NewDeferredSignal[uint64](loop),
		SessionUpdated: eventloop.NewDeferredSignal[uint64](loop),
		SessionDeleted: eventloop.NewDeferredSignal[uint64](loop),
	}
	db.refreshIndexMapper()
	conn.OnUpdate(db.handleUpdate)
	return db, nil
}

// Close releases the database's reference to the shared connection.
func (d *SessionDatabase) Close() error {
	return d.conn.Close()
}

// GetSessionCount returns the number of stored sessions.
func (d *SessionDatabase) GetSessionCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.indexMapper)
}

// GetSessionByIndex synchronously loads the session at index, blocking the
// caller. Returns false if index is out of range.
func (d *SessionDatabase) GetSessionByIndex(index uint64) (types.SessionData, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readSession(index)
}

// GetSessionByIndexAsync loads the session at index on a worker goroutine.
func (d *SessionDatabase) GetSessionByIndexAsync(index uint64) *async.ResultWithValue[types.SessionData] {
	result := async.NewResultWithValue[types.SessionData](d.loop)
	d.pool.submit(func() {
		d.mu.Lock()
		session, ok := d.readSession(index)
		d.mu.Unlock()
		if !ok {
			result.SetResult(async.Err, "session index not found")
			return
		}
		result.SetResultValue(session)
		result.SetResult(async.Ok)
	})
	return result
}

// GetSessionByMetadataAsync loads the session matching metadata's date and
// time on a worker goroutine. The track is not compared.
func (d *SessionDatabase) GetSessionByMetadataAsync(metadata types.SessionMeta) *async.ResultWithValue[types.SessionData] {
	result := async.NewResultWithValue[types.SessionData](d.loop)
	d.pool.submit(func() {
		d.mu.Lock()
		session, ok := d.readSessionByMetaData(metadata)
		d.mu.Unlock()
		if !ok {
			result.SetResult(async.Err, "no session matches metadata")
			return
		}
		result.SetResultValue(session)
		result.SetResult(async.Ok)
	})
	return result
}

// GetSessionMetaDataByIndexAsync loads only the session's metadata (track,
// date, time) at index, on a worker goroutine.
func (d *SessionDatabase) GetSessionMetaDataByIndexAsync(index uint64) *async.ResultWithValue[types.SessionMeta] {
	result := async.NewResultWithValue[types.SessionMeta](d.loop)
	d.pool.submit(func() {
		d.mu.Lock()
		meta, ok := d.readSessionMetaData(index)
		d.mu.Unlock()
		sessionLog.WithField("index", index).Info("session metadata requested")
		if !ok {
			result.SetResult(async.Err, "session index not found")
			return
		}
		result.SetResultValue(meta)
		result.SetResult(async.Ok)
	})
	return result
}

// StoreSession persists session on a worker goroutine. If a session already
// exists for session's date/time, only newer laps (beyond what's already
// stored) are appended — existing laps and the session's own metadata are
// never rewritten. SessionAdded/SessionUpdated fire from the sqlite3 update
// hook (see handleUpdate), not from here.
func (d *SessionDatabase) StoreSession(session types.SessionData) *async.Result {
	result := async.NewResult(d.loop)
	d.pool.submit(func() {
		// writeMu, not mu, guards this: saveSession/updateSession's INSERTs
		// fire the update hook synchronously on this same goroutine, and
		// handleUpdate takes mu itself to resolve the changed row's index.
		// Holding mu here too would deadlock on that re-entry.
		d.writeMu.Lock()
		defer d.writeMu.Unlock()

		sessionLog.WithField("track", session.Track.Name).
			WithField("date", session.Date.String()).
			WithField("time", session.Time.String()).
			Info("storing session")

		sessionID, exists := d.readSessionID(session.SessionMeta)
		var err error
		if exists {
			err = d.updateSession(sessionID, session)
		} else {
			err = d.saveSession(session)
		}
		if err != nil {
			sessionLog.WithError(err).Warn("failed to store session")
			result.SetResult(async.Err, err.Error())
			return
		}
		d.refreshIndexMapper()
		result.SetResult(async.Ok)
	})
	return result
}

// DeleteSession removes the session under index. A no-op if index is out of
// range. SessionDeleted fires from the sqlite3 update hook, not from here.
func (d *SessionDatabase) DeleteSession(index uint64) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.mu.Lock()
	sessionID, ok := d.indexMapper[index]
	d.mu.Unlock()
	if !ok {
		sessionLog.WithField("index", index).Warn("delete requested for unknown session index")
		return
	}
	if _, err := d.conn.DB().Exec(`DELETE FROM Session WHERE SessionId = ?`, sessionID); err != nil {
		sessionLog.WithError(err).Warn("failed to delete session")
		return
	}
	d.refreshIndexMapper()
}

func (d *SessionDatabase) refreshIndexMapper() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshIndexMapperLocked()
}

func (d *SessionDatabase) refreshIndexMapperLocked() {
	rows, err := d.conn.DB().Query(`SELECT SessionId FROM Session ORDER BY SessionId ASC`)
	if err != nil {
		sessionLog.WithError(err).Warn("failed to refresh session index mapper")
		return
	}
	defer rows.Close()

	mapper := map[uint64]int64{}
	var index uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			sessionLog.WithError(err).Warn("failed to scan session id")
			return
		}
		mapper[index] = id
		index++
	}
	d.indexMapper = mapper
}

func (d *SessionDatabase) readSession(index uint64) (types.SessionData, bool) {
	meta, ok := d.readSessionMetaData(index)
	if !ok {
		return types.SessionData{}, false
	}
	sessionID := d.indexMapper[index]
	laps, ok := d.readLapsOfSession(sessionID)
	if !ok {
		return types.SessionData{}, false
	}
	session := types.NewSessionData(meta.Track, meta.Date, meta.Time)
	session.ID = meta.ID
	for _, lap := range laps {
		session.AddLap(lap)
	}
	return session, true
}

func (d *SessionDatabase) readSessionMetaData(index uint64) (types.SessionMeta, bool) {
	sessionID, ok := d.indexMapper[index]
	if !ok {
		return types.SessionMeta{}, false
	}

	var dateStr, timeStr string
	var trackID int64
	row := d.conn.DB().QueryRow(`SELECT Date, Time, TrackId FROM Session WHERE SessionId = ?`, sessionID)
	if err := row.Scan(&dateStr, &timeStr, &trackID); err != nil {
		sessionLog.WithError(err).Warn("failed to query session metadata")
		return types.SessionMeta{}, false
	}

	track, ok := d.readTrack(trackID)
	if !ok {
		return types.SessionMeta{}, false
	}

	date, _ := types.ParseDate(dateStr)
	timestamp, _ := types.ParseTimestamp(timeStr)
	return types.SessionMeta{Track: track, Date: date, Time: timestamp, ID: uint64(sessionID)}, true
}

func (d *SessionDatabase) readSessionByMetaData(metadata types.SessionMeta) (types.SessionData, bool) {
	var sessionID int64
	row := d.conn.DB().QueryRow(
		`SELECT SessionId FROM Session WHERE Date = ? AND Time = ?`,
		metadata.Date.String(), metadata.Time.String(),
	)
	if err := row.Scan(&sessionID); err != nil {
		sessionLog.WithError(err).WithField("date", metadata.Date.String()).WithField("time", metadata.Time.String()).
			Warn("no session matches metadata")
		return types.SessionData{}, false
	}

	index, ok := d.indexOfSessionID(sessionID)
	if !ok {
		return types.SessionData{}, false
	}
	return d.readSession(index)
}

func (d *SessionDatabase) readSessionID(meta types.SessionMeta) (int64, bool) {
	var id int64
	row := d.conn.DB().QueryRow(`SELECT SessionId FROM Session WHERE Date = ? AND Time = ?`,
		meta.Date.String(), meta.Time.String())
	if err := row.Scan(&id); err != nil {
		return 0, false
	}
	return id, true
}

func (d *SessionDatabase) indexOfSessionID(sessionID int64) (uint64, bool) {
	for index, id := range d.indexMapper {
		if id == sessionID {
			return index, true
		}
	}
	return 0, false
}

func (d *SessionDatabase) readLapsOfSession(sessionID int64) ([]types.LapData, bool) {
	lapIDs, err := d.readLapIDs(sessionID)
	if err != nil {
		sessionLog.WithError(err).Warn("failed to query lap ids")
		return nil, false
	}

	laps := make([]types.LapData, 0, len(lapIDs))
	for _, lapID := range lapIDs {
		lap := types.LapData{}

		sectorRows, err := d.conn.DB().Query(
			`SELECT Time FROM SektorTime WHERE LapId = ? ORDER BY SektorIndex ASC`, lapID)
		if err != nil {
			sessionLog.WithError(err).Warn("failed to query sector times")
			return nil, false
		}
		for sectorRows.Next() {
			var timeStr string
			if err := sectorRows.Scan(&timeStr); err != nil {
				sectorRows.Close()
				return nil, false
			}
			t, _ := types.ParseTimestamp(timeStr)
			lap.AddSectorTime(t)
		}
		sectorRows.Close()

		pointRows, err := d.conn.DB().Query(
			`SELECT Longitude, Latitude, Velocity, Date, Time FROM LogPoint WHERE LapId = ? ORDER BY Idx`, lapID)
		if err != nil {
			sessionLog.WithError(err).Warn("failed to query log points")
			return nil, false
		}
		for pointRows.Next() {
			var longitude, latitude, velocity float64
			var dateStr, timeStr string
			if err := pointRows.Scan(&longitude, &latitude, &velocity, &dateStr, &timeStr); err != nil {
				pointRows.Close()
				return nil, false
			}
			date, _ := types.ParseDate(dateStr)
			timestamp, _ := types.ParseTimestamp(timeStr)
			lap.AddPosition(types.GpsFix{
				Position: types.Position{Latitude: float32(latitude), Longitude: float32(longitude)},
				Time:     timestamp,
				Date:     date,
				Velocity: types.NewVelocityFromMPS(velocity),
			})
		}
		pointRows.Close()

		laps = append(laps, lap)
	}
	return laps, true
}

func (d *SessionDatabase) readLapIDs(sessionID int64) ([]int64, error) {
	rows, err := d.conn.DB().Query(`SELECT LapId FROM Lap WHERE SessionId = ? ORDER BY LapIndex ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (d *SessionDatabase) readTrack(trackID int64) (types.TrackData, bool) {
	var name string
	var finLat, finLon float64
	var startLat, startLon sql.NullFloat64
	row := d.conn.DB().QueryRow(`
		SELECT Track.Name, FL.Latitude, FL.Longitude, SL.Latitude, SL.Longitude
		FROM Track
		LEFT JOIN Position FL ON Track.Finishline = FL.PositionId
		LEFT JOIN Position SL ON Track.Startline = SL.PositionId
		WHERE Track.TrackId = ?`, trackID)
	if err := row.Scan(&name, &finLat, &finLon, &startLat, &startLon); err != nil {
		sessionLog.WithError(err).WithField("track_id", trackID).Warn("failed to query track")
		return types.TrackData{}, false
	}

	startline := types.Position{}
	if startLat.Valid && startLon.Valid {
		startline = types.Position{Latitude: float32(startLat.Float64), Longitude: float32(startLon.Float64)}
	}
	track := types.NewTrackData(name, startline, types.Position{Latitude: float32(finLat), Longitude: float32(finLon)}, nil)

	sectorRows, err := d.conn.DB().Query(`
		SELECT PO.Latitude, PO.Longitude FROM Sektor SE
		JOIN Position PO ON SE.PositionId = PO.PositionId
		WHERE SE.TrackId = ? ORDER BY SE.SektorIndex ASC`, trackID)
	if err != nil {
		sessionLog.WithError(err).Warn("failed to query track sections")
		return types.TrackData{}, false
	}
	defer sectorRows.Close()

	var sections []types.Position
	for sectorRows.Next() {
		var lat, lon float64
		if err := sectorRows.Scan(&lat, &lon); err != nil {
			return types.TrackData{}, false
		}
		sections = append(sections, types.Position{Latitude: float32(lat), Longitude: float32(lon)})
	}
	track.SetSections(sections)
	return track, true
}

// saveSession inserts a brand-new session with all of its laps.
func (d *SessionDatabase) saveSession(session types.SessionData) error {
	return withTx(d.conn.DB(), func(guard *txGuard, tx *sql.Tx) error {
		var trackID int64
		if err := tx.QueryRow(`SELECT TrackId FROM Track WHERE Track.Name = ?`, session.Track.Name).Scan(&trackID); err != nil {
			return err
		}

		res, err := tx.Exec(`INSERT INTO Session (TrackId, Date, Time) VALUES (?, ?, ?)`,
			trackID, session.Date.String(), session.Time.String())
		if err != nil {
			return err
		}
		sessionID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		d.writeSessionID = sessionID
		laps := session.Laps()
		for lapIndex, lap := range laps {
			if err := saveLap(tx, sessionID, lapIndex, lap); err != nil {
				return err
			}
		}
		return nil
	})
}

// updateSession only appends laps beyond what's already stored for
// sessionID — other parts of a session are never changed once stored.
func (d *SessionDatabase) updateSession(sessionID int64, session types.SessionData) error {
	storedLaps, err := d.readLapIDs(sessionID)
	if err != nil {
		return err
	}
	newLaps := session.Laps()
	if len(newLaps) <= len(storedLaps) {
		return nil
	}

	d.writeSessionID = sessionID
	return withTx(d.conn.DB(), func(guard *txGuard, tx *sql.Tx) error {
		for lapIndex := len(storedLaps); lapIndex < len(newLaps); lapIndex++ {
			if err := saveLap(tx, sessionID, lapIndex, newLaps[lapIndex]); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveLap(tx *sql.Tx, sessionID int64, lapIndex int, lap types.LapData) error {
	res, err := tx.Exec(`INSERT INTO Lap (SessionId, LapIndex) VALUES (?, ?)`, sessionID, lapIndex)
	if err != nil {
		return err
	}
	lapID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for sectorIndex, sectorTime := range lap.SectorTimes() {
		if _, err := tx.Exec(`INSERT INTO SektorTime (LapId, Time, SektorIndex) VALUES (?, ?, ?)`,
			lapID, sectorTime.String(), sectorIndex); err != nil {
			return err
		}
	}

	for idx, fix := range lap.Positions() {
		if _, err := tx.Exec(
			`INSERT INTO LogPoint (Idx, LapId, Velocity, Longitude, Latitude, Date, Time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			idx, lapID, fix.Velocity.MPS(), fix.Position.Longitude, fix.Position.Latitude, fix.Date.String(), fix.Time.String(),
		); err != nil {
			return err
		}
	}
	return nil
}

// handleUpdate reacts to the sqlite3 update hook: session inserts/deletes
// update the index mapper and re-emit the corresponding signal, and lap
// inserts are translated into a SessionUpdated for their owning session.
// It runs synchronously, on the same goroutine, nested inside whichever
// statement triggered it — often mid-transaction — so it never issues a
// query of its own: the pool is pinned to one connection, and a second
// query from here would block forever waiting for a connection the
// enclosing transaction is still holding.
func (d *SessionDatabase) handleUpdate(op int, table string, rowID int64) {
	switch table {
	case "Session":
		switch op {
		case sqlite3.SQLITE_INSERT:
			// AUTOINCREMENT guarantees rowID is larger than every id
			// already in indexMapper, so it always lands at the next
			// dense index.
			d.mu.Lock()
			index := uint64(len(d.indexMapper))
			d.indexMapper[index] = rowID
			d.mu.Unlock()
			d.SessionAdded.Emit(index)
		case sqlite3.SQLITE_DELETE:
			d.mu.Lock()
			index, ok := d.indexOfSessionID(rowID)
			d.mu.Unlock()
			if ok {
				d.SessionDeleted.Emit(index)
			}
		}
	case "Lap":
		if op != sqlite3.SQLITE_INSERT {
			return
		}
		d.mu.Lock()
		index, ok := d.indexOfSessionID(d.writeSessionID)
		d.mu.Unlock()
		if ok {
			d.SessionUpdated.Emit(index)
		}
	}
}
