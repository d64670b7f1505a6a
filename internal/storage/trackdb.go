// trackdb.go — SQLite-backed ITrackDatabase equivalent: index-based access
// to stored tracks, grounded on SqliteTrackDatabase.cpp.
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

var trackLog = rlog.For("storage.track")

// TrackDatabase gives index-based access to persisted tracks.
type TrackDatabase struct {
	conn *Connection
	loop *eventloop.Loop
	pool *workerPool

	mu          sync.Mutex       // guards indexMapper
	writeMu     sync.Mutex       // serializes check-then-write sequences so handleUpdate never re-enters mu
	indexMapper map[uint64]int64 // dense index -> Track.TrackId

	TrackAdded   *eventloop.DeferredSignal[uint64]
	TrackDeleted *eventloop.DeferredSignal[uint64]
}

// NewTrackDatabase opens (or reuses) the shared connection for path.
func NewTrackDatabase(loop *eventloop.Loop, path string) (*TrackDatabase, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}

	db := &TrackDatabase{
		conn:         conn,
		loop:         loop,
		pool:         newWorkerPool(),
		indexMapper:  map[uint64]int64{},
		TrackAdded:   eventloop.NewDeferredSignal[uint64](loop),
		TrackDeleted: eventloop.NewDeferredSignal[uint64](loop),
	}
	db.refreshIndexMapper()
	conn.OnUpdate(db.handleUpdate)
	return db, nil
}

// Close releases the database's reference to the shared connection.
func (d *TrackDatabase) Close() error {
	return d.conn.Close()
}

// GetTrackCount returns the number of stored tracks.
func (d *TrackDatabase) GetTrackCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.indexMapper)
}

// GetTrackCountAsync returns the track count on a worker goroutine.
func (d *TrackDatabase) GetTrackCountAsync() *async.ResultWithValue[int] {
	result := async.NewResultWithValue[int](d.loop)
	d.pool.submit(func() {
		result.SetResultValue(d.GetTrackCount())
		result.SetResult(async.Ok)
	})
	return result
}

// GetTracks synchronously loads every stored track.
func (d *TrackDatabase) GetTracks() []types.TrackData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readTracksLocked()
}

// GetTracksAsync loads every stored track on a worker goroutine.
func (d *TrackDatabase) GetTracksAsync() *async.ResultWithValue[[]types.TrackData] {
	result := async.NewResultWithValue[[]types.TrackData](d.loop)
	d.pool.submit(func() {
		result.SetResultValue(d.GetTracks())
		result.SetResult(async.Ok)
	})
	return result
}

// SaveTrack persists track on a worker goroutine. TrackAdded fires from the
// sqlite3 update hook (see handleUpdate), not from here.
func (d *TrackDatabase) SaveTrack(track types.TrackData) *async.Result {
	result := async.NewResult(d.loop)
	d.pool.submit(func() {
		// writeMu, not mu, guards this: saveTrack's INSERT fires the update
		// hook synchronously on this same goroutine, and handleUpdate takes
		// mu itself to resolve the new row's index. Holding mu here too
		// would deadlock on that re-entry.
		d.writeMu.Lock()
		defer d.writeMu.Unlock()

		if err := d.saveTrack(track); err != nil {
			trackLog.WithError(err).Warn("failed to save track")
			result.SetResult(async.Err, err.Error())
			return
		}
		d.refreshIndexMapper()
		result.SetResult(async.Ok)
	})
	return result
}

// DeleteTrack removes the track under index and its Sektor rows. The
// Position rows the track referenced are not deleted.
// TrackDeleted fires from the sqlite3 update hook, not from here.
func (d *TrackDatabase) DeleteTrack(index uint64) *async.Result {
	result := async.NewResult(d.loop)
	d.pool.submit(func() {
		d.writeMu.Lock()
		defer d.writeMu.Unlock()

		d.mu.Lock()
		trackID, ok := d.indexMapper[index]
		d.mu.Unlock()
		if !ok {
			trackLog.WithField("index", index).Warn("delete requested for unknown track index")
			result.SetResult(async.Err, "track index not found")
			return
		}
		if err := d.deleteTrackRow(trackID); err != nil {
			trackLog.WithError(err).Warn("failed to delete track")
			result.SetResult(async.Err, err.Error())
			return
		}
		d.refreshIndexMapper()
		result.SetResult(async.Ok)
	})
	return result
}

// DeleteAllTracks removes every stored track and its positions. Each
// deleted Track row still fires its own TrackDeleted via the update hook.
func (d *TrackDatabase) DeleteAllTracks() *async.Result {
	result := async.NewResult(d.loop)
	d.pool.submit(func() {
		d.writeMu.Lock()
		defer d.writeMu.Unlock()

		if err := withTx(d.conn.DB(), func(guard *txGuard, tx *sql.Tx) error {
			if _, err := tx.Exec(`DELETE FROM Sektor`); err != nil {
				return err
			}
			if _, err := tx.Exec(`DELETE FROM Track`); err != nil {
				return err
			}
			_, err := tx.Exec(`DELETE FROM Position`)
			return err
		}); err != nil {
			trackLog.WithError(err).Warn("failed to delete all tracks")
			result.SetResult(async.Err, err.Error())
			return
		}
		d.refreshIndexMapper()
		result.SetResult(async.Ok)
	})
	return result
}

func (d *TrackDatabase) refreshIndexMapper() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshIndexMapperLocked()
}

func (d *TrackDatabase) refreshIndexMapperLocked() {
	rows, err := d.conn.DB().Query(`SELECT TrackId FROM Track ORDER BY TrackId ASC`)
	if err != nil {
		trackLog.WithError(err).Warn("failed to refresh track index mapper")
		return
	}
	defer rows.Close()

	mapper := map[uint64]int64{}
	var index uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			trackLog.WithError(err).Warn("failed to scan track id")
			return
		}
		mapper[index] = id
		index++
	}
	d.indexMapper = mapper
}

func (d *TrackDatabase) indexOfTrackID(trackID int64) (uint64, bool) {
	for index, id := range d.indexMapper {
		if id == trackID {
			return index, true
		}
	}
	return 0, false
}

func (d *TrackDatabase) readTracksLocked() []types.TrackData {
	rows, err := d.conn.DB().Query(`
		SELECT Track.TrackId, Track.Name, FL.Latitude, FL.Longitude, SL.Latitude, SL.Longitude
		FROM Track
		LEFT JOIN Position FL ON Track.Finishline = FL.PositionId
		LEFT JOIN Position SL ON Track.Startline = SL.PositionId`)
	if err != nil {
		trackLog.WithError(err).Warn("failed to query tracks")
		return nil
	}
	defer rows.Close()

	var trackIDs []int64
	var tracks []types.TrackData
	for rows.Next() {
		var trackID int64
		var name string
		var finLat, finLon float64
		var startLat, startLon sql.NullFloat64
		if err := rows.Scan(&trackID, &name, &finLat, &finLon, &startLat, &startLon); err != nil {
			trackLog.WithError(err).Warn("failed to scan track row")
			return nil
		}

		startline := types.Position{}
		if startLat.Valid && startLon.Valid {
			startline = types.Position{Latitude: float32(startLat.Float64), Longitude: float32(startLon.Float64)}
		}
		track := types.NewTrackData(name, startline, types.Position{Latitude: float32(finLat), Longitude: float32(finLon)}, nil)
		trackIDs = append(trackIDs, trackID)
		tracks = append(tracks, track)
	}
	// Sections are read only once rows is closed: rows holds the pool's
	// single connection until then, so a nested query would block forever.
	rows.Close()
	for i := range tracks {
		tracks[i].SetSections(d.readSectionsLocked(trackIDs[i]))
	}
	return tracks
}

func (d *TrackDatabase) readSectionsLocked(trackID int64) []types.Position {
	rows, err := d.conn.DB().Query(`
		SELECT PO.Latitude, PO.Longitude FROM Sektor SE
		JOIN Position PO ON SE.PositionId = PO.PositionId
		WHERE SE.TrackId = ? ORDER BY SE.SektorIndex ASC`, trackID)
	if err != nil {
		trackLog.WithError(err).Warn("failed to query track sections")
		return nil
	}
	defer rows.Close()

	var sections []types.Position
	for rows.Next() {
		var lat, lon float64
		if err := rows.Scan(&lat, &lon); err != nil {
			return sections
		}
		sections = append(sections, types.Position{Latitude: float32(lat), Longitude: float32(lon)})
	}
	return sections
}

func (d *TrackDatabase) saveTrack(track types.TrackData) error {
	return withTx(d.conn.DB(), func(guard *txGuard, tx *sql.Tx) error {
		finishlineID, err := savePosition(tx, track.Finishline)
		if err != nil {
			return err
		}

		var startlineID sql.NullInt64
		if !track.Startline.IsZero() {
			id, err := savePosition(tx, track.Startline)
			if err != nil {
				return err
			}
			startlineID = sql.NullInt64{Int64: id, Valid: true}
		}

		res, err := tx.Exec(`INSERT INTO Track (Name, Finishline, Startline) VALUES (?, ?, ?)`,
			track.Name, finishlineID, startlineID)
		if err != nil {
			return err
		}
		trackID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for index, section := range track.Sections() {
			sectionPosID, err := savePosition(tx, section)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(`INSERT INTO Sektor (PositionId, TrackId, SektorIndex) VALUES (?, ?, ?)`,
				sectionPosID, trackID, index); err != nil {
				return err
			}
		}
		return nil
	})
}

func savePosition(tx *sql.Tx, position types.Position) (int64, error) {
	res, err := tx.Exec(`INSERT INTO Position (Longitude, Latitude) VALUES (?, ?)`, position.Longitude, position.Latitude)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *TrackDatabase) deleteTrackRow(trackID int64) error {
	return withTx(d.conn.DB(), func(guard *txGuard, tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM Sektor WHERE TrackId = ?`, trackID); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM Track WHERE TrackId = ?`, trackID)
		return err
	})
}

// handleUpdate runs synchronously, nested inside whichever statement
// triggered it — often mid-transaction — so it never issues a query of its
// own: the pool is pinned to one connection, and a second query from here
// would block forever waiting for a connection the enclosing transaction is
// still holding.
func (d *TrackDatabase) handleUpdate(op int, table string, rowID int64) {
	if table != "Track" {
		return
	}
	switch op {
	case sqlite3.SQLITE_INSERT:
		// AUTOINCREMENT guarantees rowID is larger than every id already in
		// indexMapper, so it always lands at the next dense index.
		d.mu.Lock()
		index := uint64(len(d.indexMapper))
		d.indexMapper[index] = rowID
		d.mu.Unlock()
		d.TrackAdded.Emit(index)
	case sqlite3.SQLITE_DELETE:
		d.mu.Lock()
		index, ok := d.indexOfTrackID(rowID)
		d.mu.Unlock()
		if ok {
			d.TrackDeleted.Emit(index)
		}
	}
}
