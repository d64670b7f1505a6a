// schema.go — the SQLite schema: Position, Track, Sektor, Session, Lap,
// SektorTime and LogPoint tables, applied once per fresh connection.
package storage

import "database/sql"

const schemaDDL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS Position (
	PositionId INTEGER PRIMARY KEY AUTOINCREMENT,
	Longitude  REAL NOT NULL,
	Latitude   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS Track (
	TrackId    INTEGER PRIMARY KEY AUTOINCREMENT,
	Name       TEXT NOT NULL,
	Finishline INTEGER NOT NULL REFERENCES Position(PositionId),
	Startline  INTEGER REFERENCES Position(PositionId)
);

CREATE TABLE IF NOT EXISTS Sektor (
	SektorId    INTEGER PRIMARY KEY AUTOINCREMENT,
	PositionId  INTEGER NOT NULL REFERENCES Position(PositionId),
	TrackId     INTEGER NOT NULL REFERENCES Track(TrackId),
	SektorIndex INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS Session (
	SessionId INTEGER PRIMARY KEY AUTOINCREMENT,
	TrackId   INTEGER NOT NULL REFERENCES Track(TrackId),
	Date      TEXT NOT NULL,
	Time      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Lap (
	LapId     INTEGER PRIMARY KEY AUTOINCREMENT,
	SessionId INTEGER NOT NULL REFERENCES Session(SessionId) ON DELETE CASCADE,
	LapIndex  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS SektorTime (
	SektorTimeId INTEGER PRIMARY KEY AUTOINCREMENT,
	LapId        INTEGER NOT NULL REFERENCES Lap(LapId) ON DELETE CASCADE,
	Time         TEXT NOT NULL,
	SektorIndex  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS LogPoint (
	LogPointId INTEGER PRIMARY KEY AUTOINCREMENT,
	Idx        INTEGER NOT NULL,
	LapId      INTEGER NOT NULL REFERENCES Lap(LapId) ON DELETE CASCADE,
	Velocity   REAL NOT NULL,
	Longitude  REAL NOT NULL,
	Latitude   REAL NOT NULL,
	Date       TEXT NOT NULL,
	Time       TEXT NOT NULL
);
`

func applySchema(db *sql.DB) error {
	_, err := db.Exec(schemaDDL)
	return err
}
