// connection.go — per-path connection cache, mirroring Connection::connection
// in the original storage layer: a database file gets exactly one shared
// *Connection per process so update-hook notifications stay coherent.
package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-sqlite3"

	"github.com/mFlorianW/rapid/internal/rlog"
)

var connLog = rlog.For("storage.connection")

const sqliteDriverName = "rapid-sqlite3"

var driverSeq uint64

// UpdateHook is invoked from the sqlite3 update-hook callback whenever a row
// in table is inserted, updated or deleted. op is one of the
// sqlite3.SQLITE_{INSERT,UPDATE,DELETE} constants.
type UpdateHook func(op int, table string, rowID int64)

// Connection owns a single *sql.DB opened against one database file. The
// pool is pinned to exactly one underlying connection, and the sqlite3
// update hook is registered on that connection via the driver's ConnectHook
// the moment the pool opens it — so every statement any caller runs through
// DB() shares the one connection the hook fires on. Connections are
// refcounted per path by Open/Close so every caller touching the same file
// observes the same update-hook stream.
type Connection struct {
	Path string

	db     *sql.DB
	hookMu sync.Mutex
	hooks  []UpdateHook
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Connection{}
	refCounts  = map[string]int{}
)

// Open returns the shared Connection for path, opening and migrating it on
// first use. Every Open must be matched with a Close; the underlying
// database is only closed once the refcount drops to zero.
func Open(path string) (*Connection, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if conn, ok := registry[path]; ok {
		refCounts[path]++
		return conn, nil
	}

	conn, err := newConnection(path)
	if err != nil {
		return nil, err
	}
	registry[path] = conn
	refCounts[path] = 1
	return conn, nil
}

// Close releases the caller's reference. The database file handle is closed
// once no callers hold a reference to it anymore.
func (c *Connection) Close() error {
	registryMu.Lock()
	defer registryMu.Unlock()

	refCounts[c.Path]--
	if refCounts[c.Path] > 0 {
		return nil
	}
	delete(registry, c.Path)
	delete(refCounts, c.Path)

	if err := c.db.Close(); err != nil {
		connLog.WithField("path", c.Path).WithError(err).Warn("failed to close connection")
		return err
	}
	return nil
}

func newConnection(path string) (*Connection, error) {
	conn := &Connection{Path: path}

	driverName := registerDriverFor(conn)
	db, err := sql.Open(driverName, path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// SQLite has no real server-side concurrency, and sqlite3's update hook
	// is per-connection: pinning the pool to exactly one connection is what
	// makes the ConnectHook-registered hook below fire for every statement
	// any caller runs through DB(), instead of only for a connection nothing
	// else ever uses.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	conn.db = db
	return conn, nil
}

// registerDriverFor registers a uniquely-named sqlite3 driver whose
// ConnectHook wires newly-opened connections straight into conn's update
// hook dispatch, and returns the driver name to pass to sql.Open. Each
// Connection gets its own driver registration since the hook closure is
// bound to that Connection.
func registerDriverFor(conn *Connection) string {
	name := fmt.Sprintf("%s-%d", sqliteDriverName, atomic.AddUint64(&driverSeq, 1))
	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(sqliteConn *sqlite3.SQLiteConn) error {
			sqliteConn.RegisterUpdateHook(func(op int, _ string, table string, rowID int64) {
				conn.dispatchUpdate(op, table, rowID)
			})
			return nil
		},
	})
	return name
}

// DB returns the underlying *sql.DB every statement runs through.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// OnUpdate registers a callback invoked on every future row change. Multiple
// hooks may be registered; each is called for every change.
func (c *Connection) OnUpdate(hook UpdateHook) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.hooks = append(c.hooks, hook)
}

func (c *Connection) dispatchUpdate(op int, table string, rowID int64) {
	c.hookMu.Lock()
	hooks := append([]UpdateHook(nil), c.hooks...)
	c.hookMu.Unlock()

	for _, hook := range hooks {
		hook(op, table, rowID)
	}
}
