/* Package store indexes loaded maps into a sqlite database so that cells &
tile properties of many (or very large) maps can be queried without keeping
them all in memory.
*/
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/voidshard/tmx"
)

const (
	sqlPutMap = `INSERT INTO maps (name, orientation, width, height, tilewidth, tileheight)
	VALUES (:name, :orientation, :width, :height, :tilewidth, :tileheight)
	ON CONFLICT (name) DO UPDATE SET orientation=EXCLUDED.orientation, width=EXCLUDED.width,
	height=EXCLUDED.height, tilewidth=EXCLUDED.tilewidth, tileheight=EXCLUDED.tileheight;`
	sqlPutCell = `INSERT INTO cells (id, map, layer, x, y, gid, hflip, vflip, dflip)
	VALUES (:id, :map, :layer, :x, :y, :gid, :hflip, :vflip, :dflip)
	ON CONFLICT (id) DO UPDATE SET gid=EXCLUDED.gid, hflip=EXCLUDED.hflip, vflip=EXCLUDED.vflip, dflip=EXCLUDED.dflip;`
	sqlPutProps = `INSERT INTO properties (id, map, gid, data) VALUES (:id, :map, :gid, :data)
	ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data;`
)

// New creates a store in a randomly named database in the os tempdir.
func New() (*Store, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	fname := filepath.Join(os.TempDir(), fmt.Sprintf("tmxstore.%d.sqlite", rng.Intn(1000000)))
	return Open(fname)
}

// Open a store given it's filename (database file) on disk.
// Will create if it doesn't exist.
func Open(fname string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", fname)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, filename: fname}
	return s, s.init()
}

// Store holds the cells of any number of maps, by map name.
type Store struct {
	filename string
	db       *sqlx.DB
}

// MapInfo is the stored summary of a map
type MapInfo struct {
	Name        string `db:"name"`
	Orientation string `db:"orientation"`
	Width       int    `db:"width"`
	Height      int    `db:"height"`
	TileWidth   int    `db:"tilewidth"`
	TileHeight  int    `db:"tileheight"`
}

// Cell is a single stored tile layer cell.
type Cell struct {
	ID    string `db:"id"`
	Map   string `db:"map"`
	Layer string `db:"layer"`
	X     int    `db:"x"`
	Y     int    `db:"y"`
	GID   uint32 `db:"gid"`
	HFlip bool   `db:"hflip"`
	VFlip bool   `db:"vflip"`
	DFlip bool   `db:"dflip"`
}

// Flips returns the flip flags of the cell
func (c Cell) Flips() tmx.Flips {
	return tmx.Flips{Horizontal: c.HFlip, Vertical: c.VFlip, Diagonal: c.DFlip}
}

// Filename returns the path to the database on disk
func (s *Store) Filename() string {
	return s.filename
}

// Close the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes all tile layers of `m` under `name`, replacing whatever was
// stored under that name before. Empty cells aren't stored.
func (s *Store) Put(name string, m *tmx.Map) error {
	txn, err := s.db.Beginx()
	if err != nil {
		return err
	}

	err = s.put(txn, name, m)
	if err != nil {
		txn.Rollback()
		return err
	}

	return txn.Commit()
}

func (s *Store) put(txn *sqlx.Tx, name string, m *tmx.Map) error {
	for _, q := range []string{"DELETE FROM cells WHERE map=?;", "DELETE FROM properties WHERE map=?;"} {
		if _, err := txn.Exec(q, name); err != nil {
			return err
		}
	}

	_, err := txn.NamedExec(sqlPutMap, MapInfo{
		Name:        name,
		Orientation: m.Orientation,
		Width:       m.Width,
		Height:      m.Height,
		TileWidth:   m.TileWidth,
		TileHeight:  m.TileHeight,
	})
	if err != nil {
		return err
	}

	cells, err := txn.PrepareNamed(sqlPutCell)
	if err != nil {
		return err
	}
	defer cells.Close()

	for _, tl := range m.TileLayers() {
		for y := 0; y < tl.Height; y++ {
			for x := 0; x < tl.Width; x++ {
				t := tl.TileAt(x, y)
				if t == nil {
					continue // nil tile
				}
				if _, err := cells.Exec(newCell(name, tl.Name, x, y, t.GID, tl.FlipsAt(x, y))); err != nil {
					return err
				}
			}
		}
	}

	props, err := txn.PrepareNamed(sqlPutProps)
	if err != nil {
		return err
	}
	defer props.Close()

	for _, ts := range m.TileSets {
		for id, t := range ts.Tiles {
			if t.Properties.Len() == 0 {
				continue
			}
			p, err := newDBProp(name, ts.FirstGID+id, t.Properties)
			if err != nil {
				return err
			}
			if _, err := props.Exec(p); err != nil {
				return err
			}
		}
	}

	return nil
}

// Maps returns all stored maps, by name
func (s *Store) Maps() ([]MapInfo, error) {
	maps := []MapInfo{}
	err := s.db.Select(&maps, "SELECT name,orientation,width,height,tilewidth,tileheight FROM maps ORDER BY name;")
	return maps, err
}

// At returns the cell at (x,y) of the named layer of map `name`.
// An empty cell (or unknown map / layer) is returned with gid 0.
func (s *Store) At(name, layer string, x, y int) (Cell, error) {
	rows, err := s.db.NamedQuery(
		"SELECT id,map,layer,x,y,gid,hflip,vflip,dflip FROM cells WHERE map=:map AND layer=:layer AND x=:x AND y=:y LIMIT 1;",
		map[string]interface{}{
			"map":   name,
			"layer": layer,
			"x":     x,
			"y":     y,
		},
	)
	if err != nil {
		return Cell{}, err
	}
	defer rows.Close()

	cell := Cell{Map: name, Layer: layer, X: x, Y: y}
	for rows.Next() { // there's at most one due to LIMIT 1
		if err := rows.StructScan(&cell); err != nil {
			return Cell{}, err
		}
	}

	return cell, rows.Err()
}

// Properties returns the properties of the tile with global id `gid` in map
// `name`. If no properties are set an empty properties will be returned.
func (s *Store) Properties(name string, gid uint32) (*tmx.Properties, error) {
	gid, _ = tmx.DecodeGID(gid)

	r := dbProp{}
	err := s.db.Get(&r, "SELECT id,map,gid,data FROM properties WHERE map=? AND gid=? LIMIT 1;", name, gid)
	if err == sql.ErrNoRows {
		return tmx.NewProperties(), nil
	} else if err != nil {
		return nil, err
	}

	props := tmx.NewProperties()
	if err := json.Unmarshal([]byte(r.Data), props); err != nil {
		return nil, err
	}
	return props, nil
}

// init creates some DB tables for us if they don't exist
func (s *Store) init() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS maps(
		name TEXT PRIMARY KEY,
		orientation TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		tilewidth INTEGER NOT NULL,
		tileheight INTEGER NOT NULL
	    );`,
		`CREATE TABLE IF NOT EXISTS cells(
		id TEXT PRIMARY KEY,
		map TEXT NOT NULL,
		layer TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		gid INTEGER NOT NULL,
		hflip INTEGER NOT NULL,
		vflip INTEGER NOT NULL,
		dflip INTEGER NOT NULL
	    );`,
		`CREATE TABLE IF NOT EXISTS properties(
		id TEXT PRIMARY KEY,
		map TEXT NOT NULL,
		gid INTEGER NOT NULL,
		data TEXT
	    );`,
	}

	for _, t := range tables {
		if _, err := s.db.Exec(t); err != nil {
			return err
		}
	}
	return nil
}

// newCell crafts a Cell given it's inputs.
// The ID here is used to insert/update on a unique cell by it's
// (map, layer, x, y) with a more straight forward query.
func newCell(name, layer string, x, y int, gid uint32, f tmx.Flips) Cell {
	return Cell{
		ID:    fmt.Sprintf("%s/%s/%d-%d", name, layer, x, y),
		Map:   name,
		Layer: layer,
		X:     x,
		Y:     y,
		GID:   gid,
		HFlip: f.Horizontal,
		VFlip: f.Vertical,
		DFlip: f.Diagonal,
	}
}

// dbProp object encodes properties for a single tile of a map.
type dbProp struct {
	ID   string `db:"id"`
	Map  string `db:"map"`
	GID  uint32 `db:"gid"`
	Data string `db:"data"`
}

// newDBProp crafts a dbProp struct given it's inputs.
// Properties are encoded into JSON.
func newDBProp(name string, gid uint32, props *tmx.Properties) (dbProp, error) {
	data, err := json.Marshal(props)
	if err != nil {
		return dbProp{}, err
	}
	return dbProp{ID: fmt.Sprintf("%s/%d", name, gid), Map: name, GID: gid, Data: string(data)}, nil
}
