package tmx

import (
	log "gopkg.in/inconshreveable/log15.v2"
)

// resolve binds the raw global ids of each tile layer to tiles of the map's
// tilesets. This must run after every tileset is loaded & merged, since the
// gid -> tileset mapping depends on all of them.
func resolve(m *Map, raws []*rawLayer, cfg *Config, logger log.Logger) {
	implicit := 0
	for _, raw := range raws {
		for i, gid := range raw.gids {
			if gid == 0 && !cfg.LookupZeroGID {
				continue // the nil tile
			}

			ts := m.TileSetFor(gid)
			if ts == nil {
				logger.Debug("no tileset for gid", "layer", raw.layer.Name, "index", i, "gid", gid)
				continue
			}

			if ts.Tiles == nil {
				ts.Tiles = map[uint32]*Tile{}
			}

			id := gid - ts.FirstGID
			t, ok := ts.Tiles[id]
			if !ok {
				// the tileset never declared this tile
				t = newTile(id)
				ts.Tiles[id] = t
				implicit++
			}
			t.GID = gid
			raw.layer.Tiles[i] = t
		}
	}

	if implicit > 0 {
		logger.Debug("added implicit tiles", "count", implicit)
	}
}
