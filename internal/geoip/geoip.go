package geoip

import (
	"net"
	"sync"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/logger"

	"github.com/oschwald/geoip2-golang"
)

// Resolver looks up request geography in a local MaxMind database.
// A nil or disabled resolver returns empty results; scans are recorded
// either way.
type Resolver struct {
	mu sync.RWMutex
	db *geoip2.Reader
}

// Open loads the configured database. A missing file disables lookups
// without failing startup.
func Open(cfg config.GeoIPConfig) *Resolver {
	r := &Resolver{}
	if !cfg.Enabled {
		return r
	}
	db, err := geoip2.Open(cfg.DBPath)
	if err != nil {
		logger.Warnw("geoip_open_failed", "path", cfg.DBPath, "error", err)
		return r
	}
	r.db = db
	return r
}

// Lookup returns ISO country code and city name for an IP.
func (r *Resolver) Lookup(ip string) (country, city string) {
	if r == nil {
		return "", ""
	}
	r.mu.RLock()
	db := r.db
	r.mu.RUnlock()
	if db == nil {
		return "", ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", ""
	}
	record, err := db.City(parsed)
	if err != nil || record == nil {
		return "", ""
	}
	country = record.Country.IsoCode
	if name, ok := record.City.Names["en"]; ok {
		city = name
	}
	return country, city
}

// Close releases the database handle.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		_ = r.db.Close()
		r.db = nil
	}
}
