// Package geoloc resolves a coarse station location from an IP address
// using a MaxMind GeoIP2 City database, for labelling webstatus viewers with
// an approximate location. Grounded on the teacher's geoip_service.go,
// trimmed from its full GeoIPResult (country/subdivision/timezone/etc.) down
// to lat/lon, country and city.
package geoloc

import (
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// Location is a coarse geolocation result for one IP address.
type Location struct {
	IP        string  `json:"ip"`
	Country   string  `json:"country,omitempty"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Service looks up coarse locations against a MaxMind City database.
// A Service with no database loaded is inert: Lookup always fails, which
// lets the webstatus feed run with geolocation disabled rather than refusing
// to start.
type Service struct {
	mu      sync.RWMutex
	db      *geoip2.Reader
	enabled bool
}

// Open loads the GeoIP2 City database at dbPath. An empty dbPath returns a
// disabled Service rather than an error.
func Open(dbPath string) (*Service, error) {
	if dbPath == "" {
		return &Service{}, nil
	}
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("geoloc: open %s: %w", dbPath, err)
	}
	return &Service{db: db, enabled: true}, nil
}

// Enabled reports whether a database was loaded.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Lookup resolves the coarse location of ipStr.
func (s *Service) Lookup(ipStr string) (Location, error) {
	if !s.enabled {
		return Location{}, fmt.Errorf("geoloc: service not enabled")
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}, fmt.Errorf("geoloc: invalid IP address %q", ipStr)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := s.db.City(ip)
	if err != nil {
		return Location{}, fmt.Errorf("geoloc: lookup %s: %w", ipStr, err)
	}

	loc := Location{
		IP:        ipStr,
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if name, ok := record.Country.Names["en"]; ok && name != "" {
		loc.Country = name
	} else {
		loc.Country = record.Country.IsoCode
	}
	if name, ok := record.City.Names["en"]; ok && name != "" {
		loc.City = name
	}
	return loc, nil
}

// Close releases the underlying database handle.
func (s *Service) Close() error {
	if !s.enabled {
		return nil
	}
	return s.db.Close()
}
