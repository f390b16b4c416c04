package geo

import (
	"fmt"
	"math"
)

/*
 * Maidenhead grid utilities (spec.md §4.9). Grounded on the teacher's
 * maidenhead.go for function shape and error handling, but using the
 * spherical law of cosines for distance (the spec is explicit about this
 * formula, unlike the teacher's Haversine — see DESIGN.md).
 */

const earthRadiusKm = 6371.0

var (
	errInvalidGrid = fmt.Errorf("geo: invalid maidenhead grid")
	errDomain      = fmt.Errorf("geo: lat/lon domain error")
)

// IsValidGrid reports whether grid is a syntactically valid 4- or
// 6-character Maidenhead locator.
func IsValidGrid(grid string) bool {
	_, _, err := gridCenter(grid)
	return err == nil
}

// gridCenter returns the centre latitude/longitude (degrees) of the square
// or subsquare named by a 4- or 6-character grid.
func gridCenter(grid string) (lat, lon float64, err error) {
	if len(grid) != 4 && len(grid) != 6 {
		return 0, 0, errInvalidGrid
	}
	upper := make([]byte, len(grid))
	for i := 0; i < len(grid); i++ {
		c := grid[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}

	if upper[0] < 'A' || upper[0] > 'R' || upper[1] < 'A' || upper[1] > 'R' {
		return 0, 0, errInvalidGrid
	}
	if upper[2] < '0' || upper[2] > '9' || upper[3] < '0' || upper[3] > '9' {
		return 0, 0, errInvalidGrid
	}

	lon = float64(upper[0]-'A')*20 - 180
	lat = float64(upper[1]-'A')*10 - 90
	lon += float64(upper[2]-'0') * 2
	lat += float64(upper[3]-'0') * 1

	if len(upper) == 6 {
		if upper[4] < 'A' || upper[4] > 'X' || upper[5] < 'A' || upper[5] > 'X' {
			return 0, 0, errInvalidGrid
		}
		lon += float64(upper[4]-'A') * (2.0 / 24.0)
		lat += float64(upper[5]-'A') * (1.0 / 24.0)
		lon += (2.0 / 24.0) / 2
		lat += (1.0 / 24.0) / 2
	} else {
		lon += 1.0
		lat += 0.5
	}

	return lat, lon, nil
}

// GridToLatLon converts a 4- or 6-character Maidenhead grid to its centre
// latitude/longitude in degrees.
func GridToLatLon(grid string) (lat, lon float64, err error) {
	lat, lon, err = gridCenter(grid)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errInvalidGrid, grid)
	}
	return lat, lon, nil
}

// LatLonToGrid converts (lat, lon) in degrees to a 6-character Maidenhead
// grid. Fails on NaN input or a latitude outside (-90, 90); longitude is
// wrapped into (-180, 180] (spec.md §4.9).
func LatLonToGrid(lat, lon float64) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return "", fmt.Errorf("%w: NaN coordinate", errDomain)
	}
	if lat <= -90 || lat >= 90 {
		return "", fmt.Errorf("%w: latitude %.4f out of range", errDomain, lat)
	}
	for lon > 180 {
		lon -= 360
	}
	for lon <= -180 {
		lon += 360
	}

	adjLon := lon + 180
	adjLat := lat + 90

	field1 := int(adjLon / 20)
	field2 := int(adjLat / 10)
	adjLon -= float64(field1) * 20
	adjLat -= float64(field2) * 10

	sq1 := int(adjLon / 2)
	sq2 := int(adjLat / 1)
	adjLon -= float64(sq1) * 2
	adjLat -= float64(sq2) * 1

	sub1 := int(adjLon / (2.0 / 24.0))
	sub2 := int(adjLat / (1.0 / 24.0))
	if sub1 > 23 {
		sub1 = 23
	}
	if sub2 > 23 {
		sub2 = 23
	}

	grid := []byte{
		byte('A' + field1),
		byte('A' + field2),
		byte('0' + sq1),
		byte('0' + sq2),
		byte('A' + sub1),
		byte('A' + sub2),
	}
	return string(grid), nil
}

// Distance returns the great-circle distance in kilometres between the
// centres of two Maidenhead grid squares, using the spherical law of
// cosines with Earth radius 6371 km (spec.md §4.9).
func Distance(grid1, grid2 string) (float64, error) {
	lat1, lon1, err := GridToLatLon(grid1)
	if err != nil {
		return 0, err
	}
	lat2, lon2, err := GridToLatLon(grid2)
	if err != nil {
		return 0, err
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	cosC := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	if cosC > 1 {
		cosC = 1
	}
	if cosC < -1 {
		cosC = -1
	}

	return earthRadiusKm * math.Acos(cosC), nil
}
