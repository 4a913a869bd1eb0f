package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a CSV with latitude/longitude columns and returns points.
// Column detection: lat|latitude|y and lon|lng|long|longitude|x (case-insensitive),
// plus optional id, title|name, description, image|imageurl, audio|audiourl.
func LoadCSV(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}
	idx := map[string]int{}
	set := func(key string, i int) {
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	for i, h := range recs[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			set("lat", i)
		case "lon", "lng", "long", "longitude", "x":
			set("lng", i)
		case "id":
			set("id", i)
		case "title", "name":
			set("title", i)
		case "description", "desc":
			set("description", i)
		case "image", "imageurl":
			set("image", i)
		case "audio", "audiourl":
			set("audio", i)
		}
	}
	iLat, okLat := idx["lat"]
	iLng, okLng := idx["lng"]
	if !okLat || !okLng {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}
	cell := func(row []string, key string) string {
		i, ok := idx[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var pts []Point
	for _, row := range recs[1:] {
		if iLng >= len(row) || iLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[iLng]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[iLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		p := Point{
			ID:          cell(row, "id"),
			Lat:         lat,
			Lng:         lon,
			Title:       cell(row, "title"),
			Description: cell(row, "description"),
			ImageURL:    cell(row, "image"),
			AudioURL:    cell(row, "audio"),
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("pt-%d", len(pts)+1)
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return nil, errors.New("csv: no valid points parsed")
	}
	return pts, nil
}
