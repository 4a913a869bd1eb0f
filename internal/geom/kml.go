package geom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadKML extracts Placemark points from a KML file (Placemark > Point > coordinates).
// KML coordinates are "lon,lat[,alt]"; we ignore altitude. Placemarks may sit
// directly under the root or inside Document/Folder.
func LoadKML(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return ParseKML(data)
}

func ParseKML(data []byte) ([]Point, error) {
	type kmlPoint struct {
		Coordinates string `xml:"coordinates"`
	}
	type kmlPlacemark struct {
		ID          string    `xml:"id,attr"`
		Name        string    `xml:"name"`
		Description string    `xml:"description"`
		Point       *kmlPoint `xml:"Point"`
	}
	type kmlDoc struct {
		Placemarks []kmlPlacemark `xml:"Placemark"`
		Nested     []kmlPlacemark `xml:"Document>Placemark"`
		Folders    []kmlPlacemark `xml:"Document>Folder>Placemark"`
	}

	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var pts []Point
	all := append(append(doc.Placemarks, doc.Nested...), doc.Folders...)
	for _, pm := range all {
		if pm.Point == nil {
			continue
		}
		// coordinates may contain multiple tuples separated by spaces
		tuples := strings.Fields(pm.Point.Coordinates)
		for i, tuple := range tuples {
			vals := strings.Split(tuple, ",")
			if len(vals) < 2 {
				continue
			}
			lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
			lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			id := pm.ID
			switch {
			case id == "":
				id = fmt.Sprintf("pt-%d", len(pts)+1)
			case len(tuples) > 1:
				id = fmt.Sprintf("%s-%d", id, i+1)
			}
			pts = append(pts, Point{
				ID:          id,
				Lat:         lat,
				Lng:         lon,
				Title:       strings.TrimSpace(pm.Name),
				Description: strings.TrimSpace(pm.Description),
			})
		}
	}
	if len(pts) == 0 {
		return nil, errors.New("kml: no points found")
	}
	return pts, nil
}
