package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LoadGeoJSON reads a GeoJSON file and returns its point features.
func LoadGeoJSON(path string) ([]Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON extracts Point and MultiPoint geometries as catalog points.
// Feature ids come from the feature "id" member, then properties.id, then a
// positional "pt-N" fallback. Titles come from properties.title or name.
func ParseGeoJSON(data []byte) ([]Point, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var pts []Point
	parseCoord := func(v any) (lon, lat float64, ok bool) {
		if a, ok := v.([]any); ok && len(a) >= 2 {
			lon, lok := a[0].(float64)
			lat, aok := a[1].(float64)
			if lok && aok {
				return lon, lat, true
			}
		}
		return 0, 0, false
	}
	str := func(m map[string]any, keys ...string) string {
		for _, k := range keys {
			switch v := m[k].(type) {
			case string:
				if v != "" {
					return v
				}
			case float64:
				return fmt.Sprintf("%g", v)
			}
		}
		return ""
	}
	addFeature := func(id string, props map[string]any, g map[string]any) {
		if props == nil {
			props = map[string]any{}
		}
		if id == "" {
			id = str(props, "id")
		}
		base := Point{
			Title:       str(props, "title", "name"),
			Description: str(props, "description", "desc"),
			ImageURL:    str(props, "imageUrl", "image"),
			AudioURL:    str(props, "audioUrl", "audio"),
		}
		gt, _ := g["type"].(string)
		switch gt {
		case "Point":
			if lon, lat, ok := parseCoord(g["coordinates"]); ok {
				p := base
				p.ID, p.Lng, p.Lat = id, lon, lat
				if p.ID == "" {
					p.ID = fmt.Sprintf("pt-%d", len(pts)+1)
				}
				pts = append(pts, p)
			}
		case "MultiPoint":
			arr, _ := g["coordinates"].([]any)
			for i, el := range arr {
				lon, lat, ok := parseCoord(el)
				if !ok {
					continue
				}
				p := base
				p.Lng, p.Lat = lon, lat
				if id != "" {
					p.ID = fmt.Sprintf("%s-%d", id, i+1)
				} else {
					p.ID = fmt.Sprintf("pt-%d", len(pts)+1)
				}
				pts = append(pts, p)
			}
		}
	}
	t, _ := raw["type"].(string)
	switch t {
	case "Feature":
		g, _ := raw["geometry"].(map[string]any)
		props, _ := raw["properties"].(map[string]any)
		addFeature(str(raw, "id"), props, g)
	case "FeatureCollection":
		fs, _ := raw["features"].([]any)
		for _, f := range fs {
			fm, ok := f.(map[string]any)
			if !ok {
				continue
			}
			g, _ := fm["geometry"].(map[string]any)
			props, _ := fm["properties"].(map[string]any)
			addFeature(str(fm, "id"), props, g)
		}
	case "Point", "MultiPoint":
		addFeature("", nil, raw)
	case "":
		return nil, errors.New("invalid geojson: missing type")
	default:
		return nil, errors.New("unsupported geojson type: " + t)
	}
	if len(pts) == 0 {
		return nil, errors.New("no points found in geojson")
	}
	return pts, nil
}
