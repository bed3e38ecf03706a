package controllers

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// parsePoint converts a GeoJSON Point into WKB bytes. An empty input yields nil.
func parsePoint(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return nil, fmt.Errorf("location must be a Point, got %T", g)
	}
	lng, lat := p.X(), p.Y()
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("location out of range: [%v, %v]", lng, lat)
	}
	return wkb.Marshal(p, binary.LittleEndian)
}

// pointToGeoJSON converts stored WKB back into GeoJSON. Empty input yields nil.
func pointToGeoJSON(wkbBytes []byte) (json.RawMessage, error) {
	if len(wkbBytes) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return nil, err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
