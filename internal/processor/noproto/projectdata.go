// Package noproto implements the No-protocol simulator (spec.md §4.2.6): a
// dummy processor that fabricates plausible cache contents and optionally
// animates them, used to develop/demo a bridge without real hardware on one
// side. Grounded on
// original_source/.../ProtocolProcessor/NoProtocolProtocolProcessor.{h,cpp}.
package noproto

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// CoordinateMapping is one mapping area's real-world/virtual reference
// points plus name and flip flag (dbprProjectUtils.h CoordinateMappingData).
type CoordinateMapping struct {
	Name                   string
	Flip                   bool
	P1X, P1Y, P1Z          float64
	P3X, P3Y, P3Z          float64
}

// SpeakerPosition is one output's position and orientation
// (dbprProjectUtils.h SpeakerPositionData).
type SpeakerPosition struct {
	X, Y, Z          float64
	Hor, Vrt, Rot    float64
}

// ProjectData is the subset of a d&b DS100 .dbpr project file the simulator
// seeds its cache from (dbprProjectUtils.h ProjectData).
type ProjectData struct {
	CoordinateMappings map[int]CoordinateMapping
	SpeakerPositions   map[int]SpeakerPosition
	InputNames         map[int]string
}

// IsEmpty reports whether no mapping or speaker data was loaded.
func (p ProjectData) IsEmpty() bool {
	return len(p.CoordinateMappings) == 0 && len(p.SpeakerPositions) == 0
}

// OpenAndReadProject opens a .dbpr SQLite project file and extracts the
// coordinate-mapping, output-position and input-name tables, matching the
// query shapes in dbprProjectUtils.h's OpenAndReadProject.
func OpenAndReadProject(path string) (ProjectData, error) {
	pd := ProjectData{
		CoordinateMappings: make(map[int]CoordinateMapping),
		SpeakerPositions:   make(map[int]SpeakerPosition),
		InputNames:         make(map[int]string),
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return pd, fmt.Errorf("noproto: open %s: %w", path, err)
	}
	defer db.Close()

	if err := readCoordinateMappings(db, pd.CoordinateMappings); err != nil {
		return pd, err
	}
	if err := readCoordinateMappingPoints(db, pd.CoordinateMappings); err != nil {
		return pd, err
	}
	if err := readSpeakerPositions(db, pd.SpeakerPositions); err != nil {
		return pd, err
	}
	if err := readInputNames(db, pd.InputNames); err != nil {
		return pd, err
	}
	return pd, nil
}

func readCoordinateMappings(db *sql.DB, out map[int]CoordinateMapping) error {
	rows, err := db.Query(`SELECT * FROM MatrixCoordinateMappings`)
	if err != nil {
		return fmt.Errorf("noproto: query MatrixCoordinateMappings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cols []any
		cols, err = scanRow(rows)
		if err != nil {
			return err
		}
		if len(cols) < 5 {
			continue
		}
		id := toInt(cols[1])
		m := out[id]
		m.Flip = toInt(cols[3]) != 0
		m.Name = toString(cols[4])
		out[id] = m
	}
	return rows.Err()
}

func readCoordinateMappingPoints(db *sql.DB, out map[int]CoordinateMapping) error {
	rows, err := db.Query(`SELECT * FROM MatrixCoordinateMappingPoints`)
	if err != nil {
		return fmt.Errorf("noproto: query MatrixCoordinateMappingPoints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		cols, err := scanRow(rows)
		if err != nil {
			return err
		}
		if len(cols) < 6 {
			continue
		}
		id := toInt(cols[1])
		pIdx := toInt(cols[2])
		x, y, z := toFloat(cols[3]), toFloat(cols[4]), toFloat(cols[5])

		m := out[id]
		if pIdx == 0 {
			m.P1X, m.P1Y, m.P1Z = x, y, z
		} else {
			m.P3X, m.P3Y, m.P3Z = x, y, z
		}
		out[id] = m
	}
	return rows.Err()
}

func readSpeakerPositions(db *sql.DB, out map[int]SpeakerPosition) error {
	rows, err := db.Query(`SELECT * FROM MatrixOutputs`)
	if err != nil {
		return fmt.Errorf("noproto: query MatrixOutputs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		cols, err := scanRow(rows)
		if err != nil {
			return err
		}
		if len(cols) < 10 {
			continue
		}
		id := toInt(cols[1])
		out[id] = SpeakerPosition{
			X: toFloat(cols[4]), Y: toFloat(cols[5]), Z: toFloat(cols[6]),
			Hor: toFloat(cols[7]), Vrt: toFloat(cols[8]), Rot: toFloat(cols[9]),
		}
	}
	return rows.Err()
}

func readInputNames(db *sql.DB, out map[int]string) error {
	rows, err := db.Query(`SELECT * FROM MatrixInputs`)
	if err != nil {
		return fmt.Errorf("noproto: query MatrixInputs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		cols, err := scanRow(rows)
		if err != nil {
			return err
		}
		if len(cols) < 3 {
			continue
		}
		out[toInt(cols[1])] = toString(cols[2])
	}
	return rows.Err()
}

func scanRow(rows *sql.Rows) ([]any, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(colTypes))
	ptrs := make([]any, len(colTypes))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("noproto: scan row: %w", err)
	}
	return vals, nil
}

func toInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	default:
		return 0
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
