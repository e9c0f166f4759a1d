package setup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// StreamflowPoint is a row of frxst_pts_out.txt.
type StreamflowPoint struct {
	SimSeconds float64
	ID         string
	Lat        float64
	Lon        float64
	QM3s       float64
	QFt3s      float64
	WaterLevel float64
}

// Streamflow holds the points of a streamflow output,
// indexed by station id, in file order.
type Streamflow map[string][]StreamflowPoint

// IDs returns the station ids in ascending order.
func (sf Streamflow) IDs() []string {
	ids := make([]string, 0, len(sf))
	for id := range sf {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadStreamflow parses comma separated rows with columns
// sim_t_sec, id, lat, lon, Q_m3_s, Q_ft3_s, water_level_m.
func ReadStreamflow(r io.Reader) (Streamflow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7
	cr.TrimLeadingSpace = true

	sf := Streamflow{}
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return sf, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ReadStreamflow: %w", err)
		}

		var values [6]float64
		for i, col := range []int{0, 2, 3, 4, 5, 6} {
			values[i], err = strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("ReadStreamflow: line %d column %d: %w", line, col+1, err)
			}
		}

		pt := StreamflowPoint{
			SimSeconds: values[0],
			ID:         strings.TrimSpace(row[1]),
			Lat:        values[1],
			Lon:        values[2],
			QM3s:       values[3],
			QFt3s:      values[4],
			WaterLevel: values[5],
		}
		sf[pt.ID] = append(sf[pt.ID], pt)
	}
}

// ReadStreamflowFile reads the streamflow output at path.
func ReadStreamflowFile(path string) (Streamflow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadStreamflowFile `%s`: Open error: %w", path, err)
	}
	defer f.Close()
	return ReadStreamflow(f)
}
