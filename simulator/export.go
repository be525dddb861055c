package simulator

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/legged-robots/quinticwalk/splines"
	"github.com/legged-robots/quinticwalk/trajectory"
)

// CSVHeader is the first row written by WriteCSV.
func CSVHeader() []string {
	header := []string{"time", "state", "phase"}
	for _, ch := range trajectory.Channels() {
		header = append(header, ch.String())
	}
	return append(header, "is_left_support")
}

// WriteCSV writes one row per sample with the position of every channel.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return errors.Wrap(err, "cannot write csv header")
	}
	formatFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'g', 10, 64)
	}
	row := make([]string, 0, len(CSVHeader()))
	for _, s := range samples {
		row = row[:0]
		row = append(row, formatFloat(s.Time), s.State.String(), formatFloat(s.Phase))
		for _, ch := range trajectory.Channels() {
			row = append(row, formatFloat(s.Pos[ch]))
		}
		row = append(row, strconv.FormatBool(s.IsLeftSupport))
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "cannot write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "cannot flush csv")
}

// SegmentExport is one fitted segment in absolute half-cycle time.
type SegmentExport struct {
	Start  float64            `json:"start"`
	Length float64            `json:"length"`
	Coefs  splines.Polynomial `json:"coefs"`
}

// WriteSegments writes the polynomials of every channel of set as JSON,
// keyed by channel name, each expressed in absolute time.
func WriteSegments(w io.Writer, set *trajectory.Set) error {
	out := make(map[string][]SegmentExport, trajectory.NumChannels)
	for _, ch := range trajectory.Channels() {
		traj := set.Get(ch)
		segs := traj.Segments()
		polys := traj.AbsolutePolynomials()
		exported := make([]SegmentExport, len(segs))
		for i, seg := range segs {
			exported[i] = SegmentExport{Start: seg.Start, Length: seg.Length, Coefs: polys[i]}
		}
		out[ch.String()] = exported
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "cannot write segments")
}
