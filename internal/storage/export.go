package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/fixpid/internal/sim"
)

type ExportData struct {
	RunMetadata
	SampleTime float64      `json:"sample_time"`
	Samples    []sim.Sample `json:"samples"`
}

// ExportJSON writes metadata and samples as one indented document.
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	data := ExportData{RunMetadata: meta, Samples: samples}
	if meta.Gains.SampleFreq > 0 {
		data.SampleTime = 1 / meta.Gains.SampleFreq
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
