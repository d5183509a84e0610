package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/san-kum/fixpid/internal/config"
	"github.com/san-kum/fixpid/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrBadSamples = errors.New("storage: malformed samples file")

var sampleHeader = []string{"step", "time", "setpoint", "feedback", "output", "duty", "failed"}

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Arithmetic string             `json:"arithmetic"`
	QPoint     uint               `json:"q_point,omitempty"`
	Duration   float64            `json:"duration"`
	Gains      config.GainsConfig `json:"gains"`
	Actuator   string             `json:"actuator"`
	Steps      int                `json:"steps"`
	Failures   int                `json:"failures"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewMetadata(cfg *config.Config, result *sim.Result) RunMetadata {
	meta := RunMetadata{
		Name:       cfg.Name,
		Timestamp:  time.Now(),
		Arithmetic: cfg.Arithmetic,
		Duration:   cfg.Duration,
		Gains:      cfg.Gains,
		Actuator:   cfg.Actuator,
		Steps:      result.StepsTaken,
		Failures:   result.Failures,
		Metrics:    result.Metrics,
	}
	if cfg.Arithmetic == config.ArithmeticFixed {
		meta.QPoint = cfg.QPoint
	}
	return meta
}

// Save writes the run and returns its ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (id string, err error) {
	meta := NewMetadata(cfg, result)
	meta.ID = fmt.Sprintf("%s_%d", runName(cfg.Name), meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(metaFile))

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(csvFile))

	if err := WriteCSV(csvFile, result.Samples); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// runName reduces a config name to a single path element so a run directory
// never lands outside baseDir.
func runName(name string) string {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/")))
	if base == "/" || base == "." {
		return "run"
	}
	return base
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) (samples []sim.Sample, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(file))

	return ReadCSV(file)
}

func WriteCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}

	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Time),
			formatFloat(s.Setpoint),
			formatFloat(s.Feedback),
			formatFloat(s.Output),
			formatFloat(s.Duty),
			strconv.FormatBool(s.Failed),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(sampleHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSamples, err)
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		s, err := parseSample(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadSamples, i+1, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseSample(rec []string) (sim.Sample, error) {
	var (
		s   sim.Sample
		err error
	)
	if s.Step, err = strconv.Atoi(rec[0]); err != nil {
		return s, err
	}
	fields := []*float64{&s.Time, &s.Setpoint, &s.Feedback, &s.Output, &s.Duty}
	for i, dst := range fields {
		if *dst, err = strconv.ParseFloat(rec[i+1], 64); err != nil {
			return s, err
		}
	}
	s.Failed, err = strconv.ParseBool(rec[6])
	return s, err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
