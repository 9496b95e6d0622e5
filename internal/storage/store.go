package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/convdiff/internal/domain"
)

// ErrMalformedGrid indicates a grid.csv that cannot be parsed.
var ErrMalformedGrid = errors.New("storage: malformed grid file")

const (
	metadataFile = "metadata.json"
	gridFile     = "grid.csv"
)

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
	ID            string             `json:"id"`
	Model         string             `json:"model"`
	Timestamp     time.Time          `json:"timestamp"`
	Time          float64            `json:"time"`
	Width         float64            `json:"width"`
	Accuracy      float64            `json:"accuracy"`
	Dx            float64            `json:"dx"`
	Dt            float64            `json:"dt"`
	TimeSteps     int                `json:"time_steps"`
	Points        int                `json:"points"`
	Solver        string             `json:"solver"`
	MaxIterations int                `json:"max_iterations,omitempty"`
	Tolerance     float64            `json:"tolerance,omitempty"`
	Params        map[string]float64 `json:"params,omitempty"`
	MaxResidual   float64            `json:"max_residual"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and grid.csv for a solved domain under a new
// run directory. Geometry fields of meta are filled from d.
func (s *Store) Save(meta RunMetadata, d *domain.Domain) (string, error) {
	g, err := d.Grid()
	if err != nil {
		return "", err
	}

	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Model, now.UnixNano())
	meta.Timestamp = now
	meta.Time = d.Time()
	meta.Width = d.DomainWidth()
	meta.Accuracy = d.Accuracy()
	meta.Dx = d.Dx()
	meta.Dt = d.Dt()
	meta.TimeSteps = d.TimeSteps()
	meta.Points = d.Width()
	if res := d.Result(); res != nil {
		meta.MaxResidual = res.MaxResidual
		if meta.Metrics == nil {
			meta.Metrics = res.Metrics
		}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, gridFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, g.Rows(), Times(meta.TimeSteps, meta.Dt)); err != nil {
		return "", err
	}
	return meta.ID, csvFile.Sync()
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadGrid reads the time levels of a run together with their times.
func (s *Store) LoadGrid(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, gridFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %v", runID, ErrMalformedGrid, err)
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w: %v", runID, i+2, ErrMalformedGrid, err)
			}
			values[j] = v
		}
		times = append(times, values[0])
		rows = append(rows, values[1:])
	}
	return rows, times, nil
}

// Times returns i·dt for every level i.
func Times(levels int, dt float64) []float64 {
	times := make([]float64, levels)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}
