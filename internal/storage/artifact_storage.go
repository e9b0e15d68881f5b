package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const (
	runsFileName   = "runs.csv"
	DefaultDataDir = "./data"
)

// Run is one line of the conversion history
type Run struct {
	Time     time.Time
	FileName string
	Rows     int
	Source   string
}

// ArtifactStorage saves generated workbooks and keeps a CSV history of runs
type ArtifactStorage struct {
	mu      sync.RWMutex
	dataDir string
}

// NewArtifactStorage creates a new artifact storage rooted at dir
func NewArtifactStorage(dir string) (*ArtifactStorage, error) {
	if dir == "" {
		dir = DefaultDataDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	as := &ArtifactStorage{
		dataDir: dir,
	}

	if _, err := os.Stat(as.runsPath()); os.IsNotExist(err) {
		if err := as.createRunsFile(); err != nil {
			return nil, err
		}
	}

	return as, nil
}

func (as *ArtifactStorage) Dir() string {
	return as.dataDir
}

func (as *ArtifactStorage) runsPath() string {
	return filepath.Join(as.dataDir, runsFileName)
}

// createRunsFile creates the CSV file with headers
func (as *ArtifactStorage) createRunsFile() error {
	file, err := os.Create(as.runsPath())
	if err != nil {
		return fmt.Errorf("failed to create runs file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Time", "FileName", "Rows", "Source"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	writer.Flush()

	return writer.Error()
}

// Save writes data to name inside the data directory, replacing any file of
// the same name, and appends the run to the history. It returns the full path.
func (as *ArtifactStorage) Save(name string, data []byte, run Run) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	tmp, err := os.CreateTemp(as.dataDir, ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	path := filepath.Join(as.dataDir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	run.FileName = name
	if err := as.appendRun(run); err != nil {
		return path, err
	}

	return path, nil
}

func (as *ArtifactStorage) appendRun(run Run) error {
	file, err := os.OpenFile(as.runsPath(), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open runs file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	record := []string{
		run.Time.Format(time.RFC3339),
		run.FileName,
		strconv.Itoa(run.Rows),
		run.Source,
	}

	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	writer.Flush()

	return writer.Error()
}

// Runs returns up to limit of the most recent runs, newest first. A limit of
// zero or less returns every run.
func (as *ArtifactStorage) Runs(limit int) ([]Run, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	file, err := os.Open(as.runsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open runs file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read runs file: %w", err)
	}

	var runs []Run
	// Skip header row, walk backwards for newest first
	for i := len(records) - 1; i >= 1; i-- {
		record := records[i]
		if len(record) < 4 {
			continue
		}

		t, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			continue
		}

		rows, _ := strconv.Atoi(record[2])

		runs = append(runs, Run{
			Time:     t,
			FileName: record[1],
			Rows:     rows,
			Source:   record[3],
		})

		if limit > 0 && len(runs) >= limit {
			break
		}
	}

	return runs, nil
}
