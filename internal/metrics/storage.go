package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const dailyMetricsDir = "daily"

// Storage keeps one JSON file of activation counts per day.
type Storage struct {
	mu      sync.Mutex
	baseDir string
}

func NewStorage(baseDir string) (*Storage, error) {
	dailyDir := filepath.Join(baseDir, dailyMetricsDir)
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}

	return &Storage{
		baseDir: baseDir,
	}, nil
}

// SaveActivation adds one activation of alias to the day of at.
func (s *Storage) SaveActivation(alias string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := at.Format("2006-01-02")
	daily, err := s.GetDailyMetrics(date)
	if err != nil {
		daily = newDailyMetrics(date)
	}

	daily.Activations[alias]++
	daily.Total++

	return s.saveDailyMetrics(daily)
}

func newDailyMetrics(date string) *DailyMetrics {
	return &DailyMetrics{
		Date:        date,
		Activations: make(map[string]int),
	}
}

// GetDailyMetrics returns the counts for date. A day without a file is empty.
func (s *Storage) GetDailyMetrics(date string) (*DailyMetrics, error) {
	filePath := filepath.Join(s.baseDir, dailyMetricsDir, fmt.Sprintf("%s.json", date))

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return newDailyMetrics(date), nil
	}
	if err != nil {
		return nil, err
	}

	var daily DailyMetrics
	if err := json.Unmarshal(data, &daily); err != nil {
		return nil, err
	}
	if daily.Activations == nil {
		daily.Activations = make(map[string]int)
	}
	return &daily, nil
}

func (s *Storage) saveDailyMetrics(metrics *DailyMetrics) error {
	filePath := filepath.Join(s.baseDir, dailyMetricsDir, fmt.Sprintf("%s.json", metrics.Date))

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0644)
}

// GetAllDailyMetrics returns every stored day in chronological order.
func (s *Storage) GetAllDailyMetrics() ([]*DailyMetrics, error) {
	dailyDir := filepath.Join(s.baseDir, dailyMetricsDir)

	files, err := os.ReadDir(dailyDir)
	if err != nil {
		return []*DailyMetrics{}, nil
	}

	var fileNames []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			fileNames = append(fileNames, file.Name())
		}
	}
	sort.Strings(fileNames)

	var all []*DailyMetrics
	for _, fileName := range fileNames {
		data, err := os.ReadFile(filepath.Join(dailyDir, fileName))
		if err != nil {
			continue // Skip problematic files
		}

		var daily DailyMetrics
		if err := json.Unmarshal(data, &daily); err != nil {
			continue
		}
		all = append(all, &daily)
	}

	return all, nil
}

// GetTotalMetrics sums every stored day.
func (s *Storage) GetTotalMetrics() (*TotalMetrics, error) {
	days, err := s.GetAllDailyMetrics()
	if err != nil {
		return nil, err
	}

	total := &TotalMetrics{Activations: make(map[string]int)}
	for _, day := range days {
		if day.Total > 0 {
			total.ActiveDays++
		}
		total.TotalSwitches += day.Total
		for alias, n := range day.Activations {
			total.Activations[alias] += n
		}
	}
	return total, nil
}

// ClearAllMetrics removes every stored day.
func (s *Storage) ClearAllMetrics() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dailyDir := filepath.Join(s.baseDir, dailyMetricsDir)

	files, err := os.ReadDir(dailyDir)
	if err != nil {
		return nil // Directory doesn't exist, nothing to clear
	}

	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			if err := os.Remove(filepath.Join(dailyDir, file.Name())); err != nil {
				return fmt.Errorf("failed to remove %s: %w", file.Name(), err)
			}
		}
	}

	return nil
}
