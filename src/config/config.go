package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config is the application configuration, loaded once from a JSON file.
type Config struct {
	Dataset struct {
		URL       string `json:"url"`        // snapshot download endpoint
		DataDir   string `json:"data_dir"`   // directory holding the cached snapshot
		Snapshot  string `json:"snapshot"`   // snapshot file name inside data_dir
		SheetName string `json:"sheet_name"` // sheet to read when the snapshot is xlsx
	} `json:"dataset"`

	Analysis struct {
		RangeLower    Date     `json:"range_lower"`    // exclusive lower date bound
		RangeUpper    Date     `json:"range_upper"`    // exclusive upper date bound
		Genders       []string `json:"genders"`        // categorical allow-set
		SmoothingDays int      `json:"smoothing_days"` // moving-average window for daily trend
	} `json:"analysis"`

	Report struct {
		OutputDir string `json:"output_dir"`
		Workbook  string `json:"workbook"`
	} `json:"report"`

	Email struct {
		Server        string   `json:"server"`         // IMAP server address
		Username      string   `json:"username"`       // mailbox user
		Password      string   `json:"password"`       // mailbox password
		TargetSubject string   `json:"target_subject"` // subject keyword of dataset extract mails
		CheckInterval Duration `json:"check_interval"` // how often ingest mode polls
	} `json:"email"`

	SendEmail struct {
		Server   string `json:"server"`  // SMTP server address
		Username string `json:"username"`
		Password string `json:"password"`
		To       string `json:"to"`      // report recipient
		Subject  string `json:"subject"` // report mail subject
	} `json:"send_email"`

	Schedule Duration `json:"schedule"` // rebuild interval for schedule mode
	LogName  string   `json:"log_name"`
}

var (
	once     sync.Once
	instance *Config
)

// LoadConfig reads the configuration exactly once per process.
func LoadConfig(jsonFolder, jsonFile string) (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = loadConfig(filepath.Join(jsonFolder, jsonFile))
	})
	if instance == nil && err == nil {
		err = fmt.Errorf("configuration was not loaded")
	}
	return instance, err
}

func loadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", configFile, err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", configFile, err)
	}

	return cfg, nil
}

// defaultConfig carries the values a missing key falls back to: the
// published stop dataset, full years 2017-2022 and a weekly trend window.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Dataset.URL = "https://opendata.arcgis.com/datasets/policestopdata.csv"
	cfg.Dataset.DataDir = "data"
	cfg.Dataset.Snapshot = "police_stop_data.csv"
	cfg.Dataset.SheetName = "Sheet1"
	cfg.Analysis.RangeLower = Date(time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC))
	cfg.Analysis.RangeUpper = Date(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg.Analysis.Genders = []string{"Male", "Female", "Gender Non-Conforming"}
	cfg.Analysis.SmoothingDays = 7
	cfg.Report.OutputDir = "report"
	cfg.Report.Workbook = "report.xlsx"
	cfg.Email.CheckInterval = Duration(5 * time.Minute)
	cfg.Schedule = Duration(24 * time.Hour)
	cfg.LogName = "app.log"
	return cfg
}

// Duration wraps time.Duration so intervals read as "5m" or "24h" in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Date wraps time.Time so date bounds read as "2016-12-31" in JSON.
type Date time.Time

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format("2006-01-02"))
}

// Time returns the wrapped value.
func (d Date) Time() time.Time { return time.Time(d) }

// SnapshotPath is the full path of the cached snapshot file.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Dataset.DataDir, c.Dataset.Snapshot)
}

// WorkbookPath is the full path of the rendered report workbook.
func (c *Config) WorkbookPath() string {
	return filepath.Join(c.Report.OutputDir, c.Report.Workbook)
}
