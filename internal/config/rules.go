package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the rules file.
const (
	DefaultItemBatchSize   = 200
	DefaultRevisionWorkers = 8
	DefaultThreadWorkers   = 8
	DefaultChunkSize       = 50
)

// Rules is the injected process configuration: the tracker's state
// vocabulary, the working calendar, and the fetch/chunk limits. Nothing in
// the engine hard-codes these, so an alternate tracker or calendar can be
// substituted by editing the file alone.
type Rules struct {
	States   States   `yaml:"states" json:"states"`
	Calendar Calendar `yaml:"calendar" json:"calendar"`
	Limits   Limits   `yaml:"limits" json:"limits"`
}

// States names the lifecycle stages the analyzers react to.
type States struct {
	Active        string `yaml:"active" json:"active"`
	CodeReview    string `yaml:"codeReview" json:"codeReview"`
	FixRequired   string `yaml:"fixRequired" json:"fixRequired"`
	DevTesting    string `yaml:"devTesting" json:"devTesting"`
	DevAcceptance string `yaml:"devAcceptance" json:"devAcceptance"`
	StgTesting    string `yaml:"stgTesting" json:"stgTesting"`
	StgAcceptance string `yaml:"stgAcceptance" json:"stgAcceptance"`
}

// Calendar describes the working calendar for business-hours durations.
// Holidays are month-day strings ("MM-DD") valid in any year.
type Calendar struct {
	UTCOffsetHours int      `yaml:"utcOffsetHours" json:"utcOffsetHours"`
	WorkdayStart   int      `yaml:"workdayStartHour" json:"workdayStartHour"`
	WorkdayEnd     int      `yaml:"workdayEndHour" json:"workdayEndHour"`
	Holidays       []string `yaml:"holidays" json:"holidays"`
}

// Limits bounds simultaneous in-flight requests and chunk size. These are
// throughput knobs only; results do not depend on them.
type Limits struct {
	ItemBatchSize   int `yaml:"itemBatchSize" json:"itemBatchSize"`
	RevisionWorkers int `yaml:"revisionWorkers" json:"revisionWorkers"`
	ThreadWorkers   int `yaml:"threadWorkers" json:"threadWorkers"`
	ChunkSize       int `yaml:"chunkSize" json:"chunkSize"`
}

// DefaultRules returns the rules used when no file is provided: the Azure
// DevOps vocabulary this service was built against and a UTC+3 Mon-Fri
// 09:00-18:00 calendar with the fixed holiday set.
func DefaultRules() Rules {
	return Rules{
		States: States{
			Active:        "Active",
			CodeReview:    "Code Review",
			FixRequired:   "Fix Required",
			DevTesting:    "Dev In Testing",
			DevAcceptance: "Dev Acceptance Testing",
			StgTesting:    "Stg In Testing",
			StgAcceptance: "Stg Acceptance Testing",
		},
		Calendar: Calendar{
			UTCOffsetHours: 3,
			WorkdayStart:   9,
			WorkdayEnd:     18,
			Holidays: []string{
				"12-31", "01-01", "01-02", "01-03", "01-04", "01-05", "01-06", "01-07", "01-08",
				"02-23", "03-08", "05-01", "05-02", "05-09", "06-12", "11-04",
			},
		},
		Limits: Limits{
			ItemBatchSize:   DefaultItemBatchSize,
			RevisionWorkers: DefaultRevisionWorkers,
			ThreadWorkers:   DefaultThreadWorkers,
			ChunkSize:       DefaultChunkSize,
		},
	}
}

// LoadRules reads the rules file, applies defaults for absent fields and
// validates the result.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil { return Rules{}, fmt.Errorf("rules: read %s: %w", path, err) }
	r := DefaultRules()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("rules: parse %s: %w", path, err)
	}
	r.applyDefaults()
	if err := r.Validate(); err != nil { return Rules{}, err }
	return r, nil
}

func (r *Rules) applyDefaults() {
	if r.Limits.ItemBatchSize <= 0 { r.Limits.ItemBatchSize = DefaultItemBatchSize }
	if r.Limits.RevisionWorkers <= 0 { r.Limits.RevisionWorkers = DefaultRevisionWorkers }
	if r.Limits.ThreadWorkers <= 0 { r.Limits.ThreadWorkers = DefaultThreadWorkers }
	if r.Limits.ChunkSize <= 0 { r.Limits.ChunkSize = DefaultChunkSize }
}

// Validate rejects rules that would make analyzer output meaningless.
func (r Rules) Validate() error {
	names := map[string]string{
		"states.active":        r.States.Active,
		"states.codeReview":    r.States.CodeReview,
		"states.fixRequired":   r.States.FixRequired,
		"states.devTesting":    r.States.DevTesting,
		"states.devAcceptance": r.States.DevAcceptance,
		"states.stgTesting":    r.States.StgTesting,
		"states.stgAcceptance": r.States.StgAcceptance,
	}
	for k, v := range names {
		if v == "" { return fmt.Errorf("rules: %s must not be empty", k) }
	}
	c := r.Calendar
	if c.WorkdayStart < 0 || c.WorkdayStart > 23 {
		return fmt.Errorf("rules: calendar.workdayStartHour %d out of range", c.WorkdayStart)
	}
	if c.WorkdayEnd <= c.WorkdayStart || c.WorkdayEnd > 24 {
		return fmt.Errorf("rules: calendar.workdayEndHour %d must be after start and at most 24", c.WorkdayEnd)
	}
	for _, h := range c.Holidays {
		if len(h) != 5 || h[2] != '-' {
			return fmt.Errorf("rules: holiday %q is not MM-DD", h)
		}
	}
	return nil
}
