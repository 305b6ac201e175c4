package backendsim

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bsb-logistics/ganttboard/core/model"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the YAML fixture loaded into a Store. Times are offsets from the
// load instant so the fixture always lands in the default window.
type Seed struct {
	PlateNumbers []string          `yaml:"plate_numbers"`
	Drivers      []string          `yaml:"drivers"`
	Containers   []model.Container `yaml:"containers"`
	Vehicles     []SeedVehicle     `yaml:"vehicles"`
}

// SeedVehicle is one vehicle of the fixture.
type SeedVehicle struct {
	ID          string     `yaml:"id"`
	PlateNumber string     `yaml:"plate_number"`
	DriverID    string     `yaml:"driver_id"`
	Trips       []SeedTrip `yaml:"trips"`
}

// SeedTrip is a trip relative to the load instant.
type SeedTrip struct {
	ID       string        `yaml:"id"`
	DriverID string        `yaml:"driver_id"`
	Start    time.Duration `yaml:"start"`
	End      time.Duration `yaml:"end"`
	FullLoad bool          `yaml:"full_load"`
	Tasks    []SeedTask    `yaml:"tasks"`
}

// SeedTask is a task relative to the load instant.
type SeedTask struct {
	ID           string        `yaml:"id"`
	ContainerNo  string        `yaml:"container_no"`
	TaskType     string        `yaml:"task_type"`
	Start        time.Duration `yaml:"start"`
	End          time.Duration `yaml:"end"`
	StartAddress string        `yaml:"start_address"`
	EndAddress   string        `yaml:"end_address"`
	Status       string        `yaml:"status"`
}

// DefaultSeed returns the embedded fixture.
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a fixture file. An empty path yields the embedded one.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(b)
}

// ParseSeed decodes and validates a YAML fixture.
func ParseSeed(b []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

// Validate checks identifiers, task types and trip capacity.
func (s Seed) Validate() error {
	seen := map[string]bool{}
	for _, v := range s.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("seed: vehicle without id")
		}
		if seen[v.ID] {
			return fmt.Errorf("seed: duplicate vehicle %s", v.ID)
		}
		seen[v.ID] = true
		for i, tr := range v.Trips {
			if tr.End < tr.Start {
				return fmt.Errorf("seed: trip %d of %s ends before it starts", i, v.ID)
			}
			if len(tr.Tasks) > model.MaxTasksPerTrip {
				return fmt.Errorf("seed: trip %d of %s holds %d tasks", i, v.ID, len(tr.Tasks))
			}
			for _, k := range tr.Tasks {
				if _, err := model.ParseTaskType(k.TaskType); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
			}
		}
	}
	return nil
}
