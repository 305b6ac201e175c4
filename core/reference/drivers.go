package reference

import (
	"fmt"
	"sort"
	"sync"
)

// DriverStatus is the availability of a driver.
type DriverStatus string

const (
	DriverActive   DriverStatus = "active"
	DriverInactive DriverStatus = "inactive"
	DriverBusy     DriverStatus = "busy"
)

// Driver is an entry of the driver directory.
type Driver struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Phone   string       `json:"phone,omitempty" yaml:"phone,omitempty"`
	License string       `json:"license,omitempty" yaml:"license,omitempty"`
	Status  DriverStatus `json:"status" yaml:"status"`
}

// DefaultDrivers is the directory used when none is configured.
func DefaultDrivers() []Driver {
	return []Driver{
		{ID: "DRIVER001", Name: "Zhang San", Phone: "13800138001", License: "A1234567", Status: DriverActive},
		{ID: "DRIVER002", Name: "Li Si", Phone: "13800138002", License: "A1234568", Status: DriverActive},
		{ID: "DRIVER003", Name: "Wang Wu", Phone: "13800138003", License: "A1234569", Status: DriverBusy},
	}
}

// Directory is an in-memory driver directory.
type Directory struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewDirectory seeds a directory. An empty seed falls back to DefaultDrivers.
func NewDirectory(seed []Driver) *Directory {
	if len(seed) == 0 {
		seed = DefaultDrivers()
	}
	d := &Directory{drivers: make(map[string]Driver, len(seed))}
	for _, dr := range seed {
		d.drivers[dr.ID] = dr
	}
	return d
}

// All returns every driver sorted by id.
func (d *Directory) All() []Driver {
	return d.filter(func(Driver) bool { return true })
}

// Available returns the active drivers.
func (d *Directory) Available() []Driver {
	return d.filter(func(dr Driver) bool { return dr.Status == DriverActive })
}

func (d *Directory) Get(id string) (Driver, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dr, ok := d.drivers[id]
	return dr, ok
}

// SetStatus changes the status of a known driver.
func (d *Directory) SetStatus(id string, s DriverStatus) error {
	switch s {
	case DriverActive, DriverInactive, DriverBusy:
	default:
		return fmt.Errorf("unknown driver status %q", s)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, ok := d.drivers[id]
	if !ok {
		return fmt.Errorf("driver %s not found", id)
	}
	dr.Status = s
	d.drivers[id] = dr
	return nil
}

// Add registers a driver under the next free DRIVERnnn id.
func (d *Directory) Add(dr Driver) Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	for n := len(d.drivers) + 1; ; n++ {
		id := fmt.Sprintf("DRIVER%03d", n)
		if _, taken := d.drivers[id]; !taken {
			dr.ID = id
			break
		}
	}
	if dr.Status == "" {
		dr.Status = DriverActive
	}
	d.drivers[dr.ID] = dr
	return dr
}

// Remove deletes a driver. Unknown ids are ignored.
func (d *Directory) Remove(id string) {
	d.mu.Lock()
	delete(d.drivers, id)
	d.mu.Unlock()
}

func (d *Directory) filter(keep func(Driver) bool) []Driver {
	d.mu.RLock()
	out := make([]Driver, 0, len(d.drivers))
	for _, dr := range d.drivers {
		if keep(dr) {
			out = append(out, dr)
		}
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
