package bridge

import (
	"github.com/XANi/verisure2hub/verisure"
	"sync"
)

// StatusCache keeps the latest overview of every device seen since startup.
// Devices that disappear from the vendor's overview are kept.
type StatusCache struct {
	status map[verisure.DeviceCategory]map[string]verisure.Overview
	sync.RWMutex
}

func NewStatusCache() *StatusCache {
	return &StatusCache{
		status: map[verisure.DeviceCategory]map[string]verisure.Overview{},
	}
}

// Init creates an empty entry for the category if there is none yet.
func (c *StatusCache) Init(category verisure.DeviceCategory) {
	c.Lock()
	defer c.Unlock()
	if _, ok := c.status[category]; !ok {
		c.status[category] = map[string]verisure.Overview{}
	}
}

func (c *StatusCache) Upsert(category verisure.DeviceCategory, overview verisure.Overview) {
	c.Lock()
	defer c.Unlock()
	devices, ok := c.status[category]
	if !ok {
		devices = map[string]verisure.Overview{}
		c.status[category] = devices
	}
	devices[overview.ID] = overview.Clone()
}

// Get returns a copy of every device of the category, keyed by device ID.
// Result is nil for a category that was never initialized.
func (c *StatusCache) Get(category verisure.DeviceCategory) map[string]verisure.Overview {
	c.RLock()
	defer c.RUnlock()
	devices, ok := c.status[category]
	if !ok {
		return nil
	}
	out := make(map[string]verisure.Overview, len(devices))
	for id, o := range devices {
		out[id] = o.Clone()
	}
	return out
}

// Len returns the number of devices across all categories.
func (c *StatusCache) Len() (n int) {
	c.RLock()
	defer c.RUnlock()
	for _, devices := range c.status {
		n += len(devices)
	}
	return n
}
