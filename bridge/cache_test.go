package bridge

import (
	"github.com/XANi/verisure2hub/verisure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func TestStatusCacheUpsert(t *testing.T) {
	c := NewStatusCache()
	assert.Nil(t, c.Get(verisure.DeviceAlarm))
	c.Init(verisure.DeviceAlarm)
	assert.Empty(t, c.Get(verisure.DeviceAlarm))
	assert.NotNil(t, c.Get(verisure.DeviceAlarm))

	c.Upsert(verisure.DeviceAlarm, verisure.Overview{ID: "a", Status: "armed"})
	c.Upsert(verisure.DeviceAlarm, verisure.Overview{ID: "b", Status: "unarmed"})
	c.Upsert(verisure.DeviceAlarm, verisure.Overview{ID: "a", Status: "unarmed"})

	got := c.Get(verisure.DeviceAlarm)
	assert.Len(t, got, 2)
	assert.Equal(t, "unarmed", got["a"].Status)
	assert.Equal(t, 2, c.Len())

	// Init must not wipe existing entries
	c.Init(verisure.DeviceAlarm)
	assert.Len(t, c.Get(verisure.DeviceAlarm), 2)
}

func TestStatusCacheGetReturnsCopy(t *testing.T) {
	c := NewStatusCache()
	c.Upsert(verisure.DeviceClimate, verisure.Overview{ID: "c"})
	got := c.Get(verisure.DeviceClimate)
	delete(got, "c")
	got["x"] = verisure.Overview{ID: "x"}
	assert.Equal(t, map[string]verisure.Overview{"c": {ID: "c"}}, c.Get(verisure.DeviceClimate))
}

func TestStatusCacheDoesNotShareReadings(t *testing.T) {
	c := NewStatusCache()
	temp, hum := 21.0, 40.0
	c.Upsert(verisure.DeviceClimate, verisure.Overview{ID: "t", Temperature: &temp, Humidity: &hum})
	temp = 99

	got := c.Get(verisure.DeviceClimate)["t"]
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 21.0, *got.Temperature, 0.001, "upsert keeps its own copy")
	*got.Temperature = 5
	*got.Humidity = 5

	again := c.Get(verisure.DeviceClimate)["t"]
	assert.InDelta(t, 21.0, *again.Temperature, 0.001)
	assert.InDelta(t, 40.0, *again.Humidity, 0.001)
}

func TestStatusCacheConcurrentAccess(t *testing.T) {
	c := NewStatusCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Upsert(verisure.DeviceSmartPlug, verisure.Overview{ID: string(rune('a' + j%5))})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for range c.Get(verisure.DeviceSmartPlug) {
				}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, c.Get(verisure.DeviceSmartPlug), 5)
}
