package verisure

// Overview is the latest status of a single device as reported by the vendor.
// Which fields are filled depends on Category.
type Overview struct {
	ID       string         `json:"id"`
	Category DeviceCategory `json:"category"`

	// alarm
	Label string `json:"label,omitempty"`
	Name  string `json:"name,omitempty"`
	Date  string `json:"date,omitempty"`

	// alarm and smart plug
	Status string `json:"status,omitempty"`

	// climate and smart plug
	Location string `json:"location,omitempty"`

	// climate
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

// Clone returns a copy that shares no pointers with o.
func (o Overview) Clone() Overview {
	if o.Temperature != nil {
		v := *o.Temperature
		o.Temperature = &v
	}
	if o.Humidity != nil {
		v := *o.Humidity
		o.Humidity = &v
	}
	return o
}
