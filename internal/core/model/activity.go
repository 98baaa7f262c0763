package model

import "encoding/json"

// ActivityStatus is the last classification of the active tab.
type ActivityStatus int

const (
	// Unknown means no classification is available; no time is accounted.
	Unknown ActivityStatus = iota
	Focus
	Distraction
)

var activityNames = map[ActivityStatus]string{
	Unknown:     "unknown",
	Focus:       "focus",
	Distraction: "distraction",
}

var activityFromName = map[string]ActivityStatus{
	"unknown":     Unknown,
	"focus":       Focus,
	"distraction": Distraction,
}

func (status ActivityStatus) String() string {
	if name, ok := activityNames[status]; ok {
		return name
	}
	return "unknown"
}

// ParseActivityStatus maps a name to a status, falling back to Unknown.
func ParseActivityStatus(name string) ActivityStatus {
	return activityFromName[name]
}

func (status ActivityStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(status.String())
}

func (status *ActivityStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*status = ParseActivityStatus(name)
	return nil
}
