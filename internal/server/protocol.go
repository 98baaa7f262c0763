package server

import (
	"modeon/internal/core/model"
)

type MessageType string

const (
	MsgSnapshot          MessageType = "snapshot"
	MsgBreakStateChanged MessageType = "break_state_changed"
	MsgSessionChanged    MessageType = "session_changed"
	MsgNotification      MessageType = "notification"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

type SnapshotPayload struct {
	Status model.TrackerStatus `json:"status"`
	Stats  model.SessionStats  `json:"stats"`
}

type startRequest struct {
	Keyword         string                    `json:"keyword"`
	Preset          string                    `json:"preset,omitempty"`
	SessionSettings *model.BreakSettingsPatch `json:"sessionSettings,omitempty"`
}

// settings resolves the preset, if any, with explicit settings taking precedence.
func (request startRequest) settings() (*model.BreakSettingsPatch, error) {
	if request.Preset == "" {
		return request.SessionSettings, nil
	}
	preset, err := model.ParsePreset(request.Preset)
	if err != nil {
		return nil, err
	}
	patch := preset.Patch()
	if request.SessionSettings != nil {
		patch = patch.Merge(*request.SessionSettings)
	}
	if patch.IsEmpty() {
		return nil, nil
	}
	return &patch, nil
}

type activityResponse struct {
	Activity model.ActivityStatus `json:"activity"`
}

type historyResponse struct {
	Sessions []model.SessionSummary `json:"sessions"`
}

type errorResponse struct {
	Error string `json:"error"`
}
