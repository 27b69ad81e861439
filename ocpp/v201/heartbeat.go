package v201

import "evgate/types"

const HeartbeatFeatureName = "Heartbeat"

type HeartbeatRequest struct {
}

type HeartbeatResponse struct {
	CurrentTime *types.DateTime `json:"currentTime"`
}

func (r HeartbeatRequest) GetFeatureName() string {
	return HeartbeatFeatureName
}
