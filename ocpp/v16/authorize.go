package v16

import "evgate/types"

const AuthorizeFeatureName = "Authorize"

type AuthorizeRequest struct {
	IdTag string `json:"idTag"`
}

type AuthorizeResponse struct {
	IdTagInfo *types.IdTagInfo `json:"idTagInfo"`
}

func (r AuthorizeRequest) GetFeatureName() string {
	return AuthorizeFeatureName
}
