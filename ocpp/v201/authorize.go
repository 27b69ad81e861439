package v201

import "evgate/types"

const AuthorizeFeatureName = "Authorize"

type IdTokenType string

const (
	IdTokenTypeISO14443 IdTokenType = "ISO14443"
	IdTokenTypeISO15693 IdTokenType = "ISO15693"
	IdTokenTypeCentral  IdTokenType = "Central"
	IdTokenTypeLocal    IdTokenType = "Local"
	IdTokenTypeNoAuth   IdTokenType = "NoAuthorization"
)

type IdToken struct {
	IdToken string      `json:"idToken"`
	Type    IdTokenType `json:"type"`
}

type IdTokenInfo struct {
	Status              types.AuthorizationStatus `json:"status"`
	CacheExpiryDateTime *types.DateTime           `json:"cacheExpiryDateTime,omitempty"`
}

type AuthorizeRequest struct {
	IdToken IdToken `json:"idToken"`
}

type AuthorizeResponse struct {
	IdTokenInfo IdTokenInfo `json:"idTokenInfo"`
}

func (r AuthorizeRequest) GetFeatureName() string {
	return AuthorizeFeatureName
}
