package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"evgate/internal"
)

// WalletClient talks to the external wallet service over HTTP. A session is
// only authorized when the service confirms the user can cover the estimated
// cost; the amount stays reserved until settlement.
type WalletClient struct {
	url    string
	apiKey string
	client *http.Client
	logger internal.LogHandler
}

func NewWalletClient(url, apiKey string) *WalletClient {
	return &WalletClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WalletClient) SetLogger(logger internal.LogHandler) {
	w.logger = logger
}

type reserveRequest struct {
	IdTag  string `json:"id_tag"`
	Amount int64  `json:"amount"`
}

func (w *WalletClient) AuthorizeAndReserve(idTag string, estimatedCost int64) (*internal.WalletAuth, error) {
	body, err := json.Marshal(reserveRequest{IdTag: idTag, Amount: estimatedCost})
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequest(http.MethodPost, w.url+"/wallet/reserve", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+w.apiKey)

	response, err := w.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
		auth := internal.WalletAuth{}
		if err = json.NewDecoder(response.Body).Decode(&auth); err != nil {
			return nil, err
		}
		return &auth, nil
	case http.StatusPaymentRequired:
		return nil, internal.ErrInsufficientBalance
	}
	err = fmt.Errorf("wallet service status %v", response.StatusCode)
	if w.logger != nil {
		w.logger.Error("wallet request", err)
	}
	return nil, err
}
