// Package paymentprovider реализует клиент платёжного провайдера (Stripe API).
package paymentprovider

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера.
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     "https://api.stripe.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequest(method, c.apiURL+path, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// CreateIntent отправляет запрос на создание payment intent.
// Локальное состояние не трогается: при ошибке провайдера вызывающая
// сторона не создаёт pending-транзакцию.
func (c *Client) CreateIntent(reqParams CreateIntentRequest) (*CreateIntentResponse, error) {
	form := url.Values{}
	form.Set("amount", strconv.Itoa(reqParams.Amount))
	form.Set("currency", reqParams.Currency)
	for k, v := range reqParams.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := c.newRequest("POST", "/payment_intents", form)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var intentResp CreateIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intentResp); err != nil {
		return nil, err
	}
	return &intentResp, nil
}
