// Package razorpay предоставляет клиент платёжного шлюза Razorpay.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.razorpay.com"

// ErrNotConfigured возвращается, если ключи шлюза не заданы.
var ErrNotConfigured = errors.New("gateway not configured")

// ErrGatewayRejected возвращается, если шлюз явно отклонил запрос.
var ErrGatewayRejected = errors.New("gateway rejected request")

// Client инкапсулирует HTTP-взаимодействие с Razorpay.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *retryablehttp.Client
}

// GatewayOrder описывает заказ, созданный на стороне шлюза.
type GatewayOrder struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	AmountPaid  int64  `json:"amount_paid"`
	AmountDue   int64  `json:"amount_due"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// NewClient создаёт клиент шлюза с указанными ключами. Таймауты и повторы
// при сетевых сбоях и ответах 5xx берёт на себя retryablehttp; явный отказ
// шлюза (4xx) не ретраится.
func NewClient(keyID, keySecret string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:    defaultBaseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: rc,
	}
}

// Configured сообщает, заданы ли ключи шлюза.
func (c *Client) Configured() bool {
	return c != nil && c.keyID != "" && c.keySecret != ""
}

// KeyID возвращает публичный идентификатор ключа, безопасный для клиента.
func (c *Client) KeyID() string {
	return c.keyID
}

// ToMinorUnits переводит сумму в рупиях в пайсы с округлением,
// а не усечением, чтобы систематически не занижать сумму.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder создаёт заказ на стороне шлюза на указанную сумму в пайсах.
// receipt — локальный идентификатор заказа.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*GatewayOrder, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  receipt,
		Notes:    map[string]string{"order_id": receipt},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeGatewayError(resp)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &order, nil
}

// GetOrder запрашивает состояние заказа на стороне шлюза. Используется
// фоновой сверкой брошенных платежей перед отменой заказа.
func (c *Client) GetOrder(ctx context.Context, gatewayOrderID string) (*GatewayOrder, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/orders/"+gatewayOrderID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeGatewayError(resp)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &order, nil
}

func decodeGatewayError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var ge gatewayError
	if err := json.Unmarshal(raw, &ge); err == nil && ge.Error.Description != "" {
		return fmt.Errorf("%w: %d: %s", ErrGatewayRejected, resp.StatusCode, ge.Error.Description)
	}

	return fmt.Errorf("%w: %d: %s", ErrGatewayRejected, resp.StatusCode, strings.TrimSpace(string(raw)))
}

// VerifySignature проверяет подпись колбэка шлюза: HMAC-SHA256 от строки
// "orderRef|paymentRef" на общем секрете, сравнение за константное время.
// Только обладатель секрета шлюза может выпустить корректную подпись.
func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if !c.Configured() {
		return false
	}
	return VerifySignature(c.keySecret, gatewayOrderID, gatewayPaymentID, signature)
}

// VerifySignature проверяет подпись платежа на указанном секрете.
func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Paid сообщает, считает ли шлюз заказ полностью оплаченным.
func (o *GatewayOrder) Paid() bool {
	return o != nil && (o.Status == "paid" || (o.AmountPaise > 0 && o.AmountPaid >= o.AmountPaise))
}
