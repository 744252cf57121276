package utils

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"edumarket/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Stripe charges these currencies in whole units
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// ToMinorUnits converts an amount to the smallest currency unit expected by Stripe.
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CheckoutLineItem is one priced line of a checkout session
type CheckoutLineItem struct {
	Name        string
	AmountMinor int64
	Quantity    int64
}

// CheckoutRequest describes the checkout session to open for an order
type CheckoutRequest struct {
	OrderID       uint
	OrderCode     string
	CustomerEmail string
	Currency      string
	Items         []CheckoutLineItem
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the part of a Stripe checkout session we rely on
type CheckoutSession struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	Status            string            `json:"status"`
	PaymentStatus     string            `json:"payment_status"`
	PaymentIntent     string            `json:"payment_intent"`
	ClientReferenceID string            `json:"client_reference_id"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	Metadata          map[string]string `json:"metadata"`
}

// StripeEvent is a webhook event envelope
type StripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession decodes the event object as a checkout session.
func (e *StripeEvent) CheckoutSession() (*CheckoutSession, error) {
	var s CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, fmt.Errorf("checkout session without id")
	}
	return &s, nil
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeClient talks to the Stripe REST API
type StripeClient struct {
	client *resty.Client
}

// NewStripeClient creates a client for the given API base URL and secret key.
func NewStripeClient(baseURL, secretKey string) *StripeClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetBasicAuth(secretKey, "").
		SetTimeout(20 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &StripeClient{client: client}
}

// NewStripeClientFromConfig creates a client from AppConfig.
func NewStripeClientFromConfig() *StripeClient {
	return NewStripeClient(config.AppConfig.StripeAPIURL, config.AppConfig.StripeSecretKey)
}

// CreateCheckoutSession opens a hosted payment page.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("checkout session needs at least one priced item")
	}

	form := map[string]string{
		"mode":                 "payment",
		"success_url":          req.SuccessURL,
		"cancel_url":           req.CancelURL,
		"client_reference_id":  req.OrderCode,
		"metadata[order_id]":   strconv.FormatUint(uint64(req.OrderID), 10),
		"metadata[order_code]": req.OrderCode,
	}
	form["payment_intent_data[metadata][order_code]"] = req.OrderCode
	if req.CustomerEmail != "" {
		form["customer_email"] = req.CustomerEmail
	}
	for i, item := range req.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form[prefix+"[quantity]"] = strconv.FormatInt(item.Quantity, 10)
		form[prefix+"[price_data][currency]"] = strings.ToLower(req.Currency)
		form[prefix+"[price_data][unit_amount]"] = strconv.FormatInt(item.AmountMinor, 10)
		form[prefix+"[price_data][product_data][name]"] = item.Name
	}

	var session CheckoutSession
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", "checkout-"+req.OrderCode).
		SetFormData(form).
		SetResult(&session).
		SetError(&apiErr).
		Post("/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return &session, nil
}

// GetCheckoutSession retrieves a checkout session by id.
func (s *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", sessionID).
		SetResult(&session).
		SetError(&apiErr).
		Get("/checkout/sessions/{id}")
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return &session, nil
}

// CreateRefund refunds amountMinor of a payment intent.
func (s *StripeClient) CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) error {
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", "refund-"+paymentIntentID).
		SetFormData(map[string]string{
			"payment_intent": paymentIntentID,
			"amount":         strconv.FormatInt(amountMinor, 10),
		}).
		SetError(&apiErr).
		Post("/refunds")
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("stripe error %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return nil
}

// ErrInvalidSignature is returned for webhook payloads that fail verification
var ErrInvalidSignature = fmt.Errorf("invalid stripe signature")

// ConstructStripeEvent verifies the Stripe-Signature header of payload and decodes the event.
func ConstructStripeEvent(payload []byte, header, secret string, tolerance time.Duration, now time.Time) (*StripeEvent, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret not configured")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return nil, ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if tolerance > 0 && now.Sub(time.Unix(ts, 0)) > tolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := SignStripePayload(payload, timestamp, secret)
	valid := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var event StripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode stripe event: %w", err)
	}
	return &event, nil
}

// SignStripePayload computes the v1 signature of payload for timestamp.
func SignStripePayload(payload []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
