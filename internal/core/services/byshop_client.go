package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Shadow52186/rs-1/internal/config"
	"github.com/Shadow52186/rs-1/internal/core/domain"
)

// ByShopClient verifies payments against the ByShop gateway
type ByShopClient interface {
	CheckSlip(ctx context.Context, qrText string) (*domain.SlipCheck, error)
	RedeemGift(ctx context.Context, giftLink string) (*domain.GiftRedeem, error)
}

// byshopClient implements ByShopClient over the public HTTP API
type byshopClient struct {
	apiKey  string
	phone   string
	baseURL string
	client  *http.Client
}

// NewByShopClient creates a new ByShop API client
func NewByShopClient(cfg config.StoreConfig) ByShopClient {
	return &byshopClient{
		apiKey:  cfg.ByShopAPIKey,
		phone:   cfg.ByShopPhone,
		baseURL: strings.TrimRight(cfg.ByShopBaseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// looseValue decodes fields ByShop returns inconsistently: sometimes a
// bare number, sometimes a quoted string, sometimes an object. The
// textual form is kept and parsed where a number is actually needed.
type looseValue string

func (v *looseValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = looseValue(s)
		return nil
	}
	*v = looseValue(strings.TrimSpace(string(b)))
	return nil
}

func (v looseValue) Int() int {
	n, _ := strconv.Atoi(string(v))
	return n
}

func (v looseValue) Float() (float64, error) {
	return strconv.ParseFloat(string(v), 64)
}

// checkSlipResponse mirrors the ByShop check_slip payload
type checkSlipResponse struct {
	Status    looseValue `json:"status"`
	CheckSlip looseValue `json:"check_slip"`
	Amount    looseValue `json:"amount"`
	SlipTime  looseValue `json:"slip_time"`
	SlipRef   looseValue `json:"slip_ref"`
	Sender    looseValue `json:"sender"`
	Receiver  looseValue `json:"receiver"`
	Message   looseValue `json:"message"`
}

// giftResponse mirrors the ByShop truewallet payload
type giftResponse struct {
	Status  looseValue `json:"status"`
	Amount  looseValue `json:"amount"`
	Message looseValue `json:"message"`
}

// slipTimeLayouts covers the formats ByShop has been seen returning
var slipTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
}

// CheckSlip verifies a bank-transfer slip by its QR payload.
// check_slip == 1 marks a slip the gateway has seen before.
func (c *byshopClient) CheckSlip(ctx context.Context, qrText string) (*domain.SlipCheck, error) {
	form := url.Values{}
	form.Set("keyapi", c.apiKey)
	form.Set("qrcode_text", qrText)

	body, err := c.postForm(ctx, c.baseURL+"/check_slip", form)
	if err != nil {
		return nil, err
	}

	var resp checkSlipResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: bad check_slip response: %v", domain.ErrExternalService, err)
	}

	amount, _ := resp.Amount.Float()

	return &domain.SlipCheck{
		Valid:       resp.Status.Int() == 1,
		AlreadyUsed: resp.CheckSlip.Int() == 1,
		Amount:      amount,
		SlipRef:     string(resp.SlipRef),
		SlipTime:    parseSlipTime(string(resp.SlipTime)),
		Sender:      string(resp.Sender),
		Receiver:    string(resp.Receiver),
	}, nil
}

// RedeemGift redeems a TrueMoney gift link toward the store wallet.
// The gateway signals failure with a non-numeric or missing amount.
func (c *byshopClient) RedeemGift(ctx context.Context, giftLink string) (*domain.GiftRedeem, error) {
	form := url.Values{}
	form.Set("keyapi", c.apiKey)
	form.Set("phone", c.phone)
	form.Set("gift_link", giftLink)

	body, err := c.postForm(ctx, c.baseURL+"/truewallet", form)
	if err != nil {
		return nil, err
	}

	var resp giftResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: bad truewallet response: %v", domain.ErrExternalService, err)
	}

	amount, parseErr := resp.Amount.Float()
	if parseErr != nil || amount <= 0 {
		return &domain.GiftRedeem{
			OK:      false,
			Message: string(resp.Message),
		}, nil
	}

	return &domain.GiftRedeem{
		OK:      true,
		Amount:  amount,
		Message: string(resp.Message),
	}, nil
}

// postForm sends a form-encoded POST and returns the raw body
func (c *byshopClient) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ByShop returned %d: %s", domain.ErrExternalService, resp.StatusCode, string(body))
	}

	return body, nil
}

// parseSlipTime tries the known layouts; a zero time falls out of the
// freshness window and gets rejected downstream.
func parseSlipTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range slipTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
