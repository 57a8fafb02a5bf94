package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"nifty-butterfly/internal/errors"
	"nifty-butterfly/internal/models"
	"nifty-butterfly/pkg/utils"
)

// quoteBatchSize is the number of instruments requested per quote call.
// Kite Connect caps a single quote request at 500 instruments.
const quoteBatchSize = 250

// spotSymbols maps index names to their NSE spot trading symbols.
var spotSymbols = map[string]string{
	"NIFTY":      "NIFTY 50",
	"BANKNIFTY":  "NIFTY BANK",
	"FINNIFTY":   "NIFTY FIN SERVICE",
	"MIDCPNIFTY": "NIFTY MID SELECT",
}

// KiteSource fetches option chains from Zerodha Kite Connect.
type KiteSource struct {
	client        *kiteconnect.Client
	apiKey        string
	apiSecret     string
	userID        string
	symbol        string
	sessionPath   string
	authenticated bool

	instruments []models.Instrument
	loadedAt    time.Time
	mu          sync.RWMutex
}

// KiteConfig holds configuration for the Kite source.
type KiteConfig struct {
	APIKey      string
	APISecret   string
	UserID      string
	Symbol      string // underlying index, e.g. NIFTY
	SessionPath string // defaults to ~/.config/nifty-butterfly/session.json
}

// NewKiteSource creates a Kite source and loads any saved session from disk.
func NewKiteSource(cfg KiteConfig) *KiteSource {
	sessionPath := cfg.SessionPath
	if sessionPath == "" {
		homeDir, _ := os.UserHomeDir()
		sessionPath = filepath.Join(homeDir, ".config", "nifty-butterfly", "session.json")
	}

	symbol := cfg.Symbol
	if symbol == "" {
		symbol = "NIFTY"
	}

	ks := &KiteSource{
		client:      kiteconnect.New(cfg.APIKey),
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		userID:      cfg.UserID,
		symbol:      symbol,
		sessionPath: sessionPath,
	}

	_ = ks.loadSession()

	return ks
}

// Name implements Source.
func (k *KiteSource) Name() string {
	return "kite"
}

// sessionData represents persisted session data.
type sessionData struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsAuthenticated returns whether a valid session is loaded.
func (k *KiteSource) IsAuthenticated() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.authenticated
}

// GetLoginURL returns the Kite Connect login URL for the manual OAuth flow.
func (k *KiteSource) GetLoginURL() string {
	return k.client.GetLoginURL()
}

// CompleteLogin exchanges a request token for an access token and persists
// the session.
func (k *KiteSource) CompleteLogin(ctx context.Context, requestToken string) error {
	session, err := k.client.GenerateSession(requestToken, k.apiSecret)
	if err != nil {
		return fmt.Errorf("generating session: %w", err)
	}

	k.mu.Lock()
	k.authenticated = true
	k.client.SetAccessToken(session.AccessToken)
	k.mu.Unlock()

	if err := k.saveSession(session.AccessToken); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to persist session: %v\n", err)
	}

	return nil
}

// AutoLogin performs the full Kite web login using the stored password and a
// TOTP secret, then exchanges the resulting request token for a session. No
// browser interaction is needed.
func (k *KiteSource) AutoLogin(ctx context.Context, password, totpSecret string) error {
	requestToken, err := k.fetchRequestToken(ctx, password, totpSecret)
	if err != nil {
		return errors.NewFeedError(k.Name(), "auto-login failed", err)
	}
	return k.CompleteLogin(ctx, requestToken)
}

// Logout invalidates the session and removes the persisted token.
func (k *KiteSource) Logout(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.authenticated {
		if _, err := k.client.InvalidateAccessToken(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to invalidate token: %v\n", err)
		}
	}
	k.authenticated = false

	if err := os.Remove(k.sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

func (k *KiteSource) loadSession() error {
	data, err := os.ReadFile(k.sessionPath)
	if err != nil {
		return err
	}

	var session sessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return err
	}

	if time.Now().After(session.ExpiresAt) {
		return errors.ErrSessionExpired
	}

	k.mu.Lock()
	k.authenticated = true
	k.client.SetAccessToken(session.AccessToken)
	k.mu.Unlock()

	return nil
}

func (k *KiteSource) saveSession(accessToken string) error {
	if err := os.MkdirAll(filepath.Dir(k.sessionPath), 0700); err != nil {
		return err
	}

	// Kite tokens expire at 6 AM IST the next day
	loc, _ := time.LoadLocation("Asia/Kolkata")
	now := time.Now().In(loc)
	expiresAt := time.Date(now.Year(), now.Month(), now.Day()+1, 6, 0, 0, 0, loc)

	session := sessionData{
		AccessToken: accessToken,
		UserID:      k.userID,
		ExpiresAt:   expiresAt,
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return os.WriteFile(k.sessionPath, data, 0600)
}

// fetchRequestToken drives the Kite web login: password, then TOTP, then the
// connect redirect that carries the request token.
func (k *KiteSource) fetchRequestToken(ctx context.Context, password, totpSecret string) (string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", err
	}

	var requestToken string
	client := &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if token := req.URL.Query().Get("request_token"); token != "" {
				requestToken = token
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	loginResp, err := postForm(ctx, client, "https://kite.zerodha.com/api/login", url.Values{
		"user_id":  {k.userID},
		"password": {password},
	})
	if err != nil {
		return "", fmt.Errorf("password step: %w", err)
	}

	requestID, ok := loginResp["request_id"].(string)
	if !ok || requestID == "" {
		return "", fmt.Errorf("password step: no request_id in response")
	}

	code, err := totp.GenerateCode(totpSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("generating TOTP code: %w", err)
	}

	if _, err := postForm(ctx, client, "https://kite.zerodha.com/api/twofa", url.Values{
		"user_id":     {k.userID},
		"request_id":  {requestID},
		"twofa_value": {code},
		"twofa_type":  {"totp"},
	}); err != nil {
		return "", fmt.Errorf("twofa step: %w", err)
	}

	connectURL := fmt.Sprintf("https://kite.zerodha.com/connect/login?api_key=%s&v=3", url.QueryEscape(k.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, connectURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("connect step: %w", err)
	}
	resp.Body.Close()

	if requestToken == "" {
		return "", fmt.Errorf("connect step: no request token in redirect")
	}
	return requestToken, nil
}

func postForm(ctx context.Context, client *http.Client, rawURL string, form url.Values) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Status  string                 `json:"status"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("upstream rejected request: %s", body.Message)
	}
	return body.Data, nil
}

// GetSnapshot implements Source. It fetches the spot quote and all option
// contracts for the nearest expiry in batched quote calls.
func (k *KiteSource) GetSnapshot(ctx context.Context) (*models.ChainSnapshot, error) {
	if !k.IsAuthenticated() {
		return nil, errors.ErrNotAuthenticated
	}

	spot, err := k.getSpotPrice()
	if err != nil {
		return nil, errors.NewFeedError(k.Name(), "fetching spot price", err)
	}

	instruments, expiries, err := k.optionInstruments(ctx)
	if err != nil {
		return nil, errors.NewFeedError(k.Name(), "fetching instruments", err)
	}
	if len(instruments) == 0 {
		return nil, errors.NewDataError("chain", k.symbol, "no option contracts found", errors.ErrDataNotFound)
	}

	contracts, err := k.fetchContracts(instruments)
	if err != nil {
		return nil, errors.NewFeedError(k.Name(), "fetching quotes", err)
	}

	return &models.ChainSnapshot{
		Symbol:      k.symbol,
		Contracts:   contracts,
		SpotPrice:   spot,
		ExpiryDates: expiries,
		FetchedAt:   time.Now(),
	}, nil
}

func (k *KiteSource) getSpotPrice() (float64, error) {
	tradingSymbol, ok := spotSymbols[k.symbol]
	if !ok {
		tradingSymbol = k.symbol
	}
	key := fmt.Sprintf("NSE:%s", tradingSymbol)

	quotes, err := k.client.GetQuote(key)
	if err != nil {
		return 0, err
	}
	q, ok := quotes[key]
	if !ok {
		return 0, errors.ErrSymbolNotFound
	}
	return q.LastPrice, nil
}

// optionInstruments returns the CE/PE instruments of the nearest expiry for
// the configured underlying, plus the sorted list of upcoming expiry dates.
// The NFO instrument dump is cached for the trading day.
func (k *KiteSource) optionInstruments(ctx context.Context) ([]models.Instrument, []string, error) {
	all, err := k.nfoInstruments(ctx)
	if err != nil {
		return nil, nil, err
	}

	current, expiries := selectNearestExpiry(all, k.symbol, time.Now())
	return current, expiries, nil
}

// selectNearestExpiry keeps the CE/PE contracts of the nearest unexpired
// series for the underlying. The expiry cutoff follows the IST trading day,
// not the UTC one, so contracts lapse at midnight IST.
func selectNearestExpiry(all []models.Instrument, symbol string, now time.Time) ([]models.Instrument, []string) {
	ist := now.In(utils.IndiaLocation)
	today := time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, utils.IndiaLocation)

	expirySet := make(map[string]struct{})
	var options []models.Instrument
	for _, inst := range all {
		if inst.Name != symbol {
			continue
		}
		if inst.InstrType != "CE" && inst.InstrType != "PE" {
			continue
		}
		if inst.Expiry.Before(today) {
			continue
		}
		options = append(options, inst)
		expirySet[inst.Expiry.Format("2006-01-02")] = struct{}{}
	}

	expiries := make([]string, 0, len(expirySet))
	for s := range expirySet {
		expiries = append(expiries, s)
	}
	sort.Strings(expiries)

	if len(expiries) == 0 {
		return nil, nil
	}

	nearest := expiries[0]
	var current []models.Instrument
	for _, inst := range options {
		if inst.Expiry.Format("2006-01-02") == nearest {
			current = append(current, inst)
		}
	}
	return current, expiries
}

func (k *KiteSource) nfoInstruments(ctx context.Context) ([]models.Instrument, error) {
	k.mu.RLock()
	cached := k.instruments
	loadedAt := k.loadedAt
	k.mu.RUnlock()

	// The dump changes once a day after market setup
	if cached != nil && sameDay(loadedAt, time.Now()) {
		return cached, nil
	}

	raw, err := k.client.GetInstrumentsByExchange(string(models.NFO))
	if err != nil {
		return nil, err
	}

	result := make([]models.Instrument, len(raw))
	for i, inst := range raw {
		result[i] = models.Instrument{
			Token:     uint32(inst.InstrumentToken),
			Symbol:    inst.Tradingsymbol,
			Name:      inst.Name,
			Exchange:  models.Exchange(inst.Exchange),
			Segment:   inst.Segment,
			LotSize:   int(inst.LotSize),
			TickSize:  inst.TickSize,
			Expiry:    inst.Expiry.Time,
			Strike:    inst.StrikePrice,
			InstrType: inst.InstrumentType,
		}
	}

	k.mu.Lock()
	k.instruments = result
	k.loadedAt = time.Now()
	k.mu.Unlock()

	return result, nil
}

// fetchContracts pulls quotes for the given instruments in batches and maps
// them to raw contract rows.
func (k *KiteSource) fetchContracts(instruments []models.Instrument) ([]models.RawContract, error) {
	keys := make([]string, len(instruments))
	byKey := make(map[string]models.Instrument, len(instruments))
	for i, inst := range instruments {
		key := fmt.Sprintf("NFO:%s", inst.Symbol)
		keys[i] = key
		byKey[key] = inst
	}

	contracts := make([]models.RawContract, 0, len(instruments))
	for start := 0; start < len(keys); start += quoteBatchSize {
		end := start + quoteBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		quotes, err := k.client.GetQuote(keys[start:end]...)
		if err != nil {
			return nil, err
		}

		for key, q := range quotes {
			inst, ok := byKey[key]
			if !ok {
				continue
			}

			side := models.Call
			if inst.InstrType == "PE" {
				side = models.Put
			}

			rc := models.RawContract{
				StrikePrice: inst.Strike,
				Symbol:      inst.Symbol,
				Side:        side,
				LTP:         models.Float(q.LastPrice),
				OI:          models.Float(q.OI),
				Volume:      models.Float(float64(q.Volume)),
				Change:      models.Float(q.NetChange),
			}
			if len(q.Depth.Buy) > 0 && q.Depth.Buy[0].Price > 0 {
				rc.Bid = models.Float(q.Depth.Buy[0].Price)
			}
			if len(q.Depth.Sell) > 0 && q.Depth.Sell[0].Price > 0 {
				rc.Ask = models.Float(q.Depth.Sell[0].Price)
			}
			contracts = append(contracts, rc)
		}
	}

	return contracts, nil
}

func sameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

var _ Source = (*KiteSource)(nil)
