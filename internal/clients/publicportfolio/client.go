// Package publicportfolio scrapes holdings from public IntelliInvest
// portfolio pages.
package publicportfolio

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dpetrov/folio/internal/clients"
	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
)

const (
	DefaultTimeout = 30 * time.Second

	// The page serves a reduced payload to unknown agents.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// maxHoldings caps how many positions are scraped from one page.
	maxHoldings = 200
)

// Position data is embedded in the page's minified scripts. The property
// names survive minification, only the surrounding structure does not, so
// extraction matches properties positionally.
var (
	tickerPattern   = regexp.MustCompile(`(?:ticker|id):\s*"([A-Z0-9.]+)"`)
	namePattern     = regexp.MustCompile(`(?:name|shortname):\s*"([^"]+)"`)
	qtyPattern      = regexp.MustCompile(`(?:qty|quantity|openPositionQty):\s*([\d.]+)`)
	costPattern     = regexp.MustCompile(`(?:currCost|currentValue):\s*"([^"]+)"`)
	investedPattern = regexp.MustCompile(`(?:bcost|investedValue):\s*"([^"]+)"`)
	numberPattern   = regexp.MustCompile(`[\d.]+`)
)

// Client implements the PortfolioFetcher interface over the public
// IntelliInvest portfolio page. Extraction tries the embedded script data
// first and falls back to HTML tables.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithTimeout sets the page fetch timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent overrides the browser user agent sent with the request
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new public portfolio page client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  defaultUserAgent,
		logger:     common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchHoldings downloads the portfolio page and extracts its positions.
// An empty result is an error: a page with no recognizable positions is
// indistinguishable from a page layout change.
func (c *Client) FetchHoldings(ctx context.Context, pageURL string) ([]*models.Holding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portfolio page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &clients.APIError{
			StatusCode: resp.StatusCode,
			Message:    "unexpected portfolio page response",
			Endpoint:   pageURL,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portfolio page: %w", err)
	}

	holdings := c.extractFromScripts(doc)
	if len(holdings) == 0 {
		holdings = c.extractFromTables(doc)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no holdings found on portfolio page %s", pageURL)
	}

	c.logger.Debug().Int("count", len(holdings)).Str("url", pageURL).Msg("Scraped public portfolio")
	return holdings, nil
}

// extractFromScripts scans the page's script bodies for embedded position
// properties and matches them positionally.
func (c *Client) extractFromScripts(doc *goquery.Document) []*models.Holding {
	var tickers, names, qtys, costs, invested []string
	seen := make(map[string]bool)

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if text == "" {
			return
		}
		for _, m := range tickerPattern.FindAllStringSubmatch(text, -1) {
			if t := m[1]; len(t) >= 2 && !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
		names = appendMatches(names, namePattern, text)
		qtys = appendMatches(qtys, qtyPattern, text)
		costs = appendMatches(costs, costPattern, text)
		invested = appendMatches(invested, investedPattern, text)
	})

	var holdings []*models.Holding
	for i, ticker := range tickers {
		if i >= maxHoldings {
			break
		}
		holdings = append(holdings, buildHolding(ticker,
			at(names, i), at(qtys, i), at(costs, i), at(invested, i)))
	}
	return holdings
}

// extractFromTables parses server-rendered holdings tables as a fallback.
func (c *Client) extractFromTables(doc *goquery.Document) []*models.Holding {
	var holdings []*models.Holding

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := strings.ToLower(table.Find("tr").First().Text())
		if !strings.Contains(header, "тикер") && !strings.Contains(header, "ticker") {
			return true
		}

		table.Find("tr").Each(func(rowIdx int, row *goquery.Selection) {
			if rowIdx == 0 {
				return
			}
			cells := row.Find("td, th").Map(func(_ int, cell *goquery.Selection) string {
				return strings.TrimSpace(cell.Text())
			})
			if len(cells) < 3 || cells[0] == "" {
				return
			}
			holdings = append(holdings, buildHolding(cells[0], cells[1], cells[2], "", ""))
		})
		return false
	})

	return holdings
}

func buildHolding(ticker, name, qty, cost, invested string) *models.Holding {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	currentValue := parseAmount(cost)
	investedValue := parseAmount(invested)

	pnlValue := currentValue - investedValue
	pnlPct := 0.0
	if investedValue != 0 {
		pnlPct = pnlValue / investedValue * 100
	}

	return &models.Holding{
		Ticker:        ticker,
		Name:          strings.TrimSpace(name),
		AssetType:     models.NormalizeAssetType("", ticker),
		Currency:      models.InferCurrency(ticker),
		Qty:           parseAmount(qty),
		InvestedValue: investedValue,
		CurrentValue:  currentValue,
		PnlValue:      pnlValue,
		PnlPct:        pnlPct,
	}
}

// parseAmount reads the numeric part of values like "RUB 1234.56".
func parseAmount(s string) float64 {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

func appendMatches(dst []string, re *regexp.Regexp, text string) []string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		dst = append(dst, m[1])
	}
	return dst
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

// Ensure Client implements PortfolioFetcher
var _ interfaces.PortfolioFetcher = (*Client)(nil)
