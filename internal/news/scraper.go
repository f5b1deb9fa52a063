package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/types"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Scraper collects headlines from financial news sites. It is the fallback
// news source when no JSON feed is available.
type Scraper struct {
	sources     []Site
	timeout     time.Duration
	maxArticles int
}

var _ interfaces.NewsSource = (*Scraper)(nil)

// Site defines a news site and where its headlines live
type Site struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g. "/news/tags/{symbol}.html"
	Selectors  ArticleSelectors
}

// ArticleSelectors defines CSS selectors for extracting article data
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Summary          string
}

// NewScraper creates a scraper over sites, or the default Indian financial
// press when sites is empty.
func NewScraper(timeout time.Duration, maxArticles int, sites ...Site) *Scraper {
	if len(sites) == 0 {
		sites = DefaultSites()
	}
	if maxArticles <= 0 {
		maxArticles = 10
	}
	return &Scraper{
		sources:     sites,
		timeout:     timeout,
		maxArticles: maxArticles,
	}
}

// DefaultSites returns the financial news sites scraped by default
func DefaultSites() []Site {
	return []Site{
		{
			Name:       "MoneyControl",
			BaseURL:    "https://www.moneycontrol.com",
			SearchPath: "/news/tags/{symbol}.html",
			Selectors: ArticleSelectors{
				ArticleContainer: "li.clearfix",
				Title:            "h2 a, h3 a",
				URL:              "h2 a, h3 a",
				Summary:          "p",
			},
		},
		{
			Name:       "EconomicTimes",
			BaseURL:    "https://economictimes.indiatimes.com",
			SearchPath: "/topic/{symbol}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.story-box",
				Title:            "a",
				URL:              "a",
				Summary:          "p",
			},
		},
		{
			Name:       "BusinessStandard",
			BaseURL:    "https://www.business-standard.com",
			SearchPath: "/search?q={symbol}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.listing-txt",
				Title:            "a.Hdng",
				URL:              "a.Hdng",
				Summary:          "p",
			},
		},
	}
}

// FetchRecentNews scrapes every site in order until maxArticles headlines are
// collected. A failing site is logged and skipped; the call only fails when
// every site failed.
func (s *Scraper) FetchRecentNews(ctx context.Context, ticker string) ([]json.RawMessage, error) {
	symbol := baseSymbol(ticker)
	logger.Info(ctx, "Starting news scraping", "symbol", symbol, "sources", len(s.sources))

	var articles []Article
	var errs []error
	for _, site := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrNewsFetch, err)
		}
		remaining := s.maxArticles - len(articles)
		if remaining <= 0 {
			break
		}
		found, err := s.scrapeSite(ctx, site, symbol, remaining)
		if err != nil {
			logger.Warn(ctx, "Failed to scrape source", "source", site.Name, "symbol", symbol, "error", err)
			errs = append(errs, err)
			continue
		}
		articles = append(articles, found...)
	}

	if len(articles) == 0 && len(errs) == len(s.sources) {
		return nil, fmt.Errorf("%w: %w", types.ErrNewsFetch, errors.Join(errs...))
	}

	logger.Info(ctx, "News scraping completed", "symbol", symbol, "articles", len(articles))

	out := make([]json.RawMessage, 0, len(articles))
	for _, a := range articles {
		b, err := json.Marshal(a)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// scrapeSite scrapes up to limit headlines from a single site
func (s *Scraper) scrapeSite(ctx context.Context, site Site, symbol string, limit int) ([]Article, error) {
	var articles []Article

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(site.BaseURL)),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML(site.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= limit {
			return
		}

		title := strings.TrimSpace(e.ChildText(site.Selectors.Title))
		if title == "" {
			return
		}

		link := e.ChildAttr(site.Selectors.URL, "href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = site.BaseURL + link
		}

		articles = append(articles, Article{
			Title:   title,
			Summary: strings.TrimSpace(e.ChildText(site.Selectors.Summary)),
			Link:    link,
		})
	})

	searchURL := site.BaseURL + strings.ReplaceAll(site.SearchPath, "{symbol}", url.PathEscape(strings.ToLower(symbol)))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return articles, nil
}

// baseSymbol drops the exchange suffix: "TCS.NS" -> "TCS"
func baseSymbol(ticker string) string {
	if i := strings.LastIndexByte(ticker, '.'); i > 0 {
		return ticker[:i]
	}
	return ticker
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
