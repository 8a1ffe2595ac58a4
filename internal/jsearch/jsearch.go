package jsearch

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://jsearch.p.rapidapi.com"
	apiHost   = "jsearch.p.rapidapi.com"
	userAgent = "spigell/job-matcher"

	// DefaultLimit is the number of postings kept from a single search.
	DefaultLimit = 10
	defaultPages = 1
)

type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	APIHost    string
	// NumPages is sent as num_pages. JSearch bills per page.
	NumPages int
	Params   *SearchParams
}

func New(logger *zap.Logger, apiKey string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey: apiKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		APIHost:   apiHost,
		NumPages:  defaultPages,
	}
}
