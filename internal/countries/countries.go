package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"love-letter/internal/logging"
)

const defaultAPIURL = "https://restcountries.com/v3.1/all?fields=name,flags,cca3"

// Option is one selectable country: alpha-3 code, display name, flag URLs.
type Option struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	FlagPNG string `json:"flagPng,omitempty"`
	FlagSVG string `json:"flagSvg,omitempty"`
}

// Catalog serves the country list from memory, falling back to a JSON
// cache on disk and only then to the REST Countries API. The catalog never
// refreshes within a process lifetime; delete the cache file to force a
// refetch.
type Catalog struct {
	client    *http.Client
	apiURL    string
	cachePath string

	mu    sync.Mutex
	cache []Option
}

// New creates a Catalog caching to the given file path.
func New(cachePath string) *Catalog {
	return &Catalog{
		client:    &http.Client{Timeout: 15 * time.Second},
		apiURL:    defaultAPIURL,
		cachePath: cachePath,
	}
}

// All returns every country, sorted by name.
func (c *Catalog) All(ctx context.Context) ([]Option, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache != nil {
		return c.cache, nil
	}

	if loaded := c.loadFromDisk(); loaded != nil {
		c.cache = loaded
		return c.cache, nil
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.cache = fetched
	c.saveToDisk(fetched)
	return c.cache, nil
}

// FindByCode returns the country with the given alpha-3 code, or nil when
// the code is blank or unknown. Matching is case-insensitive.
func (c *Catalog) FindByCode(ctx context.Context, code string) (*Option, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if strings.EqualFold(all[i].Code, code) {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (c *Catalog) loadFromDisk() []Option {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil
	}

	var cached []Option
	if err := json.Unmarshal(data, &cached); err != nil {
		logging.Warn("Ignoring corrupt country cache %s: %v", c.cachePath, err)
		return nil
	}
	if len(cached) == 0 {
		return nil
	}

	logging.Debug("Loaded %d countries from disk cache", len(cached))
	return cached
}

func (c *Catalog) saveToDisk(countries []Option) {
	data, err := json.Marshal(countries)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.cachePath, data, 0o644); err != nil {
		logging.Warn("Failed to write country cache %s: %v", c.cachePath, err)
	}
}

type apiCountry struct {
	Name *struct {
		Common string `json:"common"`
	} `json:"name"`
	Flags *struct {
		PNG string `json:"png"`
		SVG string `json:"svg"`
	} `json:"flags"`
	Cca3 string `json:"cca3"`
}

func (c *Catalog) fetch(ctx context.Context) ([]Option, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("country catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("country catalog returned status %d", resp.StatusCode)
	}

	var raw []apiCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode country catalog: %w", err)
	}

	options := make([]Option, 0, len(raw))
	for _, rc := range raw {
		if strings.TrimSpace(rc.Cca3) == "" || rc.Name == nil || rc.Name.Common == "" {
			continue
		}
		opt := Option{
			Code: strings.ToUpper(rc.Cca3),
			Name: rc.Name.Common,
		}
		if rc.Flags != nil {
			opt.FlagPNG = rc.Flags.PNG
			opt.FlagSVG = rc.Flags.SVG
		}
		options = append(options, opt)
	}

	sort.Slice(options, func(i, j int) bool {
		return strings.ToLower(options[i].Name) < strings.ToLower(options[j].Name)
	})

	logging.Info("Fetched %d countries from REST Countries", len(options))
	return options, nil
}
