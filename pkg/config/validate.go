package config

import (
	"fmt"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config/validate"
	"github.com/ipfs/go-cid"
)

// ValidationError represents a single validation error with context.
type ValidationError = validate.ValidationError

// Validate performs comprehensive validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, validate.ValidateGateways(validate.GatewaysConfig{
		Defaults:        c.Gateways.Defaults,
		MaxUserGateways: c.Gateways.MaxUserGateways,
		StoragePrefix:   c.Gateways.StoragePrefix,
	})...)
	errs = append(errs, c.validateRanking()...)
	errs = append(errs, c.validateFetch()...)
	errs = append(errs, validate.ValidateStorage(validate.StorageConfig{
		Backend:    c.Storage.Backend,
		Path:       c.Storage.Path,
		RqliteDSN:  c.Storage.RqliteDSN,
		OlricAddrs: c.Storage.OlricAddrs,
		OlricDMap:  c.Storage.OlricDMap,
	})...)
	errs = append(errs, validate.ValidateLogging(validate.LoggingConfig{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		OutputFile: c.Logging.OutputFile,
	})...)
	errs = append(errs, c.validateHTTP()...)

	return errs
}

func (c *Config) validateRanking() []error {
	errs := validate.ValidateRanking(validate.RankingConfig{
		CID:        c.Ranking.CID,
		RetryCount: c.Ranking.RetryCount,
		RetryDelay: c.Ranking.RetryDelay,
		Mode:       c.Ranking.Mode,
		Timeout:    c.Settings.Timeout,
	})

	if c.Ranking.CID != "" {
		if _, err := cid.Decode(c.Ranking.CID); err != nil {
			errs = append(errs, ValidationError{
				Path:    "ranking.cid",
				Message: fmt.Sprintf("invalid CID: %v", err),
				Hint:    "expected a CIDv0 (Qm...) or CIDv1 (bafy...) string",
			})
		}
	}

	return errs
}

func (c *Config) validateFetch() []error {
	var errs []error
	if c.Fetch.CacheSize < 0 {
		errs = append(errs, ValidationError{
			Path:    "fetch.cache_size",
			Message: fmt.Sprintf("must be >= 0; got %d", c.Fetch.CacheSize),
			Hint:    "0 disables the content cache",
		})
	}
	return errs
}

func (c *Config) validateHTTP() []error {
	var errs []error
	if err := validate.ValidateListenAddr(c.HTTP.ListenAddr); err != nil {
		errs = append(errs, ValidationError{
			Path:    "http.listen_addr",
			Message: err.Error(),
			Hint:    "e.g. :6080 or 127.0.0.1:6080",
		})
	}
	return errs
}
