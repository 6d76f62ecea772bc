package validate

import (
	"fmt"
	"time"
)

// GatewaysConfig represents the gateway section for validation purposes.
type GatewaysConfig struct {
	Defaults        []string
	MaxUserGateways int
	StoragePrefix   string
}

// ValidateGateways checks the default gateway URLs and the user list cap.
func ValidateGateways(gc GatewaysConfig) []error {
	var errs []error

	seen := make(map[string]bool)
	for i, raw := range gc.Defaults {
		path := fmt.Sprintf("gateways.defaults[%d]", i)
		if err := ValidateHTTPURL(raw); err != nil {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: err.Error(),
				Hint:    "expected https://host[/path]",
			})
			continue
		}
		if seen[raw] {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("duplicate gateway %q", raw),
			})
		}
		seen[raw] = true
	}

	if gc.MaxUserGateways < 0 {
		errs = append(errs, ValidationError{
			Path:    "gateways.max_user_gateways",
			Message: fmt.Sprintf("must be >= 0; got %d", gc.MaxUserGateways),
		})
	}

	if gc.StoragePrefix == "" {
		errs = append(errs, ValidationError{
			Path:    "gateways.storage_prefix",
			Message: "must not be empty",
			Hint:    "default is ipfs-smart-gateway:",
		})
	}

	return errs
}

// RankingConfig represents the ranking and settings values for validation purposes.
type RankingConfig struct {
	CID        string
	RetryCount int
	RetryDelay time.Duration
	Mode       string
	Timeout    time.Duration
}

// ValidateRanking checks retry and timeout bounds and the probing mode.
// CID syntax is checked by the caller, which owns the CID parser.
func ValidateRanking(rc RankingConfig) []error {
	var errs []error

	if rc.CID == "" {
		errs = append(errs, ValidationError{
			Path:    "ranking.cid",
			Message: "must not be empty",
		})
	}
	if rc.RetryCount < 0 {
		errs = append(errs, ValidationError{
			Path:    "ranking.retry_count",
			Message: fmt.Sprintf("must be >= 0; got %d", rc.RetryCount),
		})
	}
	if rc.RetryDelay < 0 {
		errs = append(errs, ValidationError{
			Path:    "ranking.retry_delay",
			Message: fmt.Sprintf("must be >= 0; got %s", rc.RetryDelay),
		})
	}
	if rc.Mode != "concurrent" && rc.Mode != "sequential" {
		errs = append(errs, ValidationError{
			Path:    "ranking.mode",
			Message: fmt.Sprintf("invalid value %q", rc.Mode),
			Hint:    "allowed values: concurrent, sequential",
		})
	}
	if rc.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Path:    "settings.timeout",
			Message: fmt.Sprintf("must be positive; got %s", rc.Timeout),
			Hint:    "recommended 3s",
		})
	}

	return errs
}
