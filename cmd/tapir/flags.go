package main

import (
	"fmt"
	"time"

	"github.com/jamesainslie/tapir/pkg/tapir/enumerate"
	"github.com/jamesainslie/tapir/pkg/tapir/types"
	"github.com/spf13/viper"
)

// buildPredicate creates an enumeration predicate from the CLI flags.
// All configured criteria compose by logical AND. Returns nil when no
// filtering flags are set, which accepts every regular file.
func buildPredicate() (enumerate.Predicate, error) {
	var preds []enumerate.Predicate

	if exclude := viper.GetStringSlice("exclude"); len(exclude) > 0 {
		p, err := enumerate.ExcludeGlobs(exclude...)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}

	if name := viper.GetString("compute.name"); name != "" {
		preds = append(preds, enumerate.MatchName(name))
	}

	if pattern := viper.GetString("compute.glob"); pattern != "" {
		p, err := enumerate.MatchGlob(pattern)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}

	if expr := viper.GetString("compute.regex"); expr != "" {
		p, err := enumerate.MatchRegexp(expr)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}

	if minStr := viper.GetString("compute.min_size"); minStr != "" {
		n, err := types.ParseSize(minStr)
		if err != nil {
			return nil, fmt.Errorf("invalid min-size %q: %w", minStr, err)
		}
		preds = append(preds, enumerate.MinSize(n))
	}

	if maxStr := viper.GetString("compute.max_size"); maxStr != "" {
		n, err := types.ParseSize(maxStr)
		if err != nil {
			return nil, fmt.Errorf("invalid max-size %q: %w", maxStr, err)
		}
		preds = append(preds, enumerate.MaxSize(n))
	}

	if withinStr := viper.GetString("compute.changed_within"); withinStr != "" {
		d, err := time.ParseDuration(withinStr)
		if err != nil {
			return nil, fmt.Errorf("invalid changed-within %q: %w", withinStr, err)
		}
		preds = append(preds, enumerate.ChangedWithin(d))
	}

	if len(preds) == 0 {
		return nil, nil
	}
	return enumerate.And(preds...), nil
}
