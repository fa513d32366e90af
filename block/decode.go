package block

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/grovetools/statusbar/errors"
	"github.com/mitchellh/mapstructure"
)

// DecodeConfig decodes a raw configuration record into target, which must be
// a pointer to a struct pre-filled with defaults. Keys that target does not
// declare are an error. Durations accept seconds as numbers or Go duration
// strings such as "10m".
func DecodeConfig(kind string, raw map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       DurationHook(),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create config decoder")
	}

	if err := decoder.Decode(raw); err != nil {
		return errors.ConfigValidation(kind, err)
	}
	return nil
}

// DurationHook converts numbers (seconds) and duration strings to
// time.Duration.
func DurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case int:
			return seconds(float64(v))
		case int64:
			return seconds(float64(v))
		case uint64:
			return seconds(float64(v))
		case float64:
			return seconds(v)
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid duration %q: %w", v, err)
			}
			if d < 0 {
				return nil, fmt.Errorf("duration cannot be negative: %s", v)
			}
			return d, nil
		default:
			return data, nil
		}
	}
}

func seconds(v float64) (time.Duration, error) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, fmt.Errorf("invalid duration: %v", v)
	case v < 0:
		return 0, fmt.Errorf("duration cannot be negative: %v", v)
	}
	ns := v * float64(time.Second)
	if ns >= math.MaxInt64 {
		return 0, fmt.Errorf("duration out of range: %v seconds", v)
	}
	return time.Duration(ns), nil
}
