package autoenhance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOption is returned when an enhancement option is outside its allowed set.
var ErrInvalidOption = errors.New("invalid enhancement option")

// SkyType selects the replacement sky.
type SkyType string

const (
	SkyUKSummer  SkyType = "UK_SUMMER"
	SkyUKWinter  SkyType = "UK_WINTER"
	SkyUSASummer SkyType = "USA_SUMMER"
)

// SkyTypes returns every accepted sky type.
func SkyTypes() []SkyType {
	return []SkyType{SkyUKSummer, SkyUKWinter, SkyUSASummer}
}

// Valid reports whether s is a known sky type.
func (s SkyType) Valid() bool {
	switch s {
	case SkyUKSummer, SkyUKWinter, SkyUSASummer:
		return true
	}
	return false
}

// ParseSkyType converts a user supplied string, ignoring case.
func ParseSkyType(s string) (SkyType, error) {
	v := SkyType(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: sky type %q, valid values are %v", ErrInvalidOption, s, SkyTypes())
	}
	return v, nil
}

// CloudType selects how cloudy the replacement sky is.
type CloudType string

const (
	CloudClear CloudType = "CLEAR"
	CloudLow   CloudType = "LOW_CLOUD"
	CloudHigh  CloudType = "HIGH_CLOUD"
)

// CloudTypes returns every accepted cloud type.
func CloudTypes() []CloudType {
	return []CloudType{CloudClear, CloudLow, CloudHigh}
}

// Valid reports whether c is a known cloud type.
func (c CloudType) Valid() bool {
	switch c {
	case CloudClear, CloudLow, CloudHigh:
		return true
	}
	return false
}

// ParseCloudType converts a user supplied string, ignoring case.
func ParseCloudType(s string) (CloudType, error) {
	v := CloudType(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: cloud type %q, valid values are %v", ErrInvalidOption, s, CloudTypes())
	}
	return v, nil
}

// ContrastBoost sets the contrast boost level.
//
// ContrastNone is sent to the API as JSON null.
type ContrastBoost string

const (
	ContrastNone   ContrastBoost = "NONE"
	ContrastLow    ContrastBoost = "LOW"
	ContrastMedium ContrastBoost = "MEDIUM"
	ContrastHigh   ContrastBoost = "HIGH"
)

// ContrastBoosts returns every accepted contrast boost level.
func ContrastBoosts() []ContrastBoost {
	return []ContrastBoost{ContrastNone, ContrastLow, ContrastMedium, ContrastHigh}
}

// Valid reports whether c is a known contrast boost level.
func (c ContrastBoost) Valid() bool {
	switch c {
	case ContrastNone, ContrastLow, ContrastMedium, ContrastHigh:
		return true
	}
	return false
}

// ParseContrastBoost converts a user supplied string, ignoring case.
func ParseContrastBoost(s string) (ContrastBoost, error) {
	v := ContrastBoost(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: contrast boost %q, valid values are %v", ErrInvalidOption, s, ContrastBoosts())
	}
	return v, nil
}

// MarshalJSON encodes ContrastNone as null.
func (c ContrastBoost) MarshalJSON() ([]byte, error) {
	if c == ContrastNone || c == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON decodes null as ContrastNone.
func (c *ContrastBoost) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = ContrastNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ContrastBoost(s)
	return nil
}

// EnhanceType is the kind of image being enhanced. Values outside the known
// set are passed through to the API unchanged.
type EnhanceType string

const (
	EnhanceProperty    EnhanceType = "property"
	EnhancePropertyUSA EnhanceType = "property_usa"
	EnhanceWarm        EnhanceType = "warm"
	EnhanceNeutral     EnhanceType = "neutral"
	EnhanceModern      EnhanceType = "modern"
	EnhanceFood        EnhanceType = "food"
)

// EnhancementOptions are the processing switches applied to an image.
type EnhancementOptions struct {
	VerticalCorrection bool          `json:"vertical_correction"`
	SkyReplacement     bool          `json:"sky_replacement"`
	SkyType            SkyType       `json:"sky_type"`
	CloudType          CloudType     `json:"cloud_type"`
	ContrastBoost      ContrastBoost `json:"contrast_boost"`
	ThreeSixty         bool          `json:"threesixty"`
	HDR                bool          `json:"hdr"`
}

// DefaultEnhancementOptions returns the options the service applies when
// nothing is specified.
func DefaultEnhancementOptions() EnhancementOptions {
	return EnhancementOptions{
		VerticalCorrection: true,
		SkyReplacement:     true,
		SkyType:            SkyUKSummer,
		CloudType:          CloudHigh,
		ContrastBoost:      ContrastLow,
		ThreeSixty:         false,
		HDR:                false,
	}
}

// Validate checks every enumerated field.
func (o EnhancementOptions) Validate() error {
	if !o.SkyType.Valid() {
		return fmt.Errorf("%w: sky type %q, valid values are %v", ErrInvalidOption, o.SkyType, SkyTypes())
	}
	if !o.CloudType.Valid() {
		return fmt.Errorf("%w: cloud type %q, valid values are %v", ErrInvalidOption, o.CloudType, CloudTypes())
	}
	if !o.ContrastBoost.Valid() {
		return fmt.Errorf("%w: contrast boost %q, valid values are %v", ErrInvalidOption, o.ContrastBoost, ContrastBoosts())
	}
	return nil
}

// processOptions is the body of image/{id}/process. HDR is fixed at upload
// time and is not part of a reprocess request.
type processOptions struct {
	VerticalCorrection bool          `json:"vertical_correction"`
	SkyReplacement     bool          `json:"sky_replacement"`
	SkyType            SkyType       `json:"sky_type"`
	CloudType          CloudType     `json:"cloud_type"`
	ContrastBoost      ContrastBoost `json:"contrast_boost"`
	ThreeSixty         bool          `json:"threesixty"`
}

func (o EnhancementOptions) forProcess() processOptions {
	return processOptions{
		VerticalCorrection: o.VerticalCorrection,
		SkyReplacement:     o.SkyReplacement,
		SkyType:            o.SkyType,
		CloudType:          o.CloudType,
		ContrastBoost:      o.ContrastBoost,
		ThreeSixty:         o.ThreeSixty,
	}
}
