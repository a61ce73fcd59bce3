// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package management

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Defaults applied when the service omits the corresponding field
const (
	DefaultComplexity    = "MEDIUM"
	DefaultPreCheckType  = "CHECKBOX"
	DefaultChallengeType = "IMAGE_TEXT"
)

// CaptchaInfo describes a captcha resource as last reported by the service.
// Values are never updated in place: every call returns a fresh instance.
type CaptchaInfo struct {
	ID        string `mapstructure:"id" json:"id" yaml:"id"`
	FolderID  string `mapstructure:"folderId" json:"folderId" yaml:"folderId"`
	CloudID   string `mapstructure:"cloudId" json:"cloudId" yaml:"cloudId"`
	ClientKey string `mapstructure:"clientKey" json:"clientKey" yaml:"clientKey"`
	CreatedAt string `mapstructure:"createdAt" json:"createdAt" yaml:"createdAt"`
	Name      string `mapstructure:"name" json:"name" yaml:"name"`

	// AllowedSites lists the hostnames the captcha may be served on.
	AllowedSites []string `mapstructure:"allowedSites" json:"allowedSites" yaml:"allowedSites"`

	Complexity    string `mapstructure:"complexity" json:"complexity" yaml:"complexity"`
	PreCheckType  string `mapstructure:"preCheckType" json:"preCheckType" yaml:"preCheckType"`
	ChallengeType string `mapstructure:"challengeType" json:"challengeType" yaml:"challengeType"`

	// Optional fields: nil means the service did not report them.
	SecurityRules        []map[string]interface{} `mapstructure:"securityRules" json:"securityRules,omitempty" yaml:"securityRules,omitempty"`
	DeletionProtection   *bool                    `mapstructure:"deletionProtection" json:"deletionProtection,omitempty" yaml:"deletionProtection,omitempty"`
	OverrideVariants     []map[string]interface{} `mapstructure:"overrideVariants" json:"overrideVariants,omitempty" yaml:"overrideVariants,omitempty"`
	TurnOffHostnameCheck *bool                    `mapstructure:"turnOffHostnameCheck" json:"turnOffHostnameCheck,omitempty" yaml:"turnOffHostnameCheck,omitempty"`
	StyleJSON            *string                  `mapstructure:"styleJson" json:"styleJson,omitempty" yaml:"styleJson,omitempty"`
}

// captchaKeys maps each canonical (camelCase) key to its snake_case alias.
var captchaKeys = [][2]string{
	{"id", "id"},
	{"folderId", "folder_id"},
	{"cloudId", "cloud_id"},
	{"clientKey", "client_key"},
	{"createdAt", "created_at"},
	{"name", "name"},
	{"allowedSites", "allowed_sites"},
	{"complexity", "complexity"},
	{"preCheckType", "pre_check_type"},
	{"challengeType", "challenge_type"},
	{"securityRules", "security_rules"},
	{"deletionProtection", "deletion_protection"},
	{"overrideVariants", "override_variants"},
	{"turnOffHostnameCheck", "turn_off_hostname_check"},
	{"styleJson", "style_json"},
}

// CaptchaInfoFromMap builds a CaptchaInfo from a loosely typed map. Both
// camelCase and snake_case keys are accepted (camelCase wins), null values
// count as missing and missing required fields get their defaults. Only a
// value that cannot be coerced into its field type is an error.
func CaptchaInfoFromMap(m map[string]interface{}) (*CaptchaInfo, error) {
	n := normalizeKeys(m, captchaKeys)

	c := CaptchaInfo{
		AllowedSites:  []string{},
		Complexity:    DefaultComplexity,
		PreCheckType:  DefaultPreCheckType,
		ChallengeType: DefaultChallengeType,
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(n); err != nil {
		return nil, fmt.Errorf("decoding captcha: %w", err)
	}

	if c.AllowedSites == nil {
		c.AllowedSites = []string{}
	}

	return &c, nil
}

// ToMap converts o back to a map using camelCase keys. Optional fields are
// only included when present, so no nil values are introduced.
func (o CaptchaInfo) ToMap() map[string]interface{} {
	sites := o.AllowedSites
	if sites == nil {
		sites = []string{}
	}

	m := map[string]interface{}{
		"id":            o.ID,
		"folderId":      o.FolderID,
		"cloudId":       o.CloudID,
		"clientKey":     o.ClientKey,
		"createdAt":     o.CreatedAt,
		"name":          o.Name,
		"allowedSites":  sites,
		"complexity":    o.Complexity,
		"preCheckType":  o.PreCheckType,
		"challengeType": o.ChallengeType,
	}

	if o.SecurityRules != nil {
		m["securityRules"] = o.SecurityRules
	}
	if o.DeletionProtection != nil {
		m["deletionProtection"] = *o.DeletionProtection
	}
	if o.OverrideVariants != nil {
		m["overrideVariants"] = o.OverrideVariants
	}
	if o.TurnOffHostnameCheck != nil {
		m["turnOffHostnameCheck"] = *o.TurnOffHostnameCheck
	}
	if o.StyleJSON != nil {
		m["styleJson"] = *o.StyleJSON
	}

	return m
}

// normalizeKeys returns a map holding, for every known key, the first
// non-nil value found under the canonical key or its alias. Unknown keys
// are dropped.
func normalizeKeys(m map[string]interface{}, keys [][2]string) map[string]interface{} {
	n := make(map[string]interface{}, len(keys))

	for _, k := range keys {
		if v, ok := m[k[0]]; ok && v != nil {
			n[k[0]] = v
		} else if v, ok := m[k[1]]; ok && v != nil {
			n[k[0]] = v
		}
	}

	return n
}
