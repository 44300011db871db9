package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable input of the decision layer.
type Config struct {
	// Threshold is the minimum model probability for acceptance when no
	// deterministic rule matches.
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`

	// HardNegativeDomains are sender domains that are never job mail.
	HardNegativeDomains []string `yaml:"hard_negative_domains"`

	// PlatformDomains are job boards and applicant tracking systems.
	PlatformDomains []string `yaml:"platform_domains"`

	// RequirePlatformKeyword gates the platform rule on PlatformSubjectKeywords.
	RequirePlatformKeyword  bool     `yaml:"require_platform_keyword"`
	PlatformSubjectKeywords []string `yaml:"platform_subject_keywords"`

	// High-precision phrase lists. Together they drive the accept rule; the
	// application, interview and rejection lists also drive status.
	ApplicationPhrases []string `yaml:"application_phrases"`
	InterviewPhrases   []string `yaml:"interview_phrases"`
	OfferPhrases       []string `yaml:"offer_phrases"`
	RejectionPhrases   []string `yaml:"rejection_phrases"`

	// OpeningPhrases mark postings and recruiter outreach.
	OpeningPhrases []string `yaml:"opening_phrases"`
}

// DefaultConfig returns the built-in lists and a 0.2 threshold.
func DefaultConfig() *Config {
	return &Config{
		Threshold: 0.2,
		HardNegativeDomains: []string{
			"sofi", "bankofamerica", "bofa", "chase", "wellsfargo", "capitalone",
			"americanexpress", "amex", "starbucks", "ubereats", "doordash",
			"grubhub", "mcdonalds", "burgerking", "dominos", "netflix", "spotify",
			"apple.com", "appleid", "primevideo", "hulu", "disneyplus", "amazon", "amzn",
		},
		PlatformDomains: []string{
			"indeed", "linkedin", "handshake", "joinhandshake", "ziprecruiter",
			"glassdoor", "workday", "myworkday", "greenhouse", "bamboohr", "icims",
			"smartrecruiters", "lever.co", "jazzhr", "monster", "careerbuilder",
			"workable", "eightfold", "myjobhelper", "talenthub",
		},
		RequirePlatformKeyword:  true,
		PlatformSubjectKeywords: []string{"job", "role", "position", "application", "hiring"},
		ApplicationPhrases: []string{
			"application received",
			"application submitted",
			"thank you for applying",
			"we received your application",
			"we have received your application",
			"your application has been received",
			"this is to confirm your application",
			"we are in receipt of your application",
			"your application is currently being reviewed",
		},
		InterviewPhrases: []string{
			"schedule an interview",
			"schedule your interview",
			"interview invitation",
			"invitation to interview",
			"virtual interview",
			"onsite interview",
			"phone interview",
		},
		OfferPhrases: []string{
			"job offer",
			"offer letter",
		},
		RejectionPhrases: []string{
			"we regret to inform you",
			"not moving forward with your application",
			"we have decided not to move forward",
			"your application was not selected",
			"we will not be moving forward",
		},
		OpeningPhrases: []string{
			"we are hiring",
			"we're hiring",
			"now hiring",
			"job opening",
			"job opportunity",
			"job for you",
			"jobs for you",
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v", ErrInvalidThreshold, c.Threshold)
	}
	if c.RequirePlatformKeyword && len(c.PlatformSubjectKeywords) == 0 {
		return ErrNoPlatformKeywords
	}
	return nil
}

// LoadConfig reads a YAML rules file on top of the defaults. Lists present in
// the file replace the default lists; absent keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
