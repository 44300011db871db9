package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/jobtrail/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func TestDecide_CategoryPrecedence(t *testing.T) {
	engine := newTestEngine(t, nil)

	tests := []struct {
		name       string
		input      Input
		wantAccept bool
		wantReason string
	}{
		{
			name: "hard negative sender overrides high model score",
			input: Input{
				Subject:     "Your statement is ready",
				Sender:      "Chase <no-reply@alerts.chase.com>",
				Probability: 0.99,
			},
			wantAccept: false,
			wantReason: RuleHardNegativeSender,
		},
		{
			name: "hard negative sender overrides strong phrase",
			input: Input{
				Subject: "Thank you for applying to Amazon",
				Sender:  "Amazon <jobs@amazon.com>",
			},
			wantAccept: false,
			wantReason: RuleHardNegativeSender,
		},
		{
			name: "strong phrase rescues low model score",
			input: Input{
				Subject:     "Update",
				Body:        "We regret to inform you that the position has been filled.",
				Sender:      "Acme HR <hr@acme.com>",
				Probability: 0.01,
			},
			wantAccept: true,
			wantReason: RuleStrongPhrase,
		},
		{
			name: "platform sender with subject keyword and low score",
			input: Input{
				Subject:     "New role that matches your profile",
				Sender:      "LinkedIn <jobs-noreply@linkedin.com>",
				Probability: 0.05,
			},
			wantAccept: true,
			wantReason: RulePlatformSender,
		},
		{
			name: "platform sender without subject keyword falls through to threshold",
			input: Input{
				Subject:     "You appeared in 9 searches",
				Sender:      "LinkedIn <notifications@linkedin.com>",
				Probability: 0.05,
			},
			wantAccept: false,
			wantReason: RuleBelowThreshold,
		},
		{
			name: "model score at threshold accepts",
			input: Input{
				Subject:     "Quick question",
				Sender:      "someone@example.org",
				Probability: 0.2,
			},
			wantAccept: true,
			wantReason: RuleModelThreshold,
		},
		{
			name: "nothing matches",
			input: Input{
				Subject:     "Weekend plans",
				Sender:      "friend@example.org",
				Probability: 0.1,
			},
			wantAccept: false,
			wantReason: RuleBelowThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := engine.Decide(tt.input)
			assert.Equal(t, tt.wantAccept, d.Accepted)
			assert.Equal(t, tt.wantReason, d.Reason)
			if !d.Accepted {
				assert.Equal(t, core.StatusOther, d.Status)
				assert.False(t, d.AppliedFlag)
			}
		})
	}
}

func TestDecide_PlatformGateDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequirePlatformKeyword = false
	engine := newTestEngine(t, cfg)

	d := engine.Decide(Input{
		Subject: "You appeared in 9 searches",
		Sender:  "LinkedIn <notifications@linkedin.com>",
	})
	assert.True(t, d.Accepted)
	assert.Equal(t, RulePlatformSender, d.Reason)
}

func TestDecide_StatusPrecedence(t *testing.T) {
	engine := newTestEngine(t, nil)

	tests := []struct {
		name        string
		subject     string
		body        string
		wantStatus  core.Status
		wantApplied bool
	}{
		{
			name:        "application confirmation",
			subject:     "Application received",
			body:        "Thanks, we will be in touch.",
			wantStatus:  core.StatusApplicationConfirmation,
			wantApplied: true,
		},
		{
			name:        "confirmation wins over interview",
			subject:     "Thank you for applying",
			body:        "If selected we will schedule an interview.",
			wantStatus:  core.StatusApplicationConfirmation,
			wantApplied: true,
		},
		{
			name:        "interview",
			subject:     "Interview invitation",
			body:        "Please pick a slot.",
			wantStatus:  core.StatusInterviewInvite,
			wantApplied: true,
		},
		{
			name:        "interview wins over rejection",
			subject:     "Next steps",
			body:        "We will not be moving forward with the phone interview for the first role, but would like to schedule an interview for another.",
			wantStatus:  core.StatusInterviewInvite,
			wantApplied: true,
		},
		{
			name:        "rejection",
			subject:     "Your candidacy",
			body:        "We regret to inform you that we have filled the role.",
			wantStatus:  core.StatusRejection,
			wantApplied: true,
		},
		{
			name:        "offer phrase accepts but has no dedicated status",
			subject:     "Your offer letter",
			body:        "Attached.",
			wantStatus:  core.StatusOther,
			wantApplied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := engine.Decide(Input{Subject: tt.subject, Body: tt.body, Sender: "hr@acme.com"})
			require.True(t, d.Accepted)
			assert.Equal(t, tt.wantStatus, d.Status)
			assert.Equal(t, tt.wantApplied, d.AppliedFlag)
		})
	}
}

func TestDecide_JobOpening(t *testing.T) {
	engine := newTestEngine(t, nil)

	d := engine.Decide(Input{
		Subject: "New job opening: Backend Engineer",
		Sender:  "Indeed <alert@indeed.com>",
	})
	require.True(t, d.Accepted)
	assert.Equal(t, core.StatusJobOpening, d.Status)
	assert.False(t, d.AppliedFlag)
}

func TestDecide_IgnoresURLsAndCase(t *testing.T) {
	engine := newTestEngine(t, nil)

	d := engine.Decide(Input{
		Subject: "Hello",
		Body:    "Visit https://example.com/thank-you-for-applying   THANK   YOU\nFOR applying!",
		Sender:  "hr@acme.com",
	})
	assert.True(t, d.Accepted)
	assert.Equal(t, RuleStrongPhrase, d.Reason)
}

func TestDecide_ThresholdFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0.9
	engine := newTestEngine(t, cfg)

	d := engine.Decide(Input{Subject: "Hi", Sender: "x@example.org", Probability: 0.5})
	assert.False(t, d.Accepted)

	cfg.Threshold = 0.4
	engine = newTestEngine(t, cfg)
	d = engine.Decide(Input{Subject: "Hi", Sender: "x@example.org", Probability: 0.5})
	assert.True(t, d.Accepted)
}

func TestProbabilityFor(t *testing.T) {
	one, zero := 1, 0
	p := 0.37

	assert.Equal(t, 0.37, ProbabilityFor(&one, &p))
	assert.Equal(t, 1.0, ProbabilityFor(&one, nil))
	assert.Equal(t, 0.0, ProbabilityFor(&zero, nil))
	assert.Equal(t, 0.0, ProbabilityFor(nil, nil))
}

func TestSenderDomainAndCompany(t *testing.T) {
	tests := []struct {
		sender      string
		wantDomain  string
		wantCompany string
	}{
		{"Acme Careers <careers@mail.acme.com>", "mail.acme.com", "acme"},
		{"jobs@greenhouse.io", "greenhouse.io", "greenhouse"},
		{"\"Broken <header\" x@y.example.co", "y.example.co", "example"},
		{"no address here", "no address here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.sender, func(t *testing.T) {
			assert.Equal(t, tt.wantDomain, SenderDomain(tt.sender))
			assert.Equal(t, tt.wantCompany, InferCompany(tt.sender))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Threshold = 1.5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidThreshold)

	cfg = DefaultConfig()
	cfg.PlatformSubjectKeywords = nil
	assert.ErrorIs(t, cfg.Validate(), ErrNoPlatformKeywords)

	_, err := NewEngine(&Config{Threshold: -1})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 0.35\nplatform_domains: [wellfound]\n"), 0o644))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.35, cfg.Threshold)
	assert.Equal(t, []string{"wellfound"}, cfg.PlatformDomains)
	assert.Equal(t, DefaultConfig().InterviewPhrases, cfg.InterviewPhrases)

	require.NoError(t, os.WriteFile(path, []byte("threshold: 3\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
