// Package tier classifies signups into skill tiers.
//
// Classification is a pure function of one record and the configured
// thresholds. Records that cannot be read are classified as Novice and
// reported with ErrMalformedRecord; the run never aborts for one bad record.
package tier

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
)

// Default kill-count thresholds. Each value is the inclusive upper bound of
// its tier.
const (
	DefaultNoviceMax    = 10
	DefaultAssistedMax  = 25
	DefaultCompetentMax = 100
)

// Thresholds are the inclusive upper bounds of the kill-count intervals.
// Anything above CompetentMax is Expert.
type Thresholds struct {
	NoviceMax    int `json:"novice_max" yaml:"novice_max"`
	AssistedMax  int `json:"assisted_max" yaml:"assisted_max"`
	CompetentMax int `json:"competent_max" yaml:"competent_max"`
}

// DefaultThresholds returns the thresholds used by the weekly event.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NoviceMax:    DefaultNoviceMax,
		AssistedMax:  DefaultAssistedMax,
		CompetentMax: DefaultCompetentMax,
	}
}

// Validate checks that the intervals are non-negative and strictly ascending.
func (t Thresholds) Validate() error {
	if t.NoviceMax < 0 {
		return fmt.Errorf("%w: novice_max %d is negative", ErrInvalidThresholds, t.NoviceMax)
	}
	if t.AssistedMax <= t.NoviceMax {
		return fmt.Errorf("%w: assisted_max %d must exceed novice_max %d", ErrInvalidThresholds, t.AssistedMax, t.NoviceMax)
	}
	if t.CompetentMax <= t.AssistedMax {
		return fmt.Errorf("%w: competent_max %d must exceed assisted_max %d", ErrInvalidThresholds, t.CompetentMax, t.AssistedMax)
	}
	return nil
}

// ForKillCount maps a non-negative kill count to a tier.
func (t Thresholds) ForKillCount(kc int) model.Tier {
	switch {
	case kc <= t.NoviceMax:
		return model.Novice
	case kc <= t.AssistedMax:
		return model.NoviceAssisted
	case kc <= t.CompetentMax:
		return model.Competent
	default:
		return model.Expert
	}
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithThresholds overrides the kill-count thresholds.
func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		c.thresholds = t
	}
}

// WithLogger sets the logger used to report malformed records.
func WithLogger(l logger.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.log = l
		}
	}
}

// Classifier turns raw signups into classified participants.
type Classifier struct {
	thresholds Thresholds
	log        logger.Logger
}

// New creates a Classifier with default thresholds.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		thresholds: DefaultThresholds(),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Thresholds returns the configured thresholds.
func (c *Classifier) Thresholds() Thresholds { return c.thresholds }

// Classify returns the tier of rec. A supervisor signal always wins over the
// kill count. An unreadable kill count yields Novice and ErrMalformedRecord.
func (c *Classifier) Classify(rec model.Signup) (model.Tier, error) {
	if IsSupervisorSignal(rec) {
		return model.Supervisor, nil
	}
	kc, err := ParseKillCount(rec.KillCount)
	if err != nil {
		return model.Novice, err
	}
	return c.thresholds.ForKillCount(kc), nil
}

// FromSignup classifies rec into a participant. index is the position of rec
// in the roster and seeds the synthetic ID of an anonymous record. The
// returned participant is always usable; a non-nil error wraps
// ErrMalformedRecord and describes what was recovered.
func (c *Classifier) FromSignup(rec model.Signup, index int) (model.Participant, error) {
	p := model.Participant{
		ID:                   strings.TrimSpace(rec.ID),
		DisplayName:          strings.TrimSpace(rec.DisplayName),
		FavoriteRoles:        rec.FavoriteRoles,
		HasSpecialistGear:    rec.HasSpecialistGear,
		WantsRareTraining:    rec.WantsRareTraining,
		WantsSupervisorGroup: rec.WantsSupervisorGroup,
	}

	var problems []string
	if p.ID == "" {
		p.ID = SyntheticID(p.DisplayName, index)
		problems = append(problems, "missing id")
	}
	if p.DisplayName == "" {
		p.DisplayName = p.ID
	}

	tier, err := c.Classify(rec)
	p.Tier = tier
	if err != nil {
		problems = append(problems, err.Error())
	}
	if kc, kerr := ParseKillCount(rec.KillCount); kerr == nil {
		p.KillCount = kc
	}

	if len(problems) > 0 {
		return p, fmt.Errorf("%w: record %d (%s): %s", ErrMalformedRecord, index, p.ID, strings.Join(problems, "; "))
	}
	return p, nil
}

// ClassifyAll classifies a roster in input order. IDs repeated within the
// roster are suffixed so every participant stays distinct. The second return
// value lists the IDs of recovered records.
func (c *Classifier) ClassifyAll(ctx context.Context, roster []model.Signup) ([]model.Participant, []string) {
	out := make([]model.Participant, 0, len(roster))
	var degraded []string
	seen := make(map[string]int, len(roster))

	for i, rec := range roster {
		p, err := c.FromSignup(rec, i)
		if n := seen[p.ID]; n > 0 {
			base := p.ID
			for {
				n++
				p.ID = fmt.Sprintf("%s~%d", base, n)
				if seen[p.ID] == 0 {
					break
				}
			}
			seen[base] = n
			if err == nil {
				err = fmt.Errorf("%w: record %d: duplicate id %q", ErrMalformedRecord, i, base)
			}
		}
		seen[p.ID]++

		if err != nil {
			degraded = append(degraded, p.ID)
			c.log.Warn(ctx, "recovered malformed signup",
				logger.String("participant_id", p.ID),
				logger.String("tier", p.Tier.String()),
				logger.Error(err),
			)
		}
		out = append(out, p)
	}
	return out, degraded
}

// IsSupervisorSignal reports whether rec carries an explicit supervisor
// signal independent of its kill count.
func IsSupervisorSignal(rec model.Signup) bool {
	if rec.SupervisorRole {
		return true
	}
	t, err := model.ParseTier(rec.DeclaredTier)
	return err == nil && t == model.Supervisor
}

var killCountNoise = strings.NewReplacer(",", "", "_", "", " ", "", "'", "")

// ParseKillCount parses a free-text kill count such as "1,234" or " 42 ".
func ParseKillCount(raw model.KillCount) (int, error) {
	s := killCountNoise.Replace(strings.TrimSpace(string(raw)))
	if s == "" {
		return 0, fmt.Errorf("%w: missing kill count", ErrMalformedRecord)
	}
	kc, err := strconv.Atoi(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == float64(int(f)) {
			kc, err = int(f), nil
		}
	}
	if err != nil {
		return 0, fmt.Errorf("%w: unparsable kill count %q", ErrMalformedRecord, string(raw))
	}
	if kc < 0 {
		return 0, fmt.Errorf("%w: negative kill count %d", ErrMalformedRecord, kc)
	}
	return kc, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// SyntheticID derives a stable ID for a record that arrived without one.
func SyntheticID(displayName string, index int) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(displayName), "-"), "-")
	if slug == "" {
		return fmt.Sprintf("signup-%d", index+1)
	}
	return "signup-" + slug
}
