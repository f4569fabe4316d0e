package models

import (
	"fmt"
	"strings"
)

// normalizeLabel folds case and drops separators so "Quick Win", "quick-win"
// and "QUICK_WIN" compare equal.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

func parseLabel[T ~int](kind, s string, labels map[T]string) (T, error) {
	want := normalizeLabel(s)
	for v, label := range labels {
		if normalizeLabel(label) == want {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}

func labelOf[T ~int](v T, labels map[T]string) string {
	if label, ok := labels[v]; ok {
		return label
	}
	return fmt.Sprintf("invalid(%d)", int(v))
}

// Impact is the qualitative business impact of a use case.
type Impact int

const (
	ImpactLow Impact = iota + 1
	ImpactMedium
	ImpactHigh
)

var impactLabels = map[Impact]string{
	ImpactLow:    "Low",
	ImpactMedium: "Medium",
	ImpactHigh:   "High",
}

func ParseImpact(s string) (Impact, error) { return parseLabel("impact", s, impactLabels) }

func (i Impact) String() string { return labelOf(i, impactLabels) }

func (i Impact) Valid() bool {
	_, ok := impactLabels[i]
	return ok
}

// Weight is the ranking weight used by the opportunity priority formula.
func (i Impact) Weight() float64 {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}

// PilotMultiplier scales a provider's base pilot value.
func (i Impact) PilotMultiplier() float64 {
	switch i {
	case ImpactHigh:
		return 1.3
	case ImpactMedium:
		return 1.0
	case ImpactLow:
		return 0.7
	}
	return 0
}

func (i Impact) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("invalid impact %d", int(i))
	}
	return []byte(i.String()), nil
}

func (i *Impact) UnmarshalText(b []byte) error {
	v, err := ParseImpact(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Effort is the implementation effort of a use case. Lower effort ranks higher.
type Effort int

const (
	EffortLow Effort = iota + 1
	EffortMedium
	EffortHigh
)

var effortLabels = map[Effort]string{
	EffortLow:    "Low",
	EffortMedium: "Medium",
	EffortHigh:   "High",
}

func ParseEffort(s string) (Effort, error) { return parseLabel("effort", s, effortLabels) }

func (e Effort) String() string { return labelOf(e, effortLabels) }

func (e Effort) Valid() bool {
	_, ok := effortLabels[e]
	return ok
}

func (e Effort) Weight() float64 {
	switch e {
	case EffortLow:
		return 3
	case EffortMedium:
		return 2
	case EffortHigh:
		return 1
	}
	return 0
}

func (e Effort) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("invalid effort %d", int(e))
	}
	return []byte(e.String()), nil
}

func (e *Effort) UnmarshalText(b []byte) error {
	v, err := ParseEffort(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ROI classifies how quickly a use case pays back.
type ROI int

const (
	ROILongTerm ROI = iota + 1
	ROIStrategic
	ROIQuickWin
)

var roiLabels = map[ROI]string{
	ROILongTerm:  "Long-Term",
	ROIStrategic: "Strategic",
	ROIQuickWin:  "Quick Win",
}

func ParseROI(s string) (ROI, error) { return parseLabel("roi", s, roiLabels) }

func (r ROI) String() string { return labelOf(r, roiLabels) }

func (r ROI) Valid() bool {
	_, ok := roiLabels[r]
	return ok
}

func (r ROI) Weight() float64 {
	switch r {
	case ROIQuickWin:
		return 3
	case ROIStrategic:
		return 2
	case ROILongTerm:
		return 1
	}
	return 0
}

func (r ROI) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid roi %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *ROI) UnmarshalText(b []byte) error {
	v, err := ParseROI(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Tier is the readiness band derived from the overall score.
type Tier int

const (
	TierEarlyStage Tier = iota + 1
	TierDeveloping
	TierReady
)

var tierLabels = map[Tier]string{
	TierEarlyStage: "Early Stage",
	TierDeveloping: "Developing",
	TierReady:      "Ready",
}

func ParseTier(s string) (Tier, error) { return parseLabel("tier", s, tierLabels) }

func (t Tier) String() string { return labelOf(t, tierLabels) }

func (t Tier) Valid() bool {
	_, ok := tierLabels[t]
	return ok
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SizeClass is a provider's typical engagement size, also used for the
// company size segment. Unrecognized labels are a legal value.
type SizeClass int

const (
	SizeUnrecognized SizeClass = iota
	SizeSMB
	SizeMidEnterprise
	SizeEnterprise
)

var sizeLabels = map[SizeClass]string{
	SizeUnrecognized:  "Unrecognized",
	SizeSMB:           "SMB",
	SizeMidEnterprise: "Mid-Enterprise",
	SizeEnterprise:    "Enterprise",
}

// ParseSizeClass never fails: unknown labels map to SizeUnrecognized.
func ParseSizeClass(s string) SizeClass {
	v, err := parseLabel("size class", s, sizeLabels)
	if err != nil {
		return SizeUnrecognized
	}
	return v
}

func (s SizeClass) String() string { return labelOf(s, sizeLabels) }

// PilotBase is the base estimated pilot value for a provider of this size.
func (s SizeClass) PilotBase() float64 {
	switch s {
	case SizeEnterprise:
		return 300000
	case SizeMidEnterprise:
		return 150000
	case SizeSMB:
		return 50000
	}
	return 100000
}

func (s SizeClass) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SizeClass) UnmarshalText(b []byte) error {
	*s = ParseSizeClass(string(b))
	return nil
}

// MatchStage tracks a match through the sales workflow. The pipeline only
// ever creates matches in MatchStageNotStarted.
type MatchStage int

const (
	MatchStageNotStarted MatchStage = iota + 1
)

var matchStageLabels = map[MatchStage]string{
	MatchStageNotStarted: "Not Started",
}

func ParseMatchStage(s string) (MatchStage, error) {
	return parseLabel("match stage", s, matchStageLabels)
}

func (m MatchStage) String() string { return labelOf(m, matchStageLabels) }

func (m MatchStage) MarshalText() ([]byte, error) {
	if _, ok := matchStageLabels[m]; !ok {
		return nil, fmt.Errorf("invalid match stage %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *MatchStage) UnmarshalText(b []byte) error {
	v, err := ParseMatchStage(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
