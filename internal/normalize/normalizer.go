package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/models"
)

var raceKeyPattern = regexp.MustCompile(`^[a-z0-9_]+::r\d+$`)

// Normalizer converts RawRaceDocuments into NormalizedRaces.
type Normalizer struct {
	validate *validator.Validate
	logger   logrus.FieldLogger
}

// NewNormalizer creates a normalizer with its document validator registered.
func NewNormalizer(logger logrus.FieldLogger) *Normalizer {
	v := validator.New()
	_ = v.RegisterValidation("racekey", func(fl validator.FieldLevel) bool {
		return raceKeyPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateKeyPrefix, models.RawRaceDocument{})

	return &Normalizer{validate: v, logger: logger}
}

func validateKeyPrefix(sl validator.StructLevel) {
	doc := sl.Current().Interface().(models.RawRaceDocument)
	if doc.TrackKey == "" || doc.RaceKey == "" {
		return
	}
	if !strings.HasPrefix(doc.RaceKey, doc.TrackKey+"::") {
		sl.ReportError(doc.RaceKey, "RaceKey", "race_key", "trackprefix", doc.TrackKey)
	}
}

// Normalize validates doc and maps it onto the canonical race shape.
// Structural problems return an error wrapping models.ErrMalformedDocument;
// field-level problems degrade to nil values.
func (n *Normalizer) Normalize(doc *models.RawRaceDocument) (*models.NormalizedRace, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", models.ErrMalformedDocument)
	}
	if err := n.validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrMalformedDocument, describeValidation(doc, err))
	}

	race := &models.NormalizedRace{
		RaceKey:      doc.RaceKey,
		TrackKey:     doc.TrackKey,
		StartTimeISO: doc.StartTimeISO,
		RaceName:     fieldValue(doc.RaceName),
		Going:        fieldValue(doc.Going),
		Runners:      make([]models.NormalizedRunner, 0, len(doc.Runners)),
		SourceIDs:    []string{doc.SourceID},
		Extras:       flattenExtras(doc.Extras),
	}

	idx := NewRunnerIndex(nil)
	for i := range doc.Runners {
		race.Runners = idx.Fold(race.Runners, n.normalizeRunner(doc.SourceID, &doc.Runners[i]))
	}
	if dropped := len(doc.Runners) - len(race.Runners); dropped > 0 {
		n.logDuplicates(doc.SourceID, doc.RaceKey, dropped)
	}

	return race, nil
}

// NormalizeRace checks a race a collector delivered already normalized and
// returns a cleaned copy. Keys must pass the same checks as documents, odds
// at or below 1.0 are re-derived from the odds text or dropped, and runners
// sharing an identity are collapsed. sourceID fills an empty SourceIDs.
func (n *Normalizer) NormalizeRace(race *models.NormalizedRace, sourceID string) (*models.NormalizedRace, error) {
	if race == nil {
		return nil, fmt.Errorf("%w: nil race", models.ErrMalformedDocument)
	}
	switch {
	case race.RaceKey == "" || race.TrackKey == "":
		return nil, fmt.Errorf("%w: race without keys", models.ErrMalformedDocument)
	case !raceKeyPattern.MatchString(race.RaceKey):
		return nil, fmt.Errorf("%w: race key %q is not of the form track::rHHMM", models.ErrMalformedDocument, race.RaceKey)
	case !strings.HasPrefix(race.RaceKey, race.TrackKey+"::"):
		return nil, fmt.Errorf("%w: race key %q does not belong to track %q", models.ErrMalformedDocument, race.RaceKey, race.TrackKey)
	}

	out := race.Clone()
	if len(out.SourceIDs) == 0 && sourceID != "" {
		out.SourceIDs = []string{sourceID}
	}

	for i := range out.Runners {
		r := &out.Runners[i]
		r.Name = strings.TrimSpace(r.Name)
		r.SaddleCloth = strings.TrimSpace(r.SaddleCloth)
		r.OddsDecimal = n.checkOdds(sourceID, *r)
	}
	listed := len(out.Runners)
	out.Runners = DedupeRunners(out.Runners)
	if dropped := listed - len(out.Runners); dropped > 0 {
		n.logDuplicates(sourceID, out.RaceKey, dropped)
	}

	return out, nil
}

// checkOdds returns r's decimal odds if they are above 1.0, otherwise the
// odds re-derived from its text, which may be nil.
func (n *Normalizer) checkOdds(sourceID string, r models.NormalizedRunner) *float64 {
	if r.OddsDecimal == nil || *r.OddsDecimal > 1.0 {
		return r.OddsDecimal
	}
	var derived *float64
	if r.OddsText != nil {
		derived = ConvertOddsToDecimal(*r.OddsText)
	}
	if n.logger != nil {
		n.logger.WithFields(logrus.Fields{
			"source":    sourceID,
			"runner":    r.Name,
			"odds":      *r.OddsDecimal,
			"rederived": derived != nil,
		}).Debug("Decimal odds not above 1.0")
	}
	return derived
}

func (n *Normalizer) logDuplicates(sourceID, raceKey string, dropped int) {
	if n.logger == nil {
		return
	}
	n.logger.WithFields(logrus.Fields{
		"source":   sourceID,
		"race_key": raceKey,
		"dropped":  dropped,
	}).Debug("Collapsed duplicate runners")
}

func (n *Normalizer) normalizeRunner(sourceID string, raw *models.RawRunner) models.NormalizedRunner {
	runner := models.NormalizedRunner{
		RunnerID:    raw.RunnerID,
		Name:        strings.TrimSpace(raw.Name.Value),
		SaddleCloth: strings.TrimSpace(raw.Number.Value),
		JockeyName:  fieldValue(raw.Jockey),
		TrainerName: fieldValue(raw.Trainer),
		ConfidenceScores: map[string]float64{
			"name":    raw.Name.Confidence,
			"number":  raw.Number.Confidence,
			"odds":    confidence(raw.Odds),
			"jockey":  confidence(raw.Jockey),
			"trainer": confidence(raw.Trainer),
		},
		RawData: map[string]any{
			"source_id": sourceID,
			"extras":    flattenExtras(raw.Extras),
		},
	}

	if raw.Odds != nil {
		text := raw.Odds.Value
		runner.OddsText = &text
		runner.OddsDecimal = ConvertOddsToDecimal(text)
		if runner.OddsDecimal == nil && n.logger != nil {
			n.logger.WithFields(logrus.Fields{
				"source": sourceID,
				"runner": runner.Name,
				"odds":   text,
			}).Debug("Odds not convertible, runner left unpriced")
		}
	}

	return runner
}

func fieldValue(f *models.Field[string]) *string {
	if f == nil {
		return nil
	}
	v := strings.TrimSpace(f.Value)
	if v == "" {
		return nil
	}
	return &v
}

func confidence(f *models.Field[string]) float64 {
	if f == nil {
		return 0
	}
	return f.Confidence
}

func flattenExtras(extras map[string]models.Field[any]) map[string]any {
	out := make(map[string]any, len(extras))
	for k, f := range extras {
		out[k] = f.Value
	}
	return out
}

func describeValidation(doc *models.RawRaceDocument, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "racekey":
			msgs = append(msgs, fmt.Sprintf("race key %q is not of the form track::rHHMM", doc.RaceKey))
		case "trackprefix":
			msgs = append(msgs, fmt.Sprintf("race key %q does not belong to track %q", doc.RaceKey, doc.TrackKey))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
