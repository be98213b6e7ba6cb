package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"apistudy/adapters/datafile"
)

// StudyGeneratorConfig configures the synthetic study data generator
type StudyGeneratorConfig struct {
	RepositoryCount int   `json:"repository_count"`
	ReplicaCount    int   `json:"replica_count"`
	PullRequests    int   `json:"pull_requests"`
	Seed            int64 `json:"seed"`
}

// DefaultStudyConfig returns the sizes the original field studies used
func DefaultStudyConfig() StudyGeneratorConfig {
	return StudyGeneratorConfig{
		RepositoryCount: 20,
		ReplicaCount:    30,
		PullRequests:    500,
		Seed:            42,
	}
}

// StudyDataGenerator generates realistic data for both studies: API trial
// measurements with a planted latency/size separation between conditions,
// and pull-request records with planted process-outcome correlations.
type StudyDataGenerator struct {
	config StudyGeneratorConfig
	rng    *rand.Rand
}

func NewStudyDataGenerator(config StudyGeneratorConfig) *StudyDataGenerator {
	return &StudyDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var studyRepositories = [][2]string{
	{"facebook", "react"},
	{"microsoft", "vscode"},
	{"tensorflow", "tensorflow"},
	{"microsoft", "TypeScript"},
	{"facebook", "react-native"},
	{"vercel", "next.js"},
	{"kubernetes", "kubernetes"},
	{"microsoft", "PowerToys"},
	{"flutter", "flutter"},
	{"golang", "go"},
	{"rust-lang", "rust"},
	{"pytorch", "pytorch"},
	{"microsoft", "terminal"},
	{"facebook", "create-react-app"},
	{"angular", "angular"},
	{"vuejs", "vue"},
	{"nodejs", "node"},
	{"microsoft", "vscode-docs"},
	{"microsoft", "playwright"},
	{"microsoft", "monaco-editor"},
}

var queryTypes = []string{"simple", "complex", "multiple"}

// GenerateExperimentData generates API trial measurements. The query-based
// condition is planted faster and smaller than the endpoint-based one, with
// per-category multipliers, so comparison analyses have a real signal to
// find.
func (g *StudyDataGenerator) GenerateExperimentData() []datafile.ExperimentRecord {
	repoCount := g.config.RepositoryCount
	if repoCount > len(studyRepositories) {
		repoCount = len(studyRepositories)
	}

	var records []datafile.ExperimentRecord
	for _, repo := range studyRepositories[:repoCount] {
		for _, queryType := range queryTypes {
			for _, apiType := range []string{"graphql", "rest"} {
				for replica := 0; replica < g.config.ReplicaCount; replica++ {
					records = append(records, g.trialRecord(repo[0], repo[1], queryType, apiType))
				}
			}
		}
	}
	return records
}

func (g *StudyDataGenerator) trialRecord(owner, name, queryType, apiType string) datafile.ExperimentRecord {
	var timeMs, sizeBytes float64
	if apiType == "graphql" {
		timeMs = g.rng.NormFloat64()*30 + 150*queryTimeFactor(queryType, 1.0, 1.2, 1.5)
		sizeBytes = g.rng.NormFloat64()*500 + 5000*querySizeFactor(queryType, 1.0, 1.3, 2.0)
	} else {
		timeMs = g.rng.NormFloat64()*40 + 200*queryTimeFactor(queryType, 1.0, 1.3, 1.8)
		sizeBytes = g.rng.NormFloat64()*600 + 6000*querySizeFactor(queryType, 1.0, 1.4, 2.5)
	}

	return datafile.ExperimentRecord{
		Owner:             owner,
		Name:              name,
		QueryType:         queryType,
		APIType:           apiType,
		ResponseTimeMS:    math.Max(50, timeMs),
		ResponseSizeBytes: math.Max(1000, math.Trunc(sizeBytes)),
		Success:           true,
	}
}

func queryTimeFactor(queryType string, simple, complexF, multiple float64) float64 {
	switch queryType {
	case "complex":
		return complexF
	case "multiple":
		return multiple
	default:
		return simple
	}
}

func querySizeFactor(queryType string, simple, complexF, multiple float64) float64 {
	return queryTimeFactor(queryType, simple, complexF, multiple)
}

// GenerateReviewData generates pull-request records with planted
// relationships: bigger PRs attract more reviews and comments, and long
// review cycles lower the merge probability.
func (g *StudyDataGenerator) GenerateReviewData() []datafile.ReviewRecord {
	records := make([]datafile.ReviewRecord, 0, g.config.PullRequests)
	for i := 0; i < g.config.PullRequests; i++ {
		repo := studyRepositories[g.rng.Intn(len(studyRepositories))]
		records = append(records, g.pullRequestRecord(repo[0], repo[1], i+1))
	}
	return records
}

func (g *StudyDataGenerator) pullRequestRecord(owner, name string, number int) datafile.ReviewRecord {
	changedFiles := math.Max(1, math.Trunc(math.Exp(g.rng.NormFloat64()*1.0+1.5)))
	totalChanges := math.Max(1, math.Trunc(changedFiles*(20+g.rng.Float64()*80)))
	sizeScore := changedFiles + totalChanges/100

	// Review activity scales with PR size plus noise
	reviews := math.Max(0, math.Trunc(sizeScore*0.3+g.rng.NormFloat64()*2+1))
	comments := math.Max(0, math.Trunc(reviews*1.5+g.rng.NormFloat64()*3))
	participants := math.Max(1, math.Trunc(reviews*0.5+g.rng.NormFloat64()*1.5+1))

	lifetimeHours := math.Max(0.5, math.Exp(g.rng.NormFloat64()*1.2+3))

	// Merge probability drops with lifetime, mildly rises with activity
	mergeOdds := 0.8 - math.Min(0.4, lifetimeHours/1000) + math.Min(0.1, participants*0.02)
	merged := g.rng.Float64() < mergeOdds

	timeToMerge := 0.0
	if merged {
		timeToMerge = lifetimeHours
	}

	additions := math.Trunc(totalChanges * (0.5 + g.rng.Float64()*0.4))
	title := fmt.Sprintf("PR %d touching %d files in %s/%s", number, int(changedFiles), owner, name)

	return datafile.ReviewRecord{
		Owner:             owner,
		Name:              name,
		Number:            number,
		Title:             title,
		Additions:         additions,
		Deletions:         totalChanges - additions,
		ChangedFiles:      changedFiles,
		TotalChanges:      totalChanges,
		Comments:          comments,
		Reviews:           reviews,
		Participants:      participants,
		LifetimeHours:     lifetimeHours,
		TimeToMergeHours:  timeToMerge,
		Merged:            merged,
		DescriptionLength: math.Min(2000, math.Max(0, float64(len(title))*3+g.rng.NormFloat64()*100+200)),
	}
}
