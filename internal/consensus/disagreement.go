package consensus

import (
	"math"
	"sort"

	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/statistics"
)

// disagreementThreshold is the standard deviation above which a label is
// reported as contested.
const disagreementThreshold = 1.0

// Analyze measures how much the valid rankings diverge. Only rankings that
// are valid and non-empty participate; with fewer than two of those there is
// nothing to compare and the report defaults to full consensus.
//
// Per label it computes the mean, population variance and standard deviation
// of the 1-based positions the evaluators assigned. The overall consensus
// score normalizes the summed variance against the variance of a discrete
// uniform distribution over the label count (n²/12):
//
//	consensus = max(0, 1 − totalVariance / ((n²/12) · n))
//
// The normalization is a heuristic kept for compatibility with prior runs;
// scores from different label counts are not strictly comparable.
func Analyze(rankings []models.Ranking, labeled []models.LabeledResponse) *models.DisagreementReport {
	valid := make([]models.Ranking, 0, len(rankings))
	for _, r := range rankings {
		if r.IsValid && !r.Empty() {
			valid = append(valid, r)
		}
	}

	report := &models.DisagreementReport{
		Consensus:    1.0,
		RankingsUsed: len(valid),
	}
	if len(valid) < 2 {
		return report
	}

	report.PerLabel = make(map[string]models.LabelSpread, len(labeled))

	var totalVariance float64
	var mostContested *models.Disagreement

	for _, lr := range labeled {
		positions := labelPositions(lr.Label, valid)
		if len(positions) == 0 {
			continue
		}

		values := make([]float64, len(positions))
		for i, p := range positions {
			values[i] = float64(p)
		}

		spread := models.LabelSpread{
			Mean:      statistics.Mean(values),
			Variance:  statistics.Variance(values),
			StdDev:    statistics.StdDev(values),
			Positions: positions,
		}
		report.PerLabel[lr.Label] = spread
		totalVariance += spread.Variance

		d := models.Disagreement{
			Label:    lr.Label,
			ModelID:  lr.Response.ModelID,
			Variance: spread.Variance,
			StdDev:   spread.StdDev,
			Positions: models.PositionRange{
				Min: minInt(positions),
				Max: maxInt(positions),
			},
		}

		// Strict comparison keeps the first label on ties.
		if mostContested == nil || d.Variance > mostContested.Variance {
			contested := d
			mostContested = &contested
		}

		if spread.StdDev > disagreementThreshold {
			report.Disagreements = append(report.Disagreements, d)
		}
	}

	report.MostContested = mostContested

	sort.SliceStable(report.Disagreements, func(i, j int) bool {
		return report.Disagreements[i].Variance > report.Disagreements[j].Variance
	})

	labelCount := float64(len(labeled))
	maxPossibleVariance := labelCount * labelCount / 12.0
	if maxPossibleVariance > 0 {
		report.Consensus = math.Max(0, 1.0-totalVariance/(maxPossibleVariance*labelCount))
	}

	return report
}

// labelPositions collects the 1-based position each valid ranking assigned
// to the label. Rankings that omit the label contribute nothing.
func labelPositions(label string, rankings []models.Ranking) []int {
	var positions []int
	for _, r := range rankings {
		for pos, l := range r.ParsedOrder {
			if l == label {
				positions = append(positions, pos+1)
				break // valid rankings never repeat a label
			}
		}
	}
	return positions
}

func minInt(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxInt(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
