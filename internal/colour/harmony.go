// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"math"
	"sort"
)

// Archetype names a geometric relationship among palette hues used by
// colour theory.
type Archetype string

const (
	ArchetypeComplementary      Archetype = "complementary"
	ArchetypeSplitComplementary Archetype = "split-complementary"
	ArchetypeTriadic            Archetype = "triadic"
	ArchetypeSquare             Archetype = "square"
	ArchetypeAnalogous          Archetype = "analogous"
	ArchetypeMonochromatic      Archetype = "monochromatic"
	ArchetypeNone               Archetype = "none"
)

// Template tolerances and thresholds, in degrees unless noted. A template
// score is 1 at a perfect match and decays linearly to 0 as the observed
// deviation approaches the tolerance.
const (
	// ConfidenceThreshold is the minimum template score required to name
	// an archetype. Below it the report carries ArchetypeNone with the
	// best score found, so callers can still rank palettes.
	ConfidenceThreshold = 0.75

	complementaryTolerance = 60.0
	triadicTolerance       = 60.0
	squareTolerance        = 45.0
	splitTolerance         = 45.0

	// analogousSpan is the arc beyond which a palette stops counting as
	// analogous at full confidence; the score decays over analogousDecay.
	analogousDecay = 120.0

	// monochromeHueTolerance normalises the circular hue deviation for
	// the monochromaticity score.
	monochromeHueTolerance = 60.0

	// Saturation range (in [0,1]) from which the monochromaticity
	// penalty starts, and the range over which it decays to zero. A
	// palette is monochromatic only when hue is tight AND saturation
	// stays compact enough that lightness does the differentiation.
	monochromeSatSlack = 0.15
	monochromeSatDecay = 0.35
)

// HuePair records the shortest-arc distance between two palette entries
// on the hue circle, together with the pair's combined weight.
type HuePair struct {
	I        int     `json:"i"`
	J        int     `json:"j"`
	Distance float64 `json:"distance"`
	Weight   float64 `json:"weight"`
}

// ArchetypeScores carries the template score of every harmony archetype.
type ArchetypeScores struct {
	Complementary      float64 `json:"complementary"`
	SplitComplementary float64 `json:"split_complementary"`
	Triadic            float64 `json:"triadic"`
	Square             float64 `json:"square"`
	Analogous          float64 `json:"analogous"`
	Monochromatic      float64 `json:"monochromatic"`
}

// HarmonyReport is the immutable result of analysing one palette. It
// never references the palette that produced it.
type HarmonyReport struct {
	// Archetype is the best-matching template at or above
	// ConfidenceThreshold, or ArchetypeNone.
	Archetype Archetype `json:"archetype"`

	// Confidence is the score of the best template, whether or not it
	// cleared the threshold.
	Confidence float64 `json:"confidence"`

	// Scores carries every template score for ranking and display.
	Scores ArchetypeScores `json:"scores"`

	// MeanSaturation is the weight-averaged HSL saturation, in [0, 1].
	MeanSaturation float64 `json:"mean_saturation"`

	// ContrastSpread is the range of perceptual lightness (L*) across the
	// palette, normalised against the 0-100 scale.
	ContrastSpread float64 `json:"contrast_spread"`

	// Monochromaticity is 1 minus the normalised circular hue spread,
	// penalised when saturation varies widely.
	Monochromaticity float64 `json:"monochromaticity"`

	// HuePairs lists the pairwise shortest-arc hue distances in palette
	// order (i < j).
	HuePairs []HuePair `json:"hue_pairs"`
}

// AnalyzeHarmony computes the harmony report for a palette. It is a pure
// closed-form computation: analysing the same palette twice yields
// identical reports.
func AnalyzeHarmony(p *Palette) HarmonyReport {
	entries := p.Colours()
	if len(entries) == 0 {
		return HarmonyReport{Archetype: ArchetypeNone}
	}

	report := HarmonyReport{
		HuePairs:       huePairs(entries),
		MeanSaturation: meanSaturation(entries),
		ContrastSpread: contrastSpread(entries),
	}

	report.Monochromaticity = monochromaticity(entries)
	report.Scores = ArchetypeScores{
		Complementary:      templateScore(entries, 2, complementaryTolerance, complementaryDeviation),
		SplitComplementary: templateScore(entries, 3, splitTolerance, splitComplementaryDeviation),
		Triadic:            templateScore(entries, 3, triadicTolerance, gapDeviation(120)),
		Square:             templateScore(entries, 4, squareTolerance, gapDeviation(90)),
		Analogous:          analogousScore(entries),
		Monochromatic:      report.Monochromaticity,
	}

	report.Archetype, report.Confidence = classify(report.Scores)
	return report
}

// classify picks the archetype with the highest score. Exact ties resolve
// in a fixed order, most specific template first. Below the confidence
// threshold the archetype is None but the best score is still reported.
func classify(s ArchetypeScores) (Archetype, float64) {
	ranked := []struct {
		archetype Archetype
		score     float64
	}{
		{ArchetypeMonochromatic, s.Monochromatic},
		{ArchetypeComplementary, s.Complementary},
		{ArchetypeTriadic, s.Triadic},
		{ArchetypeSquare, s.Square},
		{ArchetypeSplitComplementary, s.SplitComplementary},
		{ArchetypeAnalogous, s.Analogous},
	}

	best := ranked[0]
	for _, r := range ranked[1:] {
		if r.score > best.score {
			best = r
		}
	}

	if best.score < ConfidenceThreshold {
		return ArchetypeNone, best.score
	}
	return best.archetype, best.score
}

// HueDistance calculates the angular distance between two hues on the
// colour wheel. Returns a value between 0 and 180 degrees (shortest arc).
func HueDistance(h1, h2 float64) float64 {
	diff := math.Abs(h1 - h2)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// huePairs computes the pairwise hue distances in palette order. A pair's
// weight is the combined weight of its two entries.
func huePairs(entries []WeightedColour) []HuePair {
	pairs := make([]HuePair, 0, len(entries)*(len(entries)-1)/2)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			pairs = append(pairs, HuePair{
				I:        i,
				J:        j,
				Distance: HueDistance(entries[i].HSL.H, entries[j].HSL.H),
				Weight:   entries[i].Weight + entries[j].Weight,
			})
		}
	}
	return pairs
}

func meanSaturation(entries []WeightedColour) float64 {
	sum, total := 0.0, 0.0
	for _, e := range entries {
		sum += e.Weight * e.HSL.S
		total += e.Weight
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

func contrastSpread(entries []WeightedColour) float64 {
	minL, maxL := entries[0].Lab.L, entries[0].Lab.L
	for _, e := range entries[1:] {
		minL = math.Min(minL, e.Lab.L)
		maxL = math.Max(maxL, e.Lab.L)
	}
	return clamp01((maxL - minL) / 100.0)
}

// monochromaticity is 1 minus the normalised circular hue deviation,
// multiplied by a penalty that kicks in once the saturation range grows
// past monochromeSatSlack. Tight hue with wildly varying saturation is
// not monochromatic; the lightness axis has to do the differentiation.
func monochromaticity(entries []WeightedColour) float64 {
	std := circularStdDev(entries)
	base := clamp01(1 - std/monochromeHueTolerance)

	minS, maxS := entries[0].HSL.S, entries[0].HSL.S
	for _, e := range entries[1:] {
		minS = math.Min(minS, e.HSL.S)
		maxS = math.Max(maxS, e.HSL.S)
	}
	penalty := 1 - clamp01((maxS-minS-monochromeSatSlack)/monochromeSatDecay)

	return base * penalty
}

// circularStdDev is the weighted circular standard deviation of the
// palette hues, in degrees.
func circularStdDev(entries []WeightedColour) float64 {
	var sin, cos, total float64
	for _, e := range entries {
		rad := e.HSL.H * math.Pi / 180.0
		sin += e.Weight * math.Sin(rad)
		cos += e.Weight * math.Cos(rad)
		total += e.Weight
	}
	if total == 0 {
		return 0
	}

	r := math.Hypot(sin, cos) / total
	if r >= 1 {
		return 0
	}
	if r < 1e-12 {
		r = 1e-12
	}
	return math.Sqrt(-2*math.Log(r)) * 180.0 / math.Pi
}

// hueCluster is a contiguous arc of palette hues with a weighted circular
// mean and the arc width it spans.
type hueCluster struct {
	mean float64
	arc  float64
}

// clusterHues groups the palette hues into m contiguous clusters on the
// hue circle by cutting the circular order at the m largest gaps. Ties
// between equal gaps keep the earliest position, so the grouping is
// deterministic.
func clusterHues(entries []WeightedColour, m int) []hueCluster {
	type member struct {
		hue    float64
		weight float64
	}
	members := make([]member, len(entries))
	for i, e := range entries {
		members[i] = member{hue: e.HSL.H, weight: e.Weight}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].hue < members[j].hue })

	n := len(members)
	gaps := make([]float64, n)
	for i := 0; i < n; i++ {
		next := members[(i+1)%n].hue
		if i == n-1 {
			next += 360
		}
		gaps[i] = next - members[i].hue
	}

	// Indices of the m largest gaps; these become the cluster boundaries.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return gaps[order[i]] > gaps[order[j]] })
	cuts := make(map[int]bool, m)
	for _, idx := range order[:m] {
		cuts[idx] = true
	}

	// Walk the circle starting just past a cut.
	start := 0
	for i := 0; i < n; i++ {
		if cuts[i] {
			start = (i + 1) % n
			break
		}
	}

	clusters := make([]hueCluster, 0, m)
	var sin, cos, weight, arc float64
	flush := func() {
		if weight == 0 {
			return
		}
		mean := math.Atan2(sin, cos) * 180.0 / math.Pi
		if mean < 0 {
			mean += 360
		}
		clusters = append(clusters, hueCluster{mean: mean, arc: arc})
		sin, cos, weight, arc = 0, 0, 0, 0
	}

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		rad := members[idx].hue * math.Pi / 180.0
		sin += members[idx].weight * math.Sin(rad)
		cos += members[idx].weight * math.Cos(rad)
		weight += members[idx].weight
		if cuts[idx] {
			flush()
		} else {
			arc += gaps[idx]
		}
	}
	flush()

	return clusters
}

// widestArc returns the widest cluster arc, the within-cluster spread
// that penalises sloppy template matches.
func widestArc(clusters []hueCluster) float64 {
	widest := 0.0
	for _, c := range clusters {
		if c.arc > widest {
			widest = c.arc
		}
	}
	return widest
}

// templateScore evaluates one fixed-arity hue template. The palette hues
// are grouped into arity clusters; the deviation function measures how
// far the cluster means sit from the ideal template angles. Half the
// widest cluster arc is added so that a template can not score well by
// lumping scattered hues into one nominal cluster.
func templateScore(entries []WeightedColour, arity int, tolerance float64, deviation func([]hueCluster) float64) float64 {
	if len(entries) < arity {
		return 0
	}
	clusters := clusterHues(entries, arity)
	if len(clusters) < arity {
		return 0
	}
	dev := deviation(clusters) + widestArc(clusters)/2
	return clamp01(1 - dev/tolerance)
}

// complementaryDeviation measures how far two cluster means sit from
// being 180 degrees apart.
func complementaryDeviation(clusters []hueCluster) float64 {
	return math.Abs(HueDistance(clusters[0].mean, clusters[1].mean) - 180)
}

// gapDeviation builds a deviation function for templates whose ideal
// cluster means are evenly spaced by want degrees (120 for triadic, 90
// for square): the largest departure of the circular gaps from want.
func gapDeviation(want float64) func([]hueCluster) float64 {
	return func(clusters []hueCluster) float64 {
		gaps := clusterGaps(clusters)
		dev := 0.0
		for _, g := range gaps {
			if d := math.Abs(g - want); d > dev {
				dev = d
			}
		}
		return dev
	}
}

// splitComplementaryDeviation compares the cluster gap cycle against the
// split-complementary ideal: one hue plus two flanking its complement,
// giving gaps of 150, 60 and 150 degrees in circular order. All rotations
// of the ideal are tried and the best match wins.
func splitComplementaryDeviation(clusters []hueCluster) float64 {
	gaps := clusterGaps(clusters)
	ideal := []float64{150, 60, 150}

	best := math.MaxFloat64
	for rot := 0; rot < len(ideal); rot++ {
		dev := 0.0
		for i, g := range gaps {
			if d := math.Abs(g - ideal[(i+rot)%len(ideal)]); d > dev {
				dev = d
			}
		}
		if dev < best {
			best = dev
		}
	}
	return best
}

// clusterGaps returns the circular gaps between consecutive cluster means
// in ascending hue order. The gaps sum to 360.
func clusterGaps(clusters []hueCluster) []float64 {
	means := make([]float64, len(clusters))
	for i, c := range clusters {
		means[i] = c.mean
	}
	sort.Float64s(means)

	gaps := make([]float64, len(means))
	for i := range means {
		next := means[(i+1)%len(means)]
		if i == len(means)-1 {
			next += 360
		}
		gaps[i] = next - means[i]
	}
	return gaps
}

// analogousScore rates how tightly all hues sit within one narrow arc.
// The arc is the full circle minus the largest empty gap; a palette whose
// hues all fall inside 30 degrees keeps a score at or above the
// confidence threshold.
func analogousScore(entries []WeightedColour) float64 {
	if len(entries) < 2 {
		return 0
	}

	hues := make([]float64, len(entries))
	for i, e := range entries {
		hues[i] = e.HSL.H
	}
	sort.Float64s(hues)

	largestGap := 0.0
	for i := range hues {
		next := hues[(i+1)%len(hues)]
		if i == len(hues)-1 {
			next += 360
		}
		if g := next - hues[i]; g > largestGap {
			largestGap = g
		}
	}

	arc := 360 - largestGap
	return clamp01(1 - arc/analogousDecay)
}
