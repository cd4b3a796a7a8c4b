// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// covarianceEpsilon is added to the diagonal of every component covariance
// to keep the matrices invertible when a component collapses onto very few
// samples.
const covarianceEpsilon = 1e-3

// GaussianMixtureExtractor implements palette extraction by fitting a
// mixture of Gaussians over the Lab samples via expectation-maximisation.
// Each output colour is a component mean; its weight is the component's
// mixing proportion.
type GaussianMixtureExtractor struct{}

// mat3 is a dense 3x3 matrix, used for component covariances.
type mat3 [3][3]float64

func (m mat3) det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// inverse returns the matrix inverse via the adjugate. ok is false when
// the determinant is not strictly positive, which for a covariance matrix
// means it is singular or not positive definite.
func (m mat3) inverse() (inv mat3, ok bool) {
	d := m.det()
	if d <= 0 || math.IsNaN(d) {
		return inv, false
	}
	id := 1.0 / d
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * id
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * id
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * id
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * id
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * id
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * id
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * id
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * id
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * id
	return inv, true
}

// component is one Gaussian of the mixture.
type component struct {
	mean Lab
	cov  mat3
	mix  float64

	// Derived per E-step.
	inv    mat3
	logDet float64
}

// Extract fits cfg.ColourCount Gaussian components to the samples.
//
// The fallback and flagging behaviour matches KMeansExtractor: too few
// distinct colours yields the distinct set plus ErrInsufficientSamples,
// and hitting the iteration cap yields the best-so-far mixture plus
// ErrNonConvergence. A covariance that stays singular despite diagonal
// regularisation yields ErrNumericInstability with no result.
func (e *GaussianMixtureExtractor) Extract(ctx context.Context, samples []Lab, cfg ExtractorConfig) ([]WeightedColour, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInsufficientSamples)
	}

	k := cfg.ColourCount
	distinct := countDistinct(samples)
	if k >= distinct {
		out := distinctColours(samples)
		if k > distinct {
			return out, fmt.Errorf("%w: requested %d, have %d distinct", ErrInsufficientSamples, k, distinct)
		}
		return out, nil
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	comps := initComponents(rng, samples, k)

	n := len(samples)
	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}

	prevLogLik := math.Inf(-1)
	converged := false

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		// Cooperative cancellation, checked between iterations only.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Precompute inverses and log-determinants.
		for j := range comps {
			inv, ok := comps[j].cov.inverse()
			if !ok {
				regularise(&comps[j].cov)
				inv, ok = comps[j].cov.inverse()
				if !ok {
					return nil, fmt.Errorf("%w: singular covariance in component %d", ErrNumericInstability, j)
				}
			}
			comps[j].inv = inv
			comps[j].logDet = math.Log(comps[j].cov.det())
		}

		// E-step: posterior responsibilities via log-sum-exp.
		logLik := 0.0
		for i, s := range samples {
			maxLog := math.Inf(-1)
			for j := range comps {
				lp := math.Log(comps[j].mix) + logGaussian(s, &comps[j])
				resp[i][j] = lp
				if lp > maxLog {
					maxLog = lp
				}
			}
			sum := 0.0
			for j := range comps {
				sum += math.Exp(resp[i][j] - maxLog)
			}
			logSum := maxLog + math.Log(sum)
			logLik += logSum
			for j := range comps {
				resp[i][j] = math.Exp(resp[i][j] - logSum)
			}
		}

		// M-step: weighted mean and covariance re-estimation.
		for j := range comps {
			nk := 0.0
			for i := range samples {
				nk += resp[i][j]
			}
			if nk < 1e-10 {
				// Component starved of responsibility: reseed it on the
				// sample farthest from the current means, mirroring the
				// k-means empty-cluster rule.
				means := make([]Lab, len(comps))
				for m := range comps {
					means[m] = comps[m].mean
				}
				comps[j].mean = farthestSample(samples, means)
				comps[j].cov = scatterCovariance(samples, averageLab(samples))
				comps[j].mix = 1.0 / float64(k)
				continue
			}

			var mean Lab
			for i, s := range samples {
				mean.L += resp[i][j] * s.L
				mean.A += resp[i][j] * s.A
				mean.B += resp[i][j] * s.B
			}
			mean.L /= nk
			mean.A /= nk
			mean.B /= nk

			var cov mat3
			for i, s := range samples {
				d := [3]float64{s.L - mean.L, s.A - mean.A, s.B - mean.B}
				w := resp[i][j]
				for r := 0; r < 3; r++ {
					for c := 0; c < 3; c++ {
						cov[r][c] += w * d[r] * d[c]
					}
				}
			}
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					cov[r][c] /= nk
				}
			}
			regularise(&cov)

			comps[j].mean = mean
			comps[j].cov = cov
			comps[j].mix = nk / float64(n)
		}

		if iter > 0 && math.Abs(logLik-prevLogLik) < cfg.Tolerance {
			converged = true
			break
		}
		prevLogLik = logLik
	}

	out := make([]WeightedColour, 0, k)
	for _, comp := range comps {
		if comp.mix <= 0 {
			continue
		}
		col, _ := ColourFromLab(ClampLab(comp.mean))
		out = append(out, WeightedColour{Colour: col, Weight: comp.mix})
	}
	normaliseWeights(out)

	if !converged {
		return out, fmt.Errorf("%w: after %d iterations", ErrNonConvergence, cfg.MaxIterations)
	}
	return out, nil
}

// initComponents seeds the mixture: means via the shared k-means++
// initialiser, a shared covariance from the overall sample scatter, and
// uniform mixing proportions.
func initComponents(rng *rand.Rand, samples []Lab, k int) []component {
	means := seedCentroids(rng, samples, k)
	cov := scatterCovariance(samples, averageLab(samples))

	comps := make([]component, k)
	for j := range comps {
		comps[j] = component{
			mean: means[j],
			cov:  cov,
			mix:  1.0 / float64(k),
		}
	}
	return comps
}

// logGaussian evaluates the log density of s under the component, using
// the precomputed inverse covariance and log-determinant.
func logGaussian(s Lab, c *component) float64 {
	d := [3]float64{s.L - c.mean.L, s.A - c.mean.A, s.B - c.mean.B}
	var q float64
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			q += d[r] * c.inv[r][col] * d[col]
		}
	}
	const log2Pi = 1.8378770664093453
	return -0.5 * (q + c.logDet + 3*log2Pi)
}

// regularise adds a small epsilon to the covariance diagonal.
func regularise(cov *mat3) {
	for i := 0; i < 3; i++ {
		cov[i][i] += covarianceEpsilon
	}
}

// scatterCovariance computes the covariance of all samples about mean,
// already regularised.
func scatterCovariance(samples []Lab, mean Lab) mat3 {
	var cov mat3
	for _, s := range samples {
		d := [3]float64{s.L - mean.L, s.A - mean.A, s.B - mean.B}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				cov[r][c] += d[r] * d[c]
			}
		}
	}
	n := float64(len(samples))
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			cov[r][c] /= n
		}
	}
	regularise(&cov)
	return cov
}

// averageLab returns the arithmetic mean of the samples.
func averageLab(samples []Lab) Lab {
	var mean Lab
	for _, s := range samples {
		mean.L += s.L
		mean.A += s.A
		mean.B += s.B
	}
	n := float64(len(samples))
	return Lab{L: mean.L / n, A: mean.A / n, B: mean.B / n}
}

// normaliseWeights rescales the weights to sum to exactly 1.
func normaliseWeights(ws []WeightedColour) {
	total := 0.0
	for _, w := range ws {
		total += w.Weight
	}
	if total <= 0 {
		return
	}
	for i := range ws {
		ws[i].Weight /= total
	}
}
