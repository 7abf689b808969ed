// Package compcurve estimates the algorithmic complexity of a time series
// from how well it compresses after vector quantization.
//
// The series is quantized to a discrete symbol sequence with a k-means
// codebook, encoded one fixed-width code per symbol, and handed to a
// lossless compressor. The compression ratio is normalized by a surrogate
// baseline (the mean ratio over random permutations of the same byte
// stream), isolating temporal structure from symbol frequencies. Sweeping
// the quantization resolution traces a curve characterizing the signal's
// information content independent of absolute scale.
//
// # Quick Start
//
//	s, _ := compcurve.FromRows(rows)
//	curve, err := compcurve.CompressionCurve(ctx, s,
//		compcurve.WithSurrogates(10),
//		compcurve.WithSeed(42),
//	)
//	// curve.Values, curve.AdjustedRatio, curve.Distortion feed the plotter.
//
// Arbitrary sweeps run through Sweep, varying exactly one axis:
//
//	curve, err := compcurve.Sweep(ctx, s, compcurve.AxisPCA, []int{1, 2, 3, 4},
//		compcurve.WithClusters(16),
//	)
//
// # Interpretation
//
// AdjustedRatio near 1.0 means the stream looks random at that resolution;
// larger values mean detectable temporal structure. Distortion is the mean
// squared quantization error and always decreases as k grows.
//
// A sweep point that cannot be computed (for example k exceeding the number
// of distinct samples) is skipped, logged at warn level and recorded in
// Curve.Skipped; a single bad point never invalidates the curve.
package compcurve
