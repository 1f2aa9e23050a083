package msclust_test

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eeg-microstates/msclust"
	"github.com/eeg-microstates/msclust/synth"
)

func TestSegmentationKMeansEndToEnd(t *testing.T) {
	templates := synth.OrthogonalTemplates(3, 8)
	data, truth := synth.GaussianBlobMaps(templates, 40, 0.02, rand.New(rand.NewSource(11)))

	opts := msclust.ComputeOptions{
		KMin:        2,
		KMax:        5,
		Polarity:    msclust.Direct,
		Method:      msclust.KMeansMethod(3),
		Centroid:    msclust.MeanCentroid,
		LimitCorr:   0.3,
		DoReject:    true,
		RejectSize:  1,
		Parallelism: 2,
		Rand:        rand.New(rand.NewSource(3)),
	}

	result, err := msclust.Segmentation(data, opts, nil, zerolog.Nop())
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.ChosenK, opts.KMin)
	require.LessOrEqual(t, result.ChosenK, opts.KMax)
	require.Greater(t, result.GEV, 0.0, "expected a positive GEV for well-separated blobs")

	// The ground-truth labeling is not compared against the result here.
	_ = truth
}

func TestSegmentationTAAHCEndToEnd(t *testing.T) {
	templates := synth.OrthogonalTemplates(2, 6)
	data, _ := synth.GaussianBlobMaps(templates, 20, 0.01, rand.New(rand.NewSource(5)))

	opts := msclust.ComputeOptions{
		KMin:     2,
		KMax:     3,
		Polarity: msclust.Direct,
		Method:   msclust.TAAHCMethod(),
		Centroid: msclust.MeanCentroid,
	}

	result, err := msclust.Segmentation(data, opts, nil, zerolog.Nop())
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.ChosenK, opts.KMin)
	require.LessOrEqual(t, result.ChosenK, opts.KMax)
}

func TestSegmentationRejectsInvalidKRange(t *testing.T) {
	data, _ := synth.GaussianBlobMaps(synth.OrthogonalTemplates(2, 4), 5, 0.01, nil)
	opts := msclust.ComputeOptions{KMin: 5, KMax: 2, Method: msclust.KMeansMethod(1)}

	_, err := msclust.Segmentation(data, opts, nil, zerolog.Nop())
	require.ErrorIs(t, err, msclust.ErrInvalidKRange)
}

func TestPolarityFlipStillClustersTogetherUnderEvaluate(t *testing.T) {
	templates := synth.OrthogonalTemplates(2, 6)
	data, _ := synth.GaussianBlobMaps(templates, 30, 0.01, rand.New(rand.NewSource(9)))
	synth.FlipPolarity(data, []int{0, 1, 2})

	opts := msclust.ComputeOptions{
		KMin:        2,
		KMax:        2,
		Polarity:    msclust.Evaluate,
		Method:      msclust.KMeansMethod(3),
		Centroid:    msclust.MeanCentroid,
		Parallelism: 2,
	}

	result, err := msclust.Segmentation(data, opts, nil, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, result.Labeling.Labels[0], result.Labeling.Labels[3],
		"a polarity-flipped sample should still join its original cluster under Evaluate")
}
