package dataset

import (
	"strconv"

	"surrobench/pkg/core"
)

// Select derives the data slice a benchmark mode trains and evaluates on.
//
//   - interpolation: keep every metric-th timestep of both splits.
//   - extrapolation: keep only the first metric timesteps of both splits.
//   - sparse: keep every metric-th trajectory; timesteps are unchanged.
//   - accuracy, UQ, or anything else: pass everything through.
//
// The returned series share no memory with the inputs.
func Select(train, test core.Series, mode, metric string) (core.Series, core.Series, error) {
	switch mode {
	case core.ModeInterpolation:
		interval, err := parseMetric(mode, metric)
		if err != nil {
			return core.Series{}, core.Series{}, err
		}
		return strideSteps(train, interval), strideSteps(test, interval), nil
	case core.ModeExtrapolation:
		cutoff, err := parseMetric(mode, metric)
		if err != nil {
			return core.Series{}, core.Series{}, err
		}
		return cutSteps(train, cutoff), cutSteps(test, cutoff), nil
	case core.ModeSparse:
		factor, err := parseMetric(mode, metric)
		if err != nil {
			return core.Series{}, core.Series{}, err
		}
		return strideTrajectories(train, factor), strideTrajectories(test, factor), nil
	default:
		return train.Clone(), test.Clone(), nil
	}
}

func parseMetric(mode, metric string) (int, error) {
	value, err := strconv.Atoi(metric)
	if err != nil || value <= 0 {
		return 0, &core.InvalidMetricError{Mode: mode, Metric: metric}
	}
	return value, nil
}

func strideSteps(s core.Series, interval int) core.Series {
	out := core.Series{Data: make([][][]float64, len(s.Data))}
	for j := 0; j < len(s.Timesteps); j += interval {
		out.Timesteps = append(out.Timesteps, s.Timesteps[j])
	}
	for i, traj := range s.Data {
		kept := make([][]float64, 0, len(out.Timesteps))
		for j := 0; j < len(traj); j += interval {
			kept = append(kept, append([]float64(nil), traj[j]...))
		}
		out.Data[i] = kept
	}
	return out
}

func cutSteps(s core.Series, cutoff int) core.Series {
	if cutoff > len(s.Timesteps) {
		cutoff = len(s.Timesteps)
	}
	out := core.Series{
		Data:      make([][][]float64, len(s.Data)),
		Timesteps: append([]float64(nil), s.Timesteps[:cutoff]...),
	}
	for i, traj := range s.Data {
		kept := make([][]float64, 0, cutoff)
		for j := 0; j < cutoff && j < len(traj); j++ {
			kept = append(kept, append([]float64(nil), traj[j]...))
		}
		out.Data[i] = kept
	}
	return out
}

func strideTrajectories(s core.Series, factor int) core.Series {
	out := core.Series{Timesteps: append([]float64(nil), s.Timesteps...)}
	for i := 0; i < len(s.Data); i += factor {
		traj := make([][]float64, len(s.Data[i]))
		for j, row := range s.Data[i] {
			traj[j] = append([]float64(nil), row...)
		}
		out.Data = append(out.Data, traj)
	}
	return out
}
