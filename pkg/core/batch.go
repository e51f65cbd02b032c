package core

import "math/rand"

// Batch is one iterable batch in normalized space. Inputs hold the initial
// trajectory state plus a scaled time coordinate, Targets the state at that
// time.
type Batch struct {
	Inputs  [][]float64
	Targets [][]float64
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int {
	return len(b.Inputs)
}

// Loader is an iterable-batch view over one data split. Samples are ordered
// trajectory-major unless the loader was built with shuffling, so a
// non-shuffled loader can be reshaped back to [trajectory, timestep,
// chemical] after inference.
type Loader struct {
	Batches   []Batch
	Samples   int
	Steps     int
	Chemicals int
	BatchSize int
}

// NewLoader flattens a series into per-timestep samples and groups them into
// batches. The input series is not mutated; all sample storage is fresh.
// When shuffle is true the sample order is permuted with rng.
func NewLoader(s Series, batchSize int, shuffle bool, rng *rand.Rand) (*Loader, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	steps := s.Steps()
	chems := s.Chemicals()
	total := s.Trajectories() * steps
	if batchSize <= 0 {
		batchSize = total
	}

	// Scale the time coordinate to [0, 1] over the split's own axis.
	t0 := s.Timesteps[0]
	span := s.Timesteps[steps-1] - t0
	if span == 0 {
		span = 1
	}

	inputs := make([][]float64, 0, total)
	targets := make([][]float64, 0, total)
	for _, traj := range s.Data {
		initial := traj[0]
		for j, row := range traj {
			x := make([]float64, chems+1)
			copy(x, initial)
			x[chems] = (s.Timesteps[j] - t0) / span
			inputs = append(inputs, x)
			targets = append(targets, append([]float64(nil), row...))
		}
	}

	if shuffle && rng != nil {
		rng.Shuffle(total, func(i, j int) {
			inputs[i], inputs[j] = inputs[j], inputs[i]
			targets[i], targets[j] = targets[j], targets[i]
		})
	}

	loader := &Loader{
		Samples:   total,
		Steps:     steps,
		Chemicals: chems,
		BatchSize: batchSize,
	}
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		loader.Batches = append(loader.Batches, Batch{
			Inputs:  inputs[start:end],
			Targets: targets[start:end],
		})
	}
	return loader, nil
}
