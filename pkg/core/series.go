package core

// Series is one split of a dataset: trajectories of chemical quantities over
// a timestep axis shared by every trajectory.
type Series struct {
	// Data is indexed [trajectory][timestep][chemical].
	Data [][][]float64 `json:"data"`
	// Timesteps holds the coordinate of each timestep.
	Timesteps []float64 `json:"timesteps"`
}

// Trajectories returns the number of trajectories in the split.
func (s Series) Trajectories() int {
	return len(s.Data)
}

// Steps returns the length of the timestep axis.
func (s Series) Steps() int {
	return len(s.Timesteps)
}

// Chemicals returns the length of the chemical-quantity axis.
func (s Series) Chemicals() int {
	if len(s.Data) == 0 || len(s.Data[0]) == 0 {
		return 0
	}
	return len(s.Data[0][0])
}

// Validate checks that the series is rectangular and that every trajectory
// covers the shared timestep axis.
func (s Series) Validate() error {
	steps := len(s.Timesteps)
	if steps == 0 {
		return ShapeErrorf("series has no timesteps")
	}
	chems := s.Chemicals()
	if chems == 0 {
		return ShapeErrorf("series has no chemical quantities")
	}
	for i, traj := range s.Data {
		if len(traj) != steps {
			return ShapeErrorf("trajectory %d has %d timesteps, want %d", i, len(traj), steps)
		}
		for j, row := range traj {
			if len(row) != chems {
				return ShapeErrorf("trajectory %d step %d has %d chemicals, want %d", i, j, len(row), chems)
			}
		}
	}
	return nil
}

// Clone returns a deep copy sharing no memory with the receiver.
func (s Series) Clone() Series {
	out := Series{
		Data:      make([][][]float64, len(s.Data)),
		Timesteps: append([]float64(nil), s.Timesteps...),
	}
	for i, traj := range s.Data {
		out.Data[i] = make([][]float64, len(traj))
		for j, row := range traj {
			out.Data[i][j] = append([]float64(nil), row...)
		}
	}
	return out
}
