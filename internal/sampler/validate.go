package sampler

// MaxUniverse is the exclusive upper bound on a bitmap universe; values are
// stored as 32-bit integers downstream.
const MaxUniverse = 1 << 32

// Validate checks that every future draw from size and density describes a
// realizable bitmap. Only the bounds are consulted; nothing is sampled, so
// the check is done once before an experiment batch rather than per draw.
func Validate(size, density Sampler) error {
	fail := func(err error) error {
		return &ValidationError{Size: size.String(), Density: density.String(), Err: err}
	}
	if density.Max() > 1 || density.Min() <= 0 {
		return fail(ErrDensityRange)
	}
	if size.Min() <= 0 {
		return fail(ErrSizeNotPositive)
	}
	if size.Max()/density.Min() >= MaxUniverse {
		return fail(ErrUniverseOverflow)
	}
	return nil
}
