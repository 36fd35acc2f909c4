package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every roll that decides an outcome
// is visible at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewLoggedRoller precondition violated: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// Percent rolls against chance on the 0-100 scale and logs the outcome under label.
func (r *Roller) Percent(label string, chance float64) bool {
	roll := r.src.Float64() * 100
	hit := roll < chance
	r.logger.Debug("percent roll",
		zap.String("check", label),
		zap.Float64("roll", roll),
		zap.Float64("chance", chance),
		zap.Bool("hit", hit),
	)
	return hit
}

// Between returns a logged uniform integer in [lo, hi].
func (r *Roller) Between(label string, lo, hi int) int {
	v := Between(r.src, lo, hi)
	r.logger.Debug("range roll",
		zap.String("check", label),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("result", v),
	)
	return v
}
