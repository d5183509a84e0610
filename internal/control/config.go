package control

// Config is an immutable controller configuration. Changing any gain means
// building a new Config with NewConfig.
type Config struct {
	gains  Gains
	coeffs Coefficients
}

// NewConfig validates g and derives its coefficients.
func NewConfig(g Gains) (*Config, error) {
	c, err := Derive(g)
	if err != nil {
		return nil, err
	}
	return &Config{gains: g, coeffs: c}, nil
}

func (c *Config) Gains() Gains               { return c.gains }
func (c *Config) Coefficients() Coefficients { return c.coeffs }
func (c *Config) SampleTime() float64        { return c.coeffs.SampleTime }
func (c *Config) OutputMin() float64         { return c.gains.OutputMin }
func (c *Config) OutputMax() float64         { return c.gains.OutputMax }

func (c *Config) clamp(u float64) float64 {
	if u < c.gains.OutputMin {
		return c.gains.OutputMin
	}
	if u > c.gains.OutputMax {
		return c.gains.OutputMax
	}
	return u
}
