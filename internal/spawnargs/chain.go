package spawnargs

// Chain resolves a setting first on a template, then on the distribution that
// references it, then falls back to a literal default.
type Chain struct {
	Template     *Dict
	Distribution *Dict
}

// Lookup returns the template value of templateKey, else the distribution value of
// distKey. An empty key skips that level.
func (c Chain) Lookup(templateKey, distKey string) (string, bool) {
	if templateKey != "" {
		if v, ok := c.Template.Lookup(templateKey); ok {
			return v, true
		}
	}
	if distKey != "" {
		if v, ok := c.Distribution.Lookup(distKey); ok {
			return v, true
		}
	}
	return "", false
}

// String resolves a string setting.
func (c Chain) String(templateKey, distKey, def string) string {
	if v, ok := c.Lookup(templateKey, distKey); ok {
		return v
	}
	return def
}

// Float resolves a float setting.
func (c Chain) Float(templateKey, distKey string, def float64) float64 {
	if v, ok := c.Lookup(templateKey, distKey); ok {
		return parseFloat(v)
	}
	return def
}

// Bool resolves a boolean setting.
func (c Chain) Bool(templateKey, distKey string, def bool) bool {
	if _, ok := c.Lookup(templateKey, distKey); !ok {
		return def
	}
	if c.Template.Has(templateKey) {
		return c.Template.GetBool(templateKey, def)
	}
	return c.Distribution.GetBool(distKey, def)
}
