package model

// LODLevels is the number of detail stages a class may declare.
const LODLevels = 6

// LODStage is one level of detail. Stage 0 is the full detail model.
type LODStage struct {
	DistSq    float64 `yaml:"dist_sq"`
	Model     string  `yaml:"model,omitempty"`
	Skin      string  `yaml:"skin,omitempty"`
	NoShadows bool    `yaml:"no_shadows,omitempty"`
}

// LODData holds the level of detail configuration of a class.
type LODData struct {
	Stages          [LODLevels]LODStage `yaml:"stages"`
	HideDistSq      float64             `yaml:"hide_dist_sq"`
	FadeOutRange    float64             `yaml:"fade_out_range"`
	FadeInRange     float64             `yaml:"fade_in_range"`
	DistCheckXYOnly bool                `yaml:"dist_check_xy"`
}

// Level returns the detail stage for a squared viewer distance.
func (l *LODData) Level(distSq float64) int {
	if l == nil {
		return 0
	}
	level := 0
	for i := 1; i < LODLevels; i++ {
		if l.Stages[i].DistSq > 0 && distSq > l.Stages[i].DistSq {
			level = i
		}
	}
	return level
}

// LowestModel returns the last non-empty stage model, or fallback.
func (l *LODData) LowestModel(fallback string) string {
	if l == nil {
		return fallback
	}
	out := fallback
	for _, s := range l.Stages {
		if s.Model != "" {
			out = s.Model
		}
	}
	return out
}
