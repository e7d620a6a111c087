package interview

// Default completion thresholds.
const (
	DefaultMaxFollowUps  = 2
	DefaultMinCharacters = 400
)

// Policy decides when the active question has been explored enough.
type Policy struct {
	MaxFollowUps  int
	MinCharacters int
}

// DefaultPolicy closes a question after two follow-ups or 400 answer characters.
var DefaultPolicy = Policy{
	MaxFollowUps:  DefaultMaxFollowUps,
	MinCharacters: DefaultMinCharacters,
}

// ShouldAdvance reports whether a question with the given follow-up count and
// accumulated answer characters is finished.
func (p Policy) ShouldAdvance(followUpCount, characterCount int) bool {
	return followUpCount >= p.MaxFollowUps || characterCount >= p.MinCharacters
}

// ShouldAdvance applies DefaultPolicy.
func ShouldAdvance(followUpCount, characterCount int) bool {
	return DefaultPolicy.ShouldAdvance(followUpCount, characterCount)
}
