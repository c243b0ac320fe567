package sentiment

// wordValence maps sentiment-bearing words to a polarity in [-1, 1].
// The vocabulary is tuned for financial and ESG news headlines.
var wordValence = map[string]float64{
	// positive
	"good":          0.7,
	"great":         0.8,
	"excellent":     1.0,
	"strong":        0.6,
	"growth":        0.5,
	"improve":       0.5,
	"improved":      0.5,
	"improving":     0.5,
	"improvement":   0.5,
	"gain":          0.5,
	"gains":         0.5,
	"rise":          0.4,
	"rises":         0.4,
	"rising":        0.4,
	"surge":         0.6,
	"surges":        0.6,
	"record":        0.4,
	"beat":          0.5,
	"beats":         0.5,
	"exceed":        0.5,
	"exceeds":       0.5,
	"success":       0.7,
	"successful":    0.7,
	"win":           0.6,
	"wins":          0.6,
	"positive":      0.6,
	"profit":        0.5,
	"profitable":    0.6,
	"innovative":    0.5,
	"innovation":    0.5,
	"leader":        0.4,
	"leading":       0.4,
	"award":         0.6,
	"awarded":       0.6,
	"commitment":    0.3,
	"committed":     0.3,
	"progress":      0.4,
	"achievement":   0.6,
	"achieves":      0.6,
	"milestone":     0.5,
	"sustainable":   0.4,
	"renewable":     0.3,
	"transparency":  0.3,
	"transparent":   0.3,
	"opportunity":   0.4,
	"opportunities": 0.4,
	"upgrade":       0.5,
	"upgraded":      0.5,
	"outperform":    0.6,
	"expansion":     0.4,
	"expand":        0.3,
	"partnership":   0.3,
	"boost":         0.5,
	"boosts":        0.5,
	"benefit":       0.4,
	"benefits":      0.4,

	// negative
	"bad":           -0.7,
	"poor":          -0.6,
	"terrible":      -1.0,
	"weak":          -0.5,
	"decline":       -0.5,
	"declines":      -0.5,
	"declining":     -0.5,
	"loss":          -0.6,
	"losses":        -0.6,
	"fall":          -0.4,
	"falls":         -0.4,
	"falling":       -0.4,
	"drop":          -0.4,
	"drops":         -0.4,
	"plunge":        -0.7,
	"plunges":       -0.7,
	"crash":         -0.8,
	"miss":          -0.5,
	"misses":        -0.5,
	"missed":        -0.5,
	"fail":          -0.6,
	"fails":         -0.6,
	"failure":       -0.7,
	"negative":      -0.6,
	"lawsuit":       -0.6,
	"lawsuits":      -0.6,
	"fine":          -0.4,
	"fined":         -0.5,
	"penalty":       -0.5,
	"scandal":       -0.8,
	"fraud":         -0.9,
	"corruption":    -0.8,
	"violation":     -0.6,
	"violations":    -0.6,
	"investigation": -0.4,
	"probe":         -0.4,
	"risk":          -0.3,
	"risks":         -0.3,
	"concern":       -0.4,
	"concerns":      -0.4,
	"warning":       -0.5,
	"warns":         -0.5,
	"layoff":        -0.6,
	"layoffs":       -0.6,
	"cut":           -0.3,
	"cuts":          -0.3,
	"downgrade":     -0.5,
	"downgraded":    -0.5,
	"pollution":     -0.5,
	"spill":         -0.6,
	"breach":        -0.6,
	"crisis":        -0.7,
	"debt":          -0.2,
	"bankruptcy":    -0.9,
	"recall":        -0.5,
	"accident":      -0.6,
	"injury":        -0.5,
	"strike":        -0.4,
	"dispute":       -0.4,
	"controversy":   -0.5,
	"misconduct":    -0.7,
	"underperform":  -0.5,
}

// negators flip the valence of the sentiment word that follows them.
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"without": true,
}

// esgKeywords maps each pillar topic to the keywords that signal relevance.
var esgKeywords = map[string][]string{
	"Environmental": {"climate", "carbon", "renewable", "sustainability", "green", "emissions", "environment", "pollution", "waste", "energy"},
	"Social":        {"diversity", "employees", "community", "safety", "human rights", "social", "workplace", "labor", "inclusion"},
	"Governance":    {"board", "ethics", "compliance", "transparency", "governance", "leadership", "audit", "corruption", "accountability"},
}
