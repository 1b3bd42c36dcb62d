package topic

// Topic is a curated research focus exposed to the frontend. Sessions bind
// to one topic; its focus line seeds the relay prompt when history is sent
// inline.
type Topic struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Focus          string   `json:"focus"`
	OpeningLine    string   `json:"openingLine"`
	ExamplePrompts []string `json:"examplePrompts,omitempty"`
}

// Seed provides the default topic presets shown on first load.
func Seed() []Topic {
	return []Topic{
		{
			ID:          "generative-ai",
			Name:        "Generative AI",
			Focus:       "Recent work on generative models, scaling behaviour, and training efficiency.",
			OpeningLine: "Ask about generative AI papers, e.g. scaling laws, diffusion models, or efficient training.",
			ExamplePrompts: []string{
				"Find 3 papers on generative AI scaling approaches, published in 2025",
				"Summarize the key findings from the first paper",
			},
		},
		{
			ID:          "reinforcement-learning",
			Name:        "Reinforcement Learning",
			Focus:       "Reinforcement learning methods, benchmarks, and applications.",
			OpeningLine: "Ask about reinforcement learning papers, from classic policy gradients to recent RLHF work.",
			ExamplePrompts: []string{
				"Show me 2 recent papers on reinforcement learning from last year",
				"What methodology did the second paper use?",
			},
		},
		{
			ID:          "ml-optimization",
			Name:        "ML Optimization",
			Focus:       "Optimization techniques for machine learning: optimizers, schedules, and convergence results.",
			OpeningLine: "Ask about optimization papers, from SGD variants to second-order methods.",
			ExamplePrompts: []string{
				"Get 4 papers about machine learning optimization techniques within last 8 months",
				"Compare the approaches in these papers",
			},
		},
		{
			ID:          "open-search",
			Name:        "Open Search",
			Focus:       "No preset focus; search any arXiv area.",
			OpeningLine: "Ask about research papers in any field. Be specific for better results.",
		},
	}
}
