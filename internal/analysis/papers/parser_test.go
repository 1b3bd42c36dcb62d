package papers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boldListing = `Here are 3 recent papers:

1. **Scaling Laws Revisited**
Authors: A. Researcher, B. Scientist
Published: March 12, 2025
Summary: Revisits compute-optimal scaling with updated data.
https://arxiv.org/abs/2503.01234

2. **Efficient Diffusion Training**
Authors: C. Author
Published: May 3, 2025
Abstract: Cuts diffusion training cost by half.
https://arxiv.org/abs/2505.04321

3. **Sparse Mixture Models at Scale**
Summary: Studies routing stability in large sparse models.
https://arxiv.org/pdf/2506.00777`

func TestParseBoldTitles(t *testing.T) {
	parsed := Parse(boldListing)
	require.Len(t, parsed, 3)

	first := parsed[0]
	assert.Equal(t, "Scaling Laws Revisited", first.Title)
	assert.Equal(t, "A. Researcher, B. Scientist", first.Authors)
	assert.Equal(t, "March 12, 2025", first.Published)
	assert.Equal(t, "Revisits compute-optimal scaling with updated data.", first.Summary)
	assert.Equal(t, "https://arxiv.org/abs/2503.01234", first.URL)

	assert.Equal(t, "Efficient Diffusion Training", parsed[1].Title)
	assert.Equal(t, "Cuts diffusion training cost by half.", parsed[1].Summary)

	assert.Equal(t, "Sparse Mixture Models at Scale", parsed[2].Title)
	assert.Empty(t, parsed[2].Authors)
	assert.Equal(t, "https://arxiv.org/pdf/2506.00777", parsed[2].URL)
}

func TestParseLabeledTitleForm(t *testing.T) {
	text := `1. **Title**: Reward Hacking in RLHF
Authors: D. Author
Published: January 8, 2025

2. **Title**: Offline RL Benchmarks
Summary: A new benchmark suite.`

	parsed := Parse(text)
	require.Len(t, parsed, 2)
	assert.Equal(t, "Reward Hacking in RLHF", parsed[0].Title)
	assert.Equal(t, "D. Author", parsed[0].Authors)
	assert.Equal(t, "Offline RL Benchmarks", parsed[1].Title)
}

func TestParseMarkdownLinkTitle(t *testing.T) {
	text := `1. [Attention Is Not All You Need](https://arxiv.org/abs/2501.11111)
Summary: Questions attention-only architectures.`

	parsed := Parse(text)
	require.Len(t, parsed, 1)
	assert.Equal(t, "Attention Is Not All You Need", parsed[0].Title)
}

func TestParsePlainTitleLabel(t *testing.T) {
	text := `Title: Convergence of Adam Under Relaxed Assumptions
Authors: E. Author
Summary: Tightens convergence bounds for Adam.`

	parsed := Parse(text)
	require.Len(t, parsed, 1)
	assert.Equal(t, "Convergence of Adam Under Relaxed Assumptions", parsed[0].Title)
}

func TestParseProseReturnsNothing(t *testing.T) {
	parsed := Parse("The first paper uses a transformer encoder and reports strong results on standard benchmarks.")
	assert.Empty(t, parsed)
}

func TestIsListing(t *testing.T) {
	assert.True(t, IsListing(boldListing))
	assert.False(t, IsListing("The methodology combines contrastive pretraining with supervised finetuning."))
	// Two numbered lines are enough even when field parsing finds little.
	assert.True(t, IsListing("1. first item\n2. second item"))
}
