// Package budget provides token budget estimation for prompt assembly.
// Because the pipeline supports multiple generation backends with different
// tokenizers, it uses a conservative character-based heuristic:
// 1 token ≈ 4 characters. This deliberately under-estimates counts to leave
// headroom for model-specific overhead.
package budget

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	// 4 chars/token is the standard rule of thumb for prose; Turkish text
	// with its longer agglutinated words errs even further on the safe side.
	charsPerToken = 4

	// perMessageOverhead is the rough per-message token overhead most chat
	// APIs charge on top of the content.
	perMessageOverhead = 4
)

// Estimate returns a rough token count for s using the character heuristic.
// Non-empty strings always estimate to at least 1 token.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimatePrompt returns the estimated token cost of a system prompt plus a
// user message, including per-message overhead. Used for logging the cost of
// each generation call.
func EstimatePrompt(system, user string) int {
	return 2*perMessageOverhead + Estimate(system) + Estimate(user)
}
