package score

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// FallbackScore is returned whenever a score cannot be obtained: provider
// missing, timeout, non-zero exit, or an unparsable reply.
const FallbackScore = 5

const promptTemplate = `You are analyzing messages from a workplace Slack channel called "random phrase of the week" where colleagues share funny quotes, witty remarks, and humorous observations from their daily work interactions.

Please rate the following message on a scale from 1 to 10 based on how funny or amusing it is:
- 1-3: Not funny, mundane, or purely informational
- 4-6: Mildly amusing, decent workplace humor
- 7-8: Quite funny, would make most people chuckle
- 9-10: Hilarious, exceptional workplace humor

Message%s: %q

Please respond with just a single number from 1 to 10 representing the humor score.`

// Scorer rates message humor through a completion provider.
type Scorer struct {
	provider Provider
	timeout  time.Duration
	log      *zerolog.Logger
}

// New builds a Scorer. timeout bounds each completion call; zero means no bound.
func New(provider Provider, timeout time.Duration, logger *zerolog.Logger) *Scorer {
	return &Scorer{provider: provider, timeout: timeout, log: logger}
}

// Prompt renders the scoring prompt for a message and optional speaker.
func Prompt(message, speaker string) string {
	by := ""
	if speaker != "" {
		by = " by " + speaker
	}
	return fmt.Sprintf(promptTemplate, by, message)
}

// Score rates how funny message is on a 1-10 scale. It never fails: any
// provider or parse problem is logged and collapses to FallbackScore here,
// at this boundary only.
func (s *Scorer) Score(ctx context.Context, message, speaker string) int {
	n, _ := s.ScoreRaw(ctx, message, speaker)
	return n
}

// ScoreRaw is Score plus the raw provider reply, for callers that audit runs.
// The reply is empty when the provider call itself failed.
func (s *Scorer) ScoreRaw(ctx context.Context, message, speaker string) (int, string) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.provider.Complete(ctx, Prompt(message, speaker))
	if err != nil {
		s.log.Warn().Err(err).Str("speaker", speaker).Msg("scoring failed, using fallback")
		return FallbackScore, ""
	}

	n, ok := ParseScore(reply)
	if !ok {
		s.log.Warn().Str("reply", truncate(reply, 80)).Msg("no score in reply, using fallback")
		return FallbackScore, reply
	}
	return n, reply
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
