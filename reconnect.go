package nats

import (
	"math/rand"
	"time"
)

// buildCandidates constructs the reconnect URL list per spec.md §4.1: the
// most recent INFO's advertised connect URLs, de-duplicated, falling back
// to the seed URLs if none were advertised; randomized unless
// noRandomize; with the last-used URL (if any) moved to the end.
func buildCandidates(seedURLs []string, connectURLs []string, lastURL string, noRandomize bool) []string {
	var list []string
	if len(connectURLs) > 0 {
		seen := make(map[string]bool, len(connectURLs))
		for _, u := range connectURLs {
			if !seen[u] {
				seen[u] = true
				list = append(list, u)
			}
		}
	} else {
		list = append(list, seedURLs...)
	}

	if !noRandomize {
		rand.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	}

	if lastURL != "" {
		for i, u := range list {
			if u == lastURL {
				list = append(list[:i], list[i+1:]...)
				list = append(list, lastURL)
				break
			}
		}
	}
	return list
}

// jitteredWait computes base + uniform(0, jitter), per spec.md §4.1.
func jitteredWait(base, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(jitter)))
}
