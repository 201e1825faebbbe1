package detect

import (
	"net/url"
	"strings"

	"github.com/selimozcann/HeaderHunter/internal/model"
)

// Transition is a scheme change between two consecutive hops.
type Transition struct {
	AtHop int
	From  string
	To    string
}

// String renders the transition as "from -> to".
func (t Transition) String() string {
	return t.From + " -> " + t.To
}

// HTTPSDowngrade reports if the scheme changed from https to http.
func HTTPSDowngrade(prev, next *url.URL) bool {
	return isScheme(prev, "https") && isScheme(next, "http")
}

// HTTPSUpgrade reports if the scheme changed from http to https.
func HTTPSUpgrade(prev, next *url.URL) bool {
	return isScheme(prev, "http") && isScheme(next, "https")
}

// Downgrades lists every https -> http step in the chain.
func Downgrades(chain []model.Hop) []Transition {
	return transitions(chain, HTTPSDowngrade)
}

// Upgrades lists every http -> https step in the chain.
func Upgrades(chain []model.Hop) []Transition {
	return transitions(chain, HTTPSUpgrade)
}

func transitions(chain []model.Hop, match func(prev, next *url.URL) bool) []Transition {
	var out []Transition
	for i := 1; i < len(chain); i++ {
		prev, err := url.Parse(chain[i-1].URL)
		if err != nil {
			continue
		}
		next, err := url.Parse(chain[i].URL)
		if err != nil {
			continue
		}
		if match(prev, next) {
			out = append(out, Transition{AtHop: chain[i].Index, From: chain[i-1].URL, To: chain[i].URL})
		}
	}
	return out
}

// IsEncrypted reports whether raw uses the https scheme.
func IsEncrypted(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return isScheme(u, "https")
}

func isScheme(u *url.URL, scheme string) bool {
	return u != nil && strings.EqualFold(u.Scheme, scheme)
}
