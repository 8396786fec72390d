package collector

import (
	"regexp"
	"time"
)

// AuthPolicy decides what an inconclusive login probe means.
type AuthPolicy string

const (
	// AssumeAuthenticated proceeds when the probe cannot tell.
	AssumeAuthenticated AuthPolicy = "assume"
	// FailClosed treats an inconclusive probe as signed out.
	FailClosed AuthPolicy = "fail"
)

// Options tunes the browser collection engine.
type Options struct {
	HomeURL   string
	SearchURL string // fmt pattern with one %s for the escaped keyword

	CardSelectors    []string
	ContentSelectors []string
	PostURLPattern   string

	MinCardText    int // runes of card text required for a valid card
	MinContentText int // runes required for a content region to count
	PreviewRunes   int // runes hashed into the preview fingerprint
	SignatureLen   int // markup prefix used to collapse duplicate matches

	MaxScrollRounds  int // hard cap on Scrolling entries per run
	ExhaustedLimit   int // consecutive failed ladder climbs before giving up
	MicroScrollEvery int // posts between keep-alive nudges within a round

	SearchSettle   time.Duration // max settle after loading the search view
	DetailTimeout  time.Duration // max wait for a tab to reach a detail URL
	SettleInterval time.Duration
	SettleSamples  int
	PauseMin       time.Duration // jittered pause after each extraction
	PauseMax       time.Duration

	WaitLogin    bool
	LoginPoll    time.Duration
	LoginTimeout time.Duration
	UnknownAuth  AuthPolicy
}

// DefaultOptions returns the values the engine was tuned with.
func DefaultOptions() Options {
	return Options{
		HomeURL:          homeURL,
		SearchURL:        searchURL,
		CardSelectors:    append([]string(nil), defaultCardSelectors...),
		ContentSelectors: append([]string(nil), defaultContentSelectors...),
		PostURLPattern:   postURLPattern,
		MinCardText:      10,
		MinContentText:   20,
		PreviewRunes:     200,
		SignatureLen:     200,
		MaxScrollRounds:  50,
		ExhaustedLimit:   3,
		MicroScrollEvery: 8,
		SearchSettle:     8 * time.Second,
		DetailTimeout:    10 * time.Second,
		SettleInterval:   500 * time.Millisecond,
		SettleSamples:    3,
		PauseMin:         2 * time.Second,
		PauseMax:         4 * time.Second,
		WaitLogin:        true,
		LoginPoll:        5 * time.Second,
		LoginTimeout:     300 * time.Second,
		UnknownAuth:      AssumeAuthenticated,
	}
}

func (o Options) postPattern() *regexp.Regexp {
	if re, err := regexp.Compile(o.PostURLPattern); err == nil {
		return re
	}
	return regexp.MustCompile(postURLPattern)
}
