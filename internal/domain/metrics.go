package domain

import "time"

// Metrics receives observations from the scanner and recommender.
type Metrics interface {
	ObserveScan(duration time.Duration, files, tools int, err error)
	ObserveRecommendation(duration time.Duration, err error)
	ObserveModelCall(provider, model string, duration time.Duration, err error)
	ObserveModelTokens(provider, model string, tokens int)
	ObserveResolution(requested, resolved int)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveScan(time.Duration, int, int, error) {}

func (NopMetrics) ObserveRecommendation(time.Duration, error) {}

func (NopMetrics) ObserveModelCall(string, string, time.Duration, error) {}

func (NopMetrics) ObserveModelTokens(string, string, int) {}

func (NopMetrics) ObserveResolution(int, int) {}

var _ Metrics = NopMetrics{}
