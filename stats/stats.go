// Package stats is the chart collaborator of the kinematic models: it keeps the per-frame samples a
// model reports while statistics collection is enabled, and summarizes them.
package stats

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	mstats "github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Sample is one value of one channel of a named time series at a domain index (usually the frame number).
type Sample struct {
	Series  string
	Channel string
	Index   int
	Value   float64
}

// Point is a stored sample of a single channel.
type Point struct {
	Index int
	Value float64
}

// StateItem is one entry of a model status summary. Items nest to form a tree.
type StateItem struct {
	Name     string
	Value    string
	Children []StateItem
}

// Recorder receives samples. Clear drops whatever was recorded before a new recording starts.
type Recorder interface {
	Record(samples ...Sample)
	Clear()
}

// Summary describes a channel over the samples recorded so far.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Store is an in-memory Recorder. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	session uuid.UUID
	series  map[string]map[string][]Point
}

// NewStore returns an empty store with a fresh session id.
func NewStore() *Store {
	return &Store{
		session: uuid.New(),
		series:  map[string]map[string][]Point{},
	}
}

// Record appends samples to their series.
func (s *Store) Record(samples ...Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sample := range samples {
		channels, ok := s.series[sample.Series]
		if !ok {
			channels = map[string][]Point{}
			s.series[sample.Series] = channels
		}
		channels[sample.Channel] = append(channels[sample.Channel], Point{sample.Index, sample.Value})
	}
}

// Clear drops every recorded sample and starts a new session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = map[string]map[string][]Point{}
	s.session = uuid.New()
}

// Session identifies the current recording; it changes on every Clear.
func (s *Store) Session() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Series returns the names of every recorded series, sorted.
func (s *Store) Series() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := lo.Keys(s.series)
	sort.Strings(names)
	return names
}

// Channels returns the channel names of a series, sorted.
func (s *Store) Channels(series string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := lo.Keys(s.series[series])
	sort.Strings(names)
	return names
}

// Points returns a copy of the points of a channel.
func (s *Store) Points(series, channel string) []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Point(nil), s.series[series][channel]...)
}

// Summarize computes a Summary of one channel.
func (s *Store) Summarize(series, channel string) (Summary, error) {
	points := s.Points(series, channel)
	if len(points) == 0 {
		return Summary{}, errors.Errorf("no samples for %s/%s", series, channel)
	}
	data := mstats.Float64Data(lo.Map(points, func(p Point, _ int) float64 { return p.Value }))
	lowest, err := data.Min()
	if err != nil {
		return Summary{}, err
	}
	highest, err := data.Max()
	if err != nil {
		return Summary{}, err
	}
	mean, err := data.Mean()
	if err != nil {
		return Summary{}, err
	}
	stddev, err := data.StandardDeviation()
	if err != nil {
		return Summary{}, err
	}
	return Summary{Count: len(points), Min: lowest, Max: highest, Mean: mean, StdDev: stddev}, nil
}

// Discard is a Recorder that drops everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(...Sample) {}

func (discard) Clear() {}
