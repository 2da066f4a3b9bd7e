package session

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrUnknownMood = errors.New("unknown mood")

type MoodLabel string

const (
	MoodGreat   MoodLabel = "Great"
	MoodGood    MoodLabel = "Good"
	MoodOkay    MoodLabel = "Okay"
	MoodLow     MoodLabel = "Low"
	MoodVeryLow MoodLabel = "Very Low"
)

var moodLabels = []MoodLabel{MoodGreat, MoodGood, MoodOkay, MoodLow, MoodVeryLow}

var moodValues = map[MoodLabel]int{
	MoodGreat:   5,
	MoodGood:    4,
	MoodOkay:    3,
	MoodLow:     2,
	MoodVeryLow: 1,
}

// MoodLabels lists the selectable moods, best first.
func MoodLabels() []MoodLabel {
	cp := make([]MoodLabel, len(moodLabels))
	copy(cp, moodLabels)
	return cp
}

func (l MoodLabel) Value() int {
	return moodValues[l]
}

type MoodEntry struct {
	Date  time.Time `json:"date"`
	Label MoodLabel `json:"mood_text"`
	Value int       `json:"mood_value"`
	Notes string    `json:"notes,omitempty"`
}

// MoodTrend is what the mood tracker renders: the chart points plus a hint when a chart
// cannot be drawn yet.
type MoodTrend struct {
	Points   []MoodEntry `json:"points"`
	Chart    bool        `json:"chart"`
	Message  string      `json:"message,omitempty"`
	Latest   []MoodEntry `json:"latest"`
	MoodAxis []MoodLabel `json:"mood_axis"`
}

// MoodLog lives only as long as its session.
type MoodLog struct {
	entries []MoodEntry
}

func (l *MoodLog) Log(label string, notes string, at time.Time) (MoodEntry, error) {
	ml := MoodLabel(label)
	value := ml.Value()
	if value == 0 {
		return MoodEntry{}, fmt.Errorf("%w: %q", ErrUnknownMood, label)
	}

	entry := MoodEntry{
		Date:  at.Truncate(time.Minute),
		Label: ml,
		Value: value,
		Notes: notes,
	}
	l.entries = append(l.entries, entry)
	return entry, nil
}

// Entries returns the log in insertion order.
func (l *MoodLog) Entries() []MoodEntry {
	cp := make([]MoodEntry, len(l.entries))
	copy(cp, l.entries)
	return cp
}

// Latest returns up to n of the most recently logged entries, newest first.
func (l *MoodLog) Latest(n int) []MoodEntry {
	if n <= 0 {
		return []MoodEntry{}
	}
	start := max(len(l.entries)-n, 0)
	out := make([]MoodEntry, 0, len(l.entries)-start)
	for i := len(l.entries) - 1; i >= start; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

func (l *MoodLog) Trend() MoodTrend {
	points := l.Entries()
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	trend := MoodTrend{
		Points:   points,
		Chart:    len(points) >= 2,
		Latest:   l.Latest(3),
		MoodAxis: MoodLabels(),
	}
	switch len(points) {
	case 0:
		trend.Message = "Log mood to see trends."
	case 1:
		trend.Message = fmt.Sprintf("Logged '%s'. Need more data.", points[0].Label)
	}
	return trend
}

func (l *MoodLog) Clear() {
	l.entries = nil
}
