package models

import (
	"slices"
	"time"

	"github.com/minetrack/plodsync/internal/timex"
)

// Shift codes derived from the end time of a session.
type Shift string

const (
	ShiftDay   Shift = "DS"
	ShiftNight Shift = "NS"

	// Day shift covers [dayShiftStartHour, dayShiftEndHour) local time.
	dayShiftStartHour = 6
	dayShiftEndHour   = 18
)

// ShiftFor derives the shift code from a session end time.
func ShiftFor(end time.Time) Shift {
	h := end.Hour()
	if h >= dayShiftStartHour && h < dayShiftEndHour {
		return ShiftDay
	}
	return ShiftNight
}

// LoggedDataItem is one measured value attached to a log entry. Name and
// Unit are denormalized copies taken at logging time, not live references.
type LoggedDataItem struct {
	DefinitionID string `json:"definitionId"`
	Name         string `json:"name"`
	Value        string `json:"value"`
	Unit         string `json:"unit"`
}

// LogEntry records one completed, timed activity session. Entries are
// immutable after creation; only the sync bookkeeping changes.
type LogEntry struct {
	Entity
	PlodID          string           `json:"plodId"`
	PlodName        string           `json:"plodName"`
	UserID          string           `json:"userId"`
	UserName        string           `json:"userName"`
	OperationalRole string           `json:"operationalRole"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	Duration        int64            `json:"duration"` // seconds
	Shift           Shift            `json:"shift"`
	Data            []LoggedDataItem `json:"data"`
	Coworkers       []string         `json:"coworkers"`
	DisclaimerSigned bool            `json:"disclaimerSigned"`
}

func (l *LogEntry) Clone() Record {
	c := *l
	c.Data = slices.Clone(l.Data)
	c.Coworkers = slices.Clone(l.Coworkers)
	return &c
}

func (l *LogEntry) Remap(old, new string) {
	if l.PlodID == old {
		l.PlodID = new
	}
	remapIDs(l.Coworkers, old, new)
	for i := range l.Data {
		if l.Data[i].DefinitionID == old {
			l.Data[i].DefinitionID = new
		}
	}
}

// NewLogEntry builds a log entry for a completed session, capturing the
// denormalized plod/user names and deriving duration and shift code.
func NewLogEntry(plod *Plod, user *UserProfile, start, end time.Time, data []LoggedDataItem, coworkers []string, signed bool) *LogEntry {
	return &LogEntry{
		PlodID:           plod.ID,
		PlodName:         plod.Name,
		UserID:           user.ID,
		UserName:         user.Name,
		OperationalRole:  user.OperationalRole,
		StartTime:        timex.Stamp(start),
		EndTime:          timex.Stamp(end),
		Duration:         int64(end.Sub(start).Seconds()),
		Shift:            ShiftFor(end),
		Data:             slices.Clone(data),
		Coworkers:        slices.Clone(coworkers),
		DisclaimerSigned: signed,
	}
}
