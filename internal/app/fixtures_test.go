package service_test

import (
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func score(v float64) *float64 { return &v }

// colonySnapshot builds a small colony: a dominates b and c, b dominates c.
// b is stressed and c has not had enrichment for five days.
func colonySnapshot(name string) model.Snapshot {
	at := func(h int) time.Time { return now.Add(-time.Duration(48-h) * time.Hour) }
	return model.Snapshot{
		Colony:  name,
		TakenAt: now,
		Roster: []model.Individual{
			{ID: "a", Label: "Alpha", WelfareScore: score(82)},
			{ID: "b", Label: "Bravo", WelfareScore: score(35)},
			{ID: "c"},
		},
		Records: []model.LogRecord{
			{RecordID: "r1", ActorID: "a", ReceiverID: "b", BehaviorCode: "AGG", Timestamp: at(1)},
			{RecordID: "r1", ActorID: "a", ReceiverID: "b", BehaviorCode: "AGG", Timestamp: at(1)},
			{RecordID: "r2", AnimalID: "a", InteractionPartnerID: "b", BehaviorCode: "agg", Timestamp: at(2)},
			{RecordID: "r3", ActorID: "b", ReceiverID: "c", BehaviorCode: "AGG", Timestamp: at(3)},
			{RecordID: "r4", ActorID: "a", ReceiverID: "c", BehaviorCode: "AGG", Timestamp: at(4)},
			{RecordID: "r5", ReceiverID: "b", BehaviorCode: "AGG", Timestamp: at(5)},
			{RecordID: "r6", ActorID: "c", BehaviorCode: "GROOM", Category: "Affiliative", Timestamp: at(6)},
		},
		Stress: []model.StressSample{
			{IndividualID: "b", Timestamp: at(10), StressScore: 9},
			{IndividualID: "b", Timestamp: at(20), StressScore: 8},
			{IndividualID: "a", Timestamp: at(20), StressScore: 2},
		},
		Enrichment: []model.EnrichmentSample{
			{IndividualID: "a", Timestamp: now.Add(-time.Hour), DurationMinutes: 15},
			{IndividualID: "c", Timestamp: now.Add(-5 * 24 * time.Hour), DurationMinutes: 30},
		},
	}
}

func emptySnapshot() model.Snapshot {
	snap := colonySnapshot("empty")
	snap.Records = nil
	snap.Stress = nil
	snap.Enrichment = nil
	return snap
}
