package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs match events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables logging of the full event as JSON
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	logEvent := ls.logger.WithLevel(ls.level()).
		Str("event_type", event.Type()).
		Str("match_id", event.MatchID()).
		Time("timestamp", event.Timestamp())

	switch e := event.(type) {
	case *events.MatchStartedEvent:
		logEvent.
			Int("map_width", e.Width).
			Int("map_height", e.Height).
			Int("controlled_units", e.ControlledUnits).
			Int("hostile_units", e.HostileUnits).
			Int("depth", e.Depth)

	case *events.MatchEndedEvent:
		logEvent.
			Str("outcome", e.Outcome).
			Int("plies", e.Plies).
			Dur("duration", e.Duration)

	case *events.DecisionMadeEvent:
		logEvent.
			Str("decision_id", e.DecisionID).
			Int("ply", e.Ply).
			Str("side", e.Side.String()).
			Str("action", e.Action.String()).
			Float64("value", e.Value).
			Int64("nodes", e.Nodes).
			Int64("cutoffs", e.Cutoffs).
			Dur("elapsed", e.Elapsed).
			Bool("truncated", e.Truncated)

	case *events.UnitDamagedEvent:
		logEvent.
			Int("ply", e.Ply).
			Int("attacker_id", e.AttackerID).
			Int("target_id", e.TargetID).
			Int("damage", e.Damage).
			Int("remaining_hp", e.RemainingHP)

	case *events.UnitKilledEvent:
		logEvent.
			Int("ply", e.Ply).
			Int("unit_id", e.UnitID).
			Str("side", e.Side.String()).
			Int("killed_by", e.KilledBy).
			Int("x", e.Position.X).
			Int("y", e.Position.Y)

	case *events.PhaseChangedEvent:
		logEvent.
			Str("from_phase", e.From).
			Str("to_phase", e.To).
			Str("reason", e.Reason)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Match event")
}

func (ls *LoggerSubscriber) level() zerolog.Level {
	switch ls.logLevel {
	case zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel:
		return ls.logLevel
	default:
		return zerolog.InfoLevel
	}
}
