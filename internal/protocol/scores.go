package protocol

import "fmt"

// ScoreAggregation says how a score fragment is aggregated across games.
type ScoreAggregation uint8

const (
	Sum ScoreAggregation = iota
	Average
)

func (a ScoreAggregation) String() string {
	if a == Sum {
		return "SUM"
	}
	return "AVERAGE"
}

// ParseScoreAggregation parses the protocol spelling of an aggregation.
func ParseScoreAggregation(raw string) (ScoreAggregation, error) {
	switch raw {
	case "SUM":
		return Sum, nil
	case "AVERAGE":
		return Average, nil
	default:
		return 0, fmt.Errorf("unknown score aggregation %q", raw)
	}
}

// ScoreCause states why a player received their score.
type ScoreCause uint8

const (
	Regular ScoreCause = iota
	LeftCause
	RuleViolation
	SoftTimeout
	HardTimeout
	UnknownCause
)

func (c ScoreCause) String() string {
	switch c {
	case Regular:
		return "REGULAR"
	case LeftCause:
		return "LEFT"
	case RuleViolation:
		return "RULE_VIOLATION"
	case SoftTimeout:
		return "SOFT_TIMEOUT"
	case HardTimeout:
		return "HARD_TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// ParseScoreCause parses the protocol spelling of a score cause.
func ParseScoreCause(raw string) (ScoreCause, error) {
	switch raw {
	case "REGULAR":
		return Regular, nil
	case "LEFT":
		return LeftCause, nil
	case "RULE_VIOLATION":
		return RuleViolation, nil
	case "SOFT_TIMEOUT":
		return SoftTimeout, nil
	case "HARD_TIMEOUT":
		return HardTimeout, nil
	case "UNKNOWN":
		return UnknownCause, nil
	default:
		return 0, fmt.Errorf("unknown score cause %q", raw)
	}
}

// ScoreFragment is one component of the score definition.
type ScoreFragment struct {
	Name               string
	Aggregation        ScoreAggregation
	RelevantForRanking bool
}

// ScoreDefinition describes how the per-player scores are composed.
type ScoreDefinition struct {
	Fragments []ScoreFragment
}

// PlayerScore is the score of one player in the final game result.
type PlayerScore struct {
	Cause  ScoreCause
	Reason string
}
