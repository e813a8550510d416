package domain

// Status is a stoplight KPI classification.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Thresholds holds the per-region KPI boundaries used when classifying
// calculation results.
type Thresholds struct {
	CPRGreen      float64 `json:"cprGreen" yaml:"cprGreen" mapstructure:"cprGreen"`
	CPRYellow     float64 `json:"cprYellow" yaml:"cprYellow" mapstructure:"cprYellow"`
	NIMGreen      float64 `json:"nimGreen" yaml:"nimGreen" mapstructure:"nimGreen"`
	NIMYellow     float64 `json:"nimYellow" yaml:"nimYellow" mapstructure:"nimYellow"`
	NetIncomeWarn float64 `json:"netIncomeWarn" yaml:"netIncomeWarn" mapstructure:"netIncomeWarn"`
}

// DefaultThresholds returns the built-in thresholds for a region.
func DefaultThresholds(r Region) Thresholds {
	if r == RegionCA {
		return Thresholds{
			CPRGreen:      22,
			CPRYellow:     30,
			NIMGreen:      22,
			NIMYellow:     12,
			NetIncomeWarn: -5000,
		}
	}
	return Thresholds{
		CPRGreen:      25,
		CPRYellow:     35,
		NIMGreen:      20,
		NIMYellow:     10,
		NetIncomeWarn: -5000,
	}
}

// CostPerReturnStatus classifies a cost per return; lower is better.
func (t Thresholds) CostPerReturnStatus(cpr float64) Status {
	switch {
	case cpr <= t.CPRGreen:
		return StatusGreen
	case cpr <= t.CPRYellow:
		return StatusYellow
	default:
		return StatusRed
	}
}

// NetMarginStatus classifies a net margin percentage; higher is better.
func (t Thresholds) NetMarginStatus(nim float64) Status {
	switch {
	case nim >= t.NIMGreen:
		return StatusGreen
	case nim >= t.NIMYellow:
		return StatusYellow
	default:
		return StatusRed
	}
}

// NetIncomeStatus flags losses: red below the warning level, yellow for any
// other loss.
func (t Thresholds) NetIncomeStatus(netIncome float64) Status {
	switch {
	case netIncome < t.NetIncomeWarn:
		return StatusRed
	case netIncome < 0:
		return StatusYellow
	default:
		return StatusGreen
	}
}
