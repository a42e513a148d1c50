package election

import (
	"strconv"

	"amoebot/internal/core"
)

func (s *Sim) Parameters() core.ParameterSnapshot {
	m := s.Metrics()
	groups := []core.ParameterGroup{
		{
			Name: "Shape",
			Params: []core.Parameter{
				stringParam("shape", "Shape", s.cfg.Shape),
				intParam("size", "Size", s.cfg.Size),
				floatParam("fill", "Fill", s.cfg.Fill),
				int64Param("seed", "Seed", s.cfg.Seed),
			},
		},
		{
			Name: "Run",
			Params: []core.Parameter{
				intParam("steps", "Activations per tick", s.cfg.Steps),
				intParam("particles", "Particles", m.Particles),
				intParam("agents", "Agents", m.Agents),
				intParam("cycles", "Cycles", m.Cycles),
				int64Param("activations", "Activations", m.Activations),
				int64Param("rounds", "Rounds", m.Rounds),
				intParam("leaders", "Leaders", m.Leaders),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeString,
		Value: value,
	}
}
